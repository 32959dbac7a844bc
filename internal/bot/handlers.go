package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"go.uber.org/zap"

	"github.com/wardenhq/warden/internal/moderation"
)

// handlerTimeout bounds a single command execution, well under the 15
// minute interaction token lifetime.
const handlerTimeout = 3 * time.Minute

// maxListedWarnings caps the entries shown by the warnings command so the
// reply stays under Discord's message length limit.
const maxListedWarnings = 15

// handleApplicationCommand processes slash commands. The response is
// deferred first so slow platform calls never hit the 3 second
// interaction deadline, then the command runs in its own goroutine.
func (b *Bot) handleApplicationCommand(event *events.ApplicationCommandInteractionCreate) {
	go func() {
		if err := event.DeferCreateMessage(true); err != nil {
			b.logger.Error("Failed to defer interaction response", zap.Error(err))
			return
		}

		start := time.Now()
		commandName := event.SlashCommandInteractionData().CommandName()

		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("Panic in command handler",
					zap.String("command", commandName),
					zap.Any("panic", r))
				b.respond(event, "Internal error. Please report this to an administrator.")
			}

			b.logger.Debug("Command handled",
				zap.String("command", commandName),
				zap.Duration("duration", time.Since(start)))
		}()

		ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
		defer cancel()

		switch commandName {
		case "warnings":
			b.handleViewWarnings(ctx, event)
		case "warningconfig":
			b.handleWarningConfig(event)
		default:
			b.handleModerationCommand(ctx, event, commandName)
		}
	}()
}

// handleModerationCommand translates a slash command into a dispatcher
// request and replies with the outcome.
func (b *Bot) handleModerationCommand(
	ctx context.Context, event *events.ApplicationCommandInteractionCreate, commandName string,
) {
	guildID := event.GuildID()
	if guildID == nil {
		b.respond(event, "This command can only be used in a server.")
		return
	}

	action := moderation.Action(commandName)

	req, err := b.buildRequest(event, action)
	if err != nil {
		b.respond(event, err.Error())
		return
	}

	req.GuildID = uint64(*guildID)
	req.ModeratorID = uint64(event.User().ID)

	result, err := b.dispatcher.Execute(ctx, action, req)
	if err != nil {
		b.respond(event, moderation.AsActionError(err).Message)
		return
	}

	b.respond(event, formatResult(result))
}

// buildRequest extracts the per-action options from the interaction.
func (b *Bot) buildRequest(
	event *events.ApplicationCommandInteractionCreate, action moderation.Action,
) (*moderation.Request, error) {
	data := event.SlashCommandInteractionData()
	req := &moderation.Request{Reason: data.String("reason")}

	if req.Reason == "" {
		req.Reason = "No reason provided"
	}

	switch action {
	case moderation.ActionUnban:
		userID, err := strconv.ParseUint(data.String("userid"), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid user ID: %s", data.String("userid"))
		}

		req.UserID = userID
	case moderation.ActionBan:
		req.UserID = uint64(data.Snowflake("user"))
		if days, ok := data.OptInt("days"); ok {
			req.BanDays = days
		}
	case moderation.ActionMute:
		req.UserID = uint64(data.Snowflake("user"))
		days, _ := data.OptInt("days")
		hours, _ := data.OptInt("hours")
		minutes, _ := data.OptInt("minutes")
		seconds, _ := data.OptInt("seconds")
		req.Duration = moderation.MuteDuration{
			Days:    days,
			Hours:   hours,
			Minutes: minutes,
			Seconds: seconds,
		}
	case moderation.ActionServerMute:
		req.UserID = uint64(data.Snowflake("user"))
		if minutes, ok := data.OptInt("duration"); ok {
			req.VoiceDuration = time.Duration(minutes) * time.Minute
		}
	case moderation.ActionUnwarn:
		req.UserID = uint64(data.Snowflake("user"))
		req.WarningID = data.String("warnid")
	case moderation.ActionPurge:
		req.Count = data.Int("range")
		req.ChannelID = uint64(event.Channel().ID())

		if channel, ok := data.OptChannel("channel"); ok {
			req.ChannelID = uint64(channel.ID)
		}

		if user, ok := data.OptSnowflake("user"); ok {
			req.FilterUserID = uint64(user)
		}
	default:
		req.UserID = uint64(data.Snowflake("user"))
	}

	return req, nil
}

// handleViewWarnings lists a member's warnings, newest first.
func (b *Bot) handleViewWarnings(ctx context.Context, event *events.ApplicationCommandInteractionCreate) {
	guildID := event.GuildID()
	if guildID == nil {
		b.respond(event, "This command can only be used in a server.")
		return
	}

	data := event.SlashCommandInteractionData()
	userID := data.Snowflake("user")

	warnings, err := b.db.Model().Warning().GetWarnings(ctx, uint64(userID), uint64(*guildID))
	if err != nil {
		b.logger.Error("Failed to fetch warnings", zap.Error(err))
		b.respond(event, "Failed to fetch warnings.")

		return
	}

	if len(warnings) == 0 {
		b.respond(event, fmt.Sprintf("<@%d> has no warnings.", userID))
		return
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "Warnings for <@%d> (%d total):\n", userID, len(warnings))

	for i, w := range warnings {
		if i >= maxListedWarnings {
			fmt.Fprintf(&sb, "... and %d more", len(warnings)-maxListedWarnings)
			break
		}

		fmt.Fprintf(&sb, "%d. `%s` %s (by <@%d>, <t:%d:d>)\n",
			i+1, w.ID, w.Reason, w.ModeratorID, w.CreatedAt.Unix())
	}

	b.respond(event, sb.String())
}

// handleWarningConfig updates escalation thresholds. Restricted to admin
// roles rather than the wider moderator set.
func (b *Bot) handleWarningConfig(event *events.ApplicationCommandInteractionCreate) {
	if !b.isAdmin(event) {
		b.respond(event, "You don't have permission to use this command!")
		return
	}

	data := event.SlashCommandInteractionData()
	thresholds := b.dispatcher.Thresholds()

	subcommand := ""
	if data.SubCommandName != nil {
		subcommand = *data.SubCommandName
	}

	switch subcommand {
	case "mutethreshold":
		count := data.Int("count")
		duration := time.Duration(data.Int("duration")) * time.Minute
		thresholds.SetMute(count, duration)
		b.respond(event, fmt.Sprintf(
			"Members will now be muted for %s after %d warnings.",
			moderation.FormatDuration(duration), count))
	case "banthreshold":
		count := data.Int("count")
		thresholds.SetBan(count)
		b.respond(event, fmt.Sprintf("Members will now be banned after %d warnings.", count))
	default:
		b.respond(event, "Unknown subcommand.")
	}
}

// isAdmin reports whether the invoking member carries an admin role or is
// the configured bot owner.
func (b *Bot) isAdmin(event *events.ApplicationCommandInteractionCreate) bool {
	if b.ownerID != 0 && uint64(event.User().ID) == b.ownerID {
		return true
	}

	member := event.Member()
	if member == nil {
		return false
	}

	for _, roleID := range member.RoleIDs {
		if _, ok := b.adminRoles[uint64(roleID)]; ok {
			return true
		}
	}

	return false
}

// respond edits the deferred interaction response with the final content.
func (b *Bot) respond(event *events.ApplicationCommandInteractionCreate, content string) {
	_, err := event.Client().Rest().UpdateInteractionResponse(
		event.ApplicationID(),
		event.Token(),
		discord.NewMessageUpdateBuilder().SetContent(content).Build(),
	)
	if err != nil {
		b.logger.Error("Failed to update interaction response", zap.Error(err))
	}
}

// formatResult renders a dispatcher result for the invoking moderator.
func formatResult(result *moderation.Result) string {
	var sb strings.Builder

	sb.WriteString(result.Message)

	if result.Action == moderation.ActionWarn {
		fmt.Fprintf(&sb, " (warning %d)", result.WarningCount)

		if esc := result.Escalation; esc != nil {
			if esc.Failed {
				fmt.Fprintf(&sb, "\nAutomatic %s failed: %s", esc.Directive, esc.Message)
			} else if esc.Directive != moderation.DirectiveNone {
				fmt.Fprintf(&sb, "\nThreshold reached: %s", esc.Message)
			}
		}
	}

	if result.ExpiresAt != nil {
		fmt.Fprintf(&sb, "\nExpires <t:%d:R>.", result.ExpiresAt.Unix())
	}

	return sb.String()
}

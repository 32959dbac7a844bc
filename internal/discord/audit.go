package discord

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"go.uber.org/zap"

	"github.com/wardenhq/warden/internal/moderation"
)

// Log channel names by action category. Guild admins create these
// channels; events for a missing channel are dropped with a log line.
const (
	channelWarnings = "mod-warnings"
	channelBans     = "mod-bans"
	channelKicks    = "mod-kicks"
	channelTimeouts = "mod-timeouts"
	channelVoice    = "mod-voice"
	channelJail     = "mod-jail"
	channelMessages = "message-logs"
)

const (
	colorWarn    = 0xFFA500
	colorBan     = 0xFF0000
	colorReverse = 0x00FF00
	colorKick    = 0xFF6B6B
	colorPurge   = 0x95A5A6
	colorFailure = 0x36393F
)

// AuditSink posts a structured embed for every executed action to the
// guild's log channel for that action category.
type AuditSink struct {
	client bot.Client
	logger *zap.Logger

	// Channel IDs resolved per (guild, name), cached after first lookup.
	mu       sync.Mutex
	channels map[string]snowflake.ID
}

// NewAuditSink creates a channel-routing audit sink.
func NewAuditSink(client bot.Client, logger *zap.Logger) *AuditSink {
	return &AuditSink{
		client:   client,
		logger:   logger.Named("audit"),
		channels: make(map[string]snowflake.ID),
	}
}

// Emit posts the event embed to the category's log channel.
func (a *AuditSink) Emit(ctx context.Context, event *moderation.AuditEvent) error {
	channelName := channelForAction(event.Action)

	channelID, err := a.resolveChannel(ctx, event.GuildID, channelName)
	if err != nil {
		return err
	}

	embed := a.buildEmbed(event)

	_, err = a.client.Rest().CreateMessage(channelID, discord.NewMessageCreateBuilder().
		SetEmbeds(embed).
		Build(), rest.WithCtx(ctx))
	if err != nil {
		return fmt.Errorf("failed to post audit embed: %w", err)
	}

	return nil
}

// MessageLogEntry describes a deleted or edited message for the
// message-logs channel.
type MessageLogEntry struct {
	GuildID    uint64
	ChannelID  uint64
	MessageID  uint64
	AuthorID   uint64
	Edited     bool
	Content    string
	NewContent string
}

// LogMessage posts a deleted or edited message to the guild's
// message-logs channel.
func (a *AuditSink) LogMessage(ctx context.Context, entry *MessageLogEntry) error {
	channelID, err := a.resolveChannel(ctx, entry.GuildID, channelMessages)
	if err != nil {
		return err
	}

	title := "Message Deleted"
	if entry.Edited {
		title = "Message Edited"
	}

	builder := discord.NewEmbedBuilder().
		SetTitle(title).
		SetColor(colorPurge).
		SetTimestamp(time.Now()).
		SetFooterText(fmt.Sprintf("Message ID: %d", entry.MessageID)).
		AddField("Author", fmt.Sprintf("<@%d>", entry.AuthorID), true).
		AddField("Channel", fmt.Sprintf("<#%d>", entry.ChannelID), true)

	if entry.Edited {
		builder.AddField("Before", orPlaceholder(entry.Content), false)
		builder.AddField("After", orPlaceholder(entry.NewContent), false)
	} else {
		builder.SetDescription(orPlaceholder(entry.Content))
	}

	_, err = a.client.Rest().CreateMessage(channelID, discord.NewMessageCreateBuilder().
		SetEmbeds(builder.Build()).
		Build(), rest.WithCtx(ctx))
	if err != nil {
		return fmt.Errorf("failed to post message log embed: %w", err)
	}

	return nil
}

func orPlaceholder(content string) string {
	if content == "" {
		return "(no text content)"
	}

	return content
}

func (a *AuditSink) buildEmbed(event *moderation.AuditEvent) discord.Embed {
	builder := discord.NewEmbedBuilder().
		SetTitle(titleForAction(event.Action, event.Success)).
		SetColor(colorForAction(event.Action, event.Success)).
		SetTimestamp(event.Timestamp).
		SetFooterText(fmt.Sprintf("Target ID: %d", event.UserID))

	description := event.Detail
	if event.Reason != "" {
		description = fmt.Sprintf("%s\n**Reason:** %s", description, event.Reason)
	}

	builder.SetDescription(description)

	if event.ModeratorID != 0 {
		builder.AddField("Moderator", fmt.Sprintf("<@%d>", event.ModeratorID), true)
	}

	return builder.Build()
}

func (a *AuditSink) resolveChannel(ctx context.Context, guildID uint64, name string) (snowflake.ID, error) {
	key := fmt.Sprintf("%d/%s", guildID, name)

	a.mu.Lock()
	if id, ok := a.channels[key]; ok {
		a.mu.Unlock()
		return id, nil
	}
	a.mu.Unlock()

	channels, err := a.client.Rest().GetGuildChannels(snowflake.ID(guildID), rest.WithCtx(ctx))
	if err != nil {
		return 0, fmt.Errorf("failed to list guild channels: %w", err)
	}

	for _, channel := range channels {
		if channel.Type() == discord.ChannelTypeGuildText && channel.Name() == name {
			a.mu.Lock()
			a.channels[key] = channel.ID()
			a.mu.Unlock()

			return channel.ID(), nil
		}
	}

	return 0, fmt.Errorf("log channel %q not found in guild %d", name, guildID)
}

func channelForAction(action moderation.Action) string {
	switch action {
	case moderation.ActionWarn, moderation.ActionUnwarn:
		return channelWarnings
	case moderation.ActionBan, moderation.ActionUnban:
		return channelBans
	case moderation.ActionKick:
		return channelKicks
	case moderation.ActionMute, moderation.ActionUnmute:
		return channelTimeouts
	case moderation.ActionServerMute, moderation.ActionServerUnmute:
		return channelVoice
	case moderation.ActionJail, moderation.ActionUnjail:
		return channelJail
	case moderation.ActionPurge:
		return channelMessages
	default:
		return channelMessages
	}
}

func titleForAction(action moderation.Action, success bool) string {
	if !success {
		return fmt.Sprintf("Action failed: %s", action)
	}

	switch action {
	case moderation.ActionWarn:
		return "Member Warned"
	case moderation.ActionUnwarn:
		return "Warning Removed"
	case moderation.ActionBan:
		return "Member Banned"
	case moderation.ActionUnban:
		return "Member Unbanned"
	case moderation.ActionKick:
		return "Member Kicked"
	case moderation.ActionMute:
		return "Member Muted"
	case moderation.ActionUnmute:
		return "Member Unmuted"
	case moderation.ActionServerMute:
		return "Member Voice-Muted"
	case moderation.ActionServerUnmute:
		return "Member Voice-Unmuted"
	case moderation.ActionJail:
		return "Member Jailed"
	case moderation.ActionUnjail:
		return "Member Unjailed"
	case moderation.ActionPurge:
		return "Messages Purged"
	default:
		return string(action)
	}
}

func colorForAction(action moderation.Action, success bool) int {
	if !success {
		return colorFailure
	}

	switch action {
	case moderation.ActionWarn:
		return colorWarn
	case moderation.ActionBan, moderation.ActionJail:
		return colorBan
	case moderation.ActionUnban, moderation.ActionUnmute, moderation.ActionUnjail,
		moderation.ActionServerUnmute, moderation.ActionUnwarn:
		return colorReverse
	case moderation.ActionKick:
		return colorKick
	case moderation.ActionMute, moderation.ActionServerMute:
		return colorWarn
	case moderation.ActionPurge:
		return colorPurge
	default:
		return colorPurge
	}
}

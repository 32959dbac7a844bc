package bot

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/disgoorg/disgo/events"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wardenhq/warden/internal/database/types"
	wdiscord "github.com/wardenhq/warden/internal/discord"
	"github.com/wardenhq/warden/internal/moderation"
)

// Domains links may point at without tripping the automod.
var allowedDomains = map[string]struct{}{
	"steamcommunity.com":     {},
	"steampowered.com":       {},
	"store.steampowered.com": {},
	"discord.com":            {},
	"discord.gg":             {},
	"discordapp.com":         {},
	"cdn.discordapp.com":     {},
	"media.discordapp.net":   {},
	"github.com":             {},
	"youtube.com":            {},
	"youtu.be":               {},
}

var urlPattern = regexp.MustCompile(`https?://\S+`)

// firstSuspiciousURL returns the first link in content whose domain is
// not on the allowlist. Unparseable links count as suspicious.
func firstSuspiciousURL(content string) (string, bool) {
	for _, raw := range urlPattern.FindAllString(content, -1) {
		parsed, err := url.Parse(raw)
		if err != nil || parsed.Hostname() == "" {
			return raw, true
		}

		domain := strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
		if _, ok := allowedDomains[domain]; !ok {
			return raw, true
		}
	}

	return "", false
}

// handleMessageCreate deletes messages linking to unapproved domains
// and records an automatic warning under the bot's own identity. The
// deletion itself reaches message-logs through the delete listener.
func (b *Bot) handleMessageCreate(event *events.GuildMessageCreate) {
	msg := event.Message
	if msg.Author.Bot {
		return
	}

	suspicious, ok := firstSuspiciousURL(msg.Content)
	if !ok {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		guildID := uint64(event.GuildID)
		userID := uint64(msg.Author.ID)
		botID := uint64(b.client.ApplicationID())
		reason := fmt.Sprintf("Sent suspicious URL: %s", suspicious)

		if err := b.platform.DeleteMessage(ctx, uint64(event.ChannelID), uint64(event.MessageID)); err != nil {
			b.logger.Error("Failed to delete message with suspicious URL",
				zap.Uint64("guildID", guildID),
				zap.Uint64("userID", userID),
				zap.Error(err))

			return
		}

		warning := &types.Warning{
			ID:          uuid.NewString(),
			UserID:      userID,
			GuildID:     guildID,
			ModeratorID: botID,
			Reason:      reason,
			CreatedAt:   time.Now(),
		}
		if err := b.db.Model().Warning().CreateWarning(ctx, warning); err != nil {
			b.logger.Error("Failed to record automatic warning",
				zap.Uint64("userID", userID),
				zap.Error(err))

			return
		}

		auditEvent := &moderation.AuditEvent{
			Action:      moderation.ActionWarn,
			GuildID:     guildID,
			UserID:      userID,
			ModeratorID: botID,
			Reason:      reason,
			Success:     true,
			Detail:      fmt.Sprintf("Warned %s", msg.Author.Username),
			Timestamp:   time.Now(),
		}
		if err := b.audit.Emit(ctx, auditEvent); err != nil {
			b.logger.Warn("Failed to emit audit event", zap.Error(err))
		}
	}()
}

// handleMessageDelete logs deletions of cached member messages.
// Uncached messages arrive without author or content and are skipped.
func (b *Bot) handleMessageDelete(event *events.GuildMessageDelete) {
	msg := event.Message
	if msg.Author.ID == 0 || msg.Author.Bot {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := b.audit.LogMessage(ctx, &wdiscord.MessageLogEntry{
			GuildID:   uint64(event.GuildID),
			ChannelID: uint64(event.ChannelID),
			MessageID: uint64(event.MessageID),
			AuthorID:  uint64(msg.Author.ID),
			Content:   msg.Content,
		}); err != nil {
			b.logger.Warn("Failed to log deleted message", zap.Error(err))
		}
	}()
}

// handleMessageUpdate logs edits that change the text content. Embed
// unfurls fire the same gateway event with identical content and are
// ignored, as are edits to messages that were never cached.
func (b *Bot) handleMessageUpdate(event *events.GuildMessageUpdate) {
	oldMsg, newMsg := event.OldMessage, event.Message
	if newMsg.Author.Bot || oldMsg.ID == 0 || oldMsg.Content == newMsg.Content {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := b.audit.LogMessage(ctx, &wdiscord.MessageLogEntry{
			GuildID:    uint64(event.GuildID),
			ChannelID:  uint64(event.ChannelID),
			MessageID:  uint64(event.MessageID),
			AuthorID:   uint64(newMsg.Author.ID),
			Edited:     true,
			Content:    oldMsg.Content,
			NewContent: newMsg.Content,
		}); err != nil {
			b.logger.Warn("Failed to log edited message", zap.Error(err))
		}
	}()
}

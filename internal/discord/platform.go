package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/json"
	"github.com/disgoorg/snowflake/v2"
	"go.uber.org/zap"

	"github.com/wardenhq/warden/internal/moderation"
)

const (
	inviteMaxAgeSeconds = 604800 // 7 days
	inviteMaxUses       = 1
)

// Platform adapts the Discord client to the engine's platform
// capability. Voice presence comes from the gateway cache; everything
// else goes through the REST API.
type Platform struct {
	client bot.Client
	logger *zap.Logger
}

// NewPlatform creates a Discord platform adapter.
func NewPlatform(client bot.Client, logger *zap.Logger) *Platform {
	return &Platform{
		client: client,
		logger: logger.Named("platform"),
	}
}

// FetchMember resolves a guild member.
func (p *Platform) FetchMember(ctx context.Context, guildID, userID uint64) (*moderation.Member, error) {
	member, err := p.client.Rest().GetMember(snowflake.ID(guildID), snowflake.ID(userID), rest.WithCtx(ctx))
	if err != nil {
		if isNotFound(err) {
			return nil, moderation.ErrMemberNotFound
		}

		return nil, fmt.Errorf("failed to fetch member: %w", err)
	}

	roleIDs := make([]uint64, len(member.RoleIDs))
	for i, id := range member.RoleIDs {
		roleIDs[i] = uint64(id)
	}

	inVoice := false
	if voiceState, ok := p.client.Caches().VoiceState(snowflake.ID(guildID), snowflake.ID(userID)); ok {
		inVoice = voiceState.ChannelID != nil
	}

	return &moderation.Member{
		UserID:      uint64(member.User.ID),
		Username:    member.User.Username,
		RoleIDs:     roleIDs,
		InVoice:     inVoice,
		TimedOutTil: member.CommunicationDisabledUntil,
	}, nil
}

// FetchBannedUser resolves the identity of a banned user from the
// guild's ban list.
func (p *Platform) FetchBannedUser(ctx context.Context, guildID, userID uint64) (string, error) {
	ban, err := p.client.Rest().GetBan(snowflake.ID(guildID), snowflake.ID(userID), rest.WithCtx(ctx))
	if err != nil {
		if isNotFound(err) {
			return "", moderation.ErrBanMissing
		}

		return "", fmt.Errorf("failed to fetch ban: %w", err)
	}

	return ban.User.Username, nil
}

// BanMember applies a guild ban, purging the member's recent messages
// within the given window.
func (p *Platform) BanMember(ctx context.Context, guildID, userID uint64, purgeWindow time.Duration, reason string) error {
	err := p.client.Rest().AddBan(snowflake.ID(guildID), snowflake.ID(userID), purgeWindow,
		rest.WithCtx(ctx), rest.WithReason(reason))
	if err != nil {
		return fmt.Errorf("failed to ban member: %w", err)
	}

	return nil
}

// UnbanMember lifts a guild ban.
func (p *Platform) UnbanMember(ctx context.Context, guildID, userID uint64, reason string) error {
	err := p.client.Rest().DeleteBan(snowflake.ID(guildID), snowflake.ID(userID),
		rest.WithCtx(ctx), rest.WithReason(reason))
	if err != nil {
		return fmt.Errorf("failed to unban member: %w", err)
	}

	return nil
}

// KickMember removes a member from the guild.
func (p *Platform) KickMember(ctx context.Context, guildID, userID uint64, reason string) error {
	err := p.client.Rest().RemoveMember(snowflake.ID(guildID), snowflake.ID(userID),
		rest.WithCtx(ctx), rest.WithReason(reason))
	if err != nil {
		return fmt.Errorf("failed to kick member: %w", err)
	}

	return nil
}

// TimeoutMember applies a communication timeout until the given time.
func (p *Platform) TimeoutMember(ctx context.Context, guildID, userID uint64, until time.Time, reason string) error {
	_, err := p.client.Rest().UpdateMember(snowflake.ID(guildID), snowflake.ID(userID),
		discord.MemberUpdate{CommunicationDisabledUntil: json.NewNullablePtr(until)},
		rest.WithCtx(ctx), rest.WithReason(reason))
	if err != nil {
		return fmt.Errorf("failed to apply timeout: %w", err)
	}

	return nil
}

// RemoveTimeout clears a member's communication timeout.
func (p *Platform) RemoveTimeout(ctx context.Context, guildID, userID uint64, reason string) error {
	_, err := p.client.Rest().UpdateMember(snowflake.ID(guildID), snowflake.ID(userID),
		discord.MemberUpdate{CommunicationDisabledUntil: json.NullPtr[time.Time]()},
		rest.WithCtx(ctx), rest.WithReason(reason))
	if err != nil {
		return fmt.Errorf("failed to remove timeout: %w", err)
	}

	return nil
}

// SetVoiceMute mutes or unmutes a member in voice channels.
func (p *Platform) SetVoiceMute(ctx context.Context, guildID, userID uint64, muted bool, reason string) error {
	_, err := p.client.Rest().UpdateMember(snowflake.ID(guildID), snowflake.ID(userID),
		discord.MemberUpdate{Mute: json.Ptr(muted)},
		rest.WithCtx(ctx), rest.WithReason(reason))
	if err != nil {
		return fmt.Errorf("failed to set voice mute: %w", err)
	}

	return nil
}

// AddRole grants a role to a member.
func (p *Platform) AddRole(ctx context.Context, guildID, userID, roleID uint64) error {
	err := p.client.Rest().AddMemberRole(snowflake.ID(guildID), snowflake.ID(userID), snowflake.ID(roleID),
		rest.WithCtx(ctx))
	if err != nil {
		return fmt.Errorf("failed to add role: %w", err)
	}

	return nil
}

// RemoveRole revokes a role from a member.
func (p *Platform) RemoveRole(ctx context.Context, guildID, userID, roleID uint64) error {
	err := p.client.Rest().RemoveMemberRole(snowflake.ID(guildID), snowflake.ID(userID), snowflake.ID(roleID),
		rest.WithCtx(ctx))
	if err != nil {
		return fmt.Errorf("failed to remove role: %w", err)
	}

	return nil
}

// FetchMessages retrieves the most recent messages in a channel.
func (p *Platform) FetchMessages(ctx context.Context, channelID uint64, limit int) ([]moderation.Message, error) {
	messages, err := p.client.Rest().GetMessages(snowflake.ID(channelID), 0, 0, 0, limit, rest.WithCtx(ctx))
	if err != nil {
		if isNotFound(err) {
			return nil, moderation.ErrChannelNotFound
		}

		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	result := make([]moderation.Message, len(messages))
	for i, msg := range messages {
		result[i] = moderation.Message{
			ID:        uint64(msg.ID),
			AuthorID:  uint64(msg.Author.ID),
			CreatedAt: msg.ID.Time(),
			Pinned:    msg.Pinned,
		}
	}

	return result, nil
}

// BulkDeleteMessages deletes a batch of messages in one call.
func (p *Platform) BulkDeleteMessages(ctx context.Context, channelID uint64, messageIDs []uint64) error {
	ids := make([]snowflake.ID, len(messageIDs))
	for i, id := range messageIDs {
		ids[i] = snowflake.ID(id)
	}

	if err := p.client.Rest().BulkDeleteMessages(snowflake.ID(channelID), ids, rest.WithCtx(ctx)); err != nil {
		return fmt.Errorf("failed to bulk delete messages: %w", err)
	}

	return nil
}

// DeleteMessage deletes a single message.
func (p *Platform) DeleteMessage(ctx context.Context, channelID, messageID uint64) error {
	if err := p.client.Rest().DeleteMessage(snowflake.ID(channelID), snowflake.ID(messageID), rest.WithCtx(ctx)); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}

	return nil
}

// CreateInvite creates a single-use invite to the guild's system
// channel, used for the ban-expiry notification.
func (p *Platform) CreateInvite(ctx context.Context, guildID uint64) (string, error) {
	guild, err := p.client.Rest().GetGuild(snowflake.ID(guildID), false, rest.WithCtx(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to fetch guild: %w", err)
	}

	if guild.SystemChannelID == nil {
		return "", errors.New("guild has no system channel for invites")
	}

	invite, err := p.client.Rest().CreateInvite(*guild.SystemChannelID, discord.InviteCreate{
		MaxAge:  json.Ptr(inviteMaxAgeSeconds),
		MaxUses: json.Ptr(inviteMaxUses),
	}, rest.WithCtx(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to create invite: %w", err)
	}

	return "https://discord.gg/" + invite.Code, nil
}

// GuildName resolves a guild's display name, falling back to a generic
// label when the lookup fails.
func (p *Platform) GuildName(ctx context.Context, guildID uint64) string {
	guild, err := p.client.Rest().GetGuild(snowflake.ID(guildID), false, rest.WithCtx(ctx))
	if err != nil {
		p.logger.Debug("Failed to fetch guild name",
			zap.Uint64("guildID", guildID),
			zap.Error(err))

		return "this server"
	}

	return guild.Name
}

// isNotFound checks whether a REST error is a 404 response.
func isNotFound(err error) bool {
	var restErr *rest.Error
	return errors.As(err, &restErr) &&
		restErr.Response != nil &&
		restErr.Response.StatusCode == http.StatusNotFound
}

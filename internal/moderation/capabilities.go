package moderation

import (
	"context"
	"errors"
	"time"

	"github.com/wardenhq/warden/internal/database/types"
)

// Errors returned by Platform implementations so the dispatcher can map
// platform conditions onto the ActionError taxonomy.
var (
	ErrMemberNotFound  = errors.New("member not found in guild")
	ErrBanMissing      = errors.New("no platform ban for member")
	ErrChannelNotFound = errors.New("channel not found")
)

// Member is the engine's view of a guild member.
type Member struct {
	UserID      uint64
	Username    string
	RoleIDs     []uint64
	InVoice     bool
	TimedOutTil *time.Time
}

// Message is the engine's view of a channel message.
type Message struct {
	ID        uint64
	AuthorID  uint64
	CreatedAt time.Time
	Pinned    bool
}

// Platform exposes the chat-platform operations the engine needs.
// The production implementation wraps the Discord client; tests use fakes.
type Platform interface {
	FetchMember(ctx context.Context, guildID, userID uint64) (*Member, error)
	// FetchBannedUser resolves the identity of a banned user who has
	// left the guild. Returns ErrBanMissing if no platform ban exists.
	FetchBannedUser(ctx context.Context, guildID, userID uint64) (string, error)

	BanMember(ctx context.Context, guildID, userID uint64, purgeWindow time.Duration, reason string) error
	UnbanMember(ctx context.Context, guildID, userID uint64, reason string) error
	KickMember(ctx context.Context, guildID, userID uint64, reason string) error

	TimeoutMember(ctx context.Context, guildID, userID uint64, until time.Time, reason string) error
	RemoveTimeout(ctx context.Context, guildID, userID uint64, reason string) error

	SetVoiceMute(ctx context.Context, guildID, userID uint64, muted bool, reason string) error

	AddRole(ctx context.Context, guildID, userID, roleID uint64) error
	RemoveRole(ctx context.Context, guildID, userID, roleID uint64) error

	FetchMessages(ctx context.Context, channelID uint64, limit int) ([]Message, error)
	BulkDeleteMessages(ctx context.Context, channelID uint64, messageIDs []uint64) error
	DeleteMessage(ctx context.Context, channelID, messageID uint64) error

	// CreateInvite returns a single-use invite URL for the guild.
	CreateInvite(ctx context.Context, guildID uint64) (string, error)
	GuildName(ctx context.Context, guildID uint64) string
}

// Notifier delivers best-effort direct notifications to members.
// Failures are logged by callers and never abort an action.
type Notifier interface {
	NotifyUser(ctx context.Context, userID uint64, message string) error
}

// AuditEvent is a structured record of one action execution.
type AuditEvent struct {
	Action      Action
	GuildID     uint64
	UserID      uint64
	ModeratorID uint64
	Reason      string
	Success     bool
	Detail      string
	Timestamp   time.Time
}

// AuditSink routes audit events to the realm's log destination.
// Emission is best-effort; errors are logged and swallowed by callers.
type AuditSink interface {
	Emit(ctx context.Context, event *AuditEvent) error
}

// Authorizer decides whether an issuer may perform an action in a guild.
// Implementations return nil to allow, or an ActionError with
// CodeForbidden to deny.
type Authorizer interface {
	Authorize(ctx context.Context, guildID, moderatorID uint64, action Action) error
}

// WarningStore is the subset of warning persistence the engine uses.
type WarningStore interface {
	CreateWarning(ctx context.Context, warning *types.Warning) error
	CountWarnings(ctx context.Context, userID, guildID uint64) (int, error)
	DeleteWarning(ctx context.Context, id string, userID, guildID uint64) error
}

// BanStore is the subset of ban persistence the engine uses.
type BanStore interface {
	CreateBan(ctx context.Context, ban *types.Ban) error
	GetActiveBan(ctx context.Context, userID, guildID uint64) (*types.Ban, error)
	HasActiveBan(ctx context.Context, userID, guildID uint64) (bool, error)
	GetExpiredBans(ctx context.Context, now time.Time) ([]*types.Ban, error)
	DeactivateBan(ctx context.Context, id int64, notified bool) error
	DeactivateActiveBans(ctx context.Context, userID, guildID uint64) (int64, error)
}

// JailStore is the subset of jail persistence the engine uses.
type JailStore interface {
	CreateRecord(ctx context.Context, record *types.JailRecord) error
	GetRecord(ctx context.Context, userID, guildID uint64) (*types.JailRecord, error)
	DeleteRecord(ctx context.Context, userID, guildID uint64) error
}

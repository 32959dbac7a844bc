package moderation

import "time"

// Action identifies one of the supported moderation operations.
type Action string

const (
	ActionBan          Action = "ban"
	ActionUnban        Action = "unban"
	ActionKick         Action = "kick"
	ActionMute         Action = "mute"
	ActionUnmute       Action = "unmute"
	ActionServerMute   Action = "servermute"
	ActionServerUnmute Action = "serverunmute"
	ActionWarn         Action = "warn"
	ActionUnwarn       Action = "unwarn"
	ActionJail         Action = "jail"
	ActionUnjail       Action = "unjail"
	ActionPurge        Action = "purge"
)

// Request carries the parameters for a single action execution.
// GuildID, UserID and ModeratorID are required for every action except
// purge, which targets a channel and takes an optional author filter.
type Request struct {
	GuildID     uint64
	UserID      uint64
	ModeratorID uint64
	Reason      string

	// Ban: days until expiry, 0 for permanent.
	BanDays int

	// Mute: timeout duration components, sum must be positive.
	Duration MuteDuration

	// Servermute: optional one-shot unmute delay, 0 for indefinite.
	VoiceDuration time.Duration

	// Unwarn: the warning being removed.
	WarningID string

	// Purge parameters.
	ChannelID    uint64
	Count        int
	FilterUserID uint64
}

// EscalationOutcome describes an automatic escalation triggered by a warn.
type EscalationOutcome struct {
	Directive Directive `json:"directive"`
	// Message of the escalated action, or the failure text when Failed.
	Message string `json:"message"`
	Failed  bool   `json:"failed,omitempty"`
}

// Result is the outcome of a successfully executed action.
type Result struct {
	Action  Action `json:"action"`
	Message string `json:"message"`

	// Warn results.
	WarningID    string             `json:"warningId,omitempty"`
	WarningCount int                `json:"warningCount,omitempty"`
	Escalation   *EscalationOutcome `json:"escalation,omitempty"`

	// Expiry of a temporary sanction, if any.
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`

	// Purge and jail partial-success counts.
	DeletedCount int `json:"deletedCount,omitempty"`
	FailedCount  int `json:"failedCount,omitempty"`
	SkippedCount int `json:"skippedCount,omitempty"`
}

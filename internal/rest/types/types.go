package types

import "time"

// ActionRequest is the JSON body for POST /v1/moderation/:action.
// Only the fields relevant to the requested action need to be set.
type ActionRequest struct {
	GuildID     uint64 `json:"guildId"`
	UserID      uint64 `json:"userId"`
	ModeratorID uint64 `json:"moderatorId"`
	Reason      string `json:"reason"`

	// Ban: days until expiry, 0 for permanent.
	BanDays int `json:"banDays,omitempty"`

	// Mute: timeout duration components.
	Days    int `json:"days,omitempty"`
	Hours   int `json:"hours,omitempty"`
	Minutes int `json:"minutes,omitempty"`
	Seconds int `json:"seconds,omitempty"`

	// Servermute: optional one-shot unmute delay.
	VoiceDurationSeconds int `json:"voiceDurationSeconds,omitempty"`

	// Unwarn: the warning being removed.
	WarningID string `json:"warningId,omitempty"`

	// Purge parameters.
	ChannelID    uint64 `json:"channelId,omitempty"`
	Count        int    `json:"count,omitempty"`
	FilterUserID uint64 `json:"filterUserId,omitempty"`
}

// ErrorResponse is the JSON body for any non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Warning represents a warning record.
type Warning struct {
	ID          string    `json:"id"`
	UserID      uint64    `json:"userId"`
	GuildID     uint64    `json:"guildId"`
	ModeratorID uint64    `json:"moderatorId"`
	Reason      string    `json:"reason"`
	CreatedAt   time.Time `json:"createdAt"`
}

// GetWarningsResponse is the response for the warning list endpoint.
type GetWarningsResponse struct {
	Warnings []Warning `json:"warnings"`
	Total    int       `json:"total"`
}

// Ban represents a ban record.
type Ban struct {
	ID          int64      `json:"id"`
	UserID      uint64     `json:"userId"`
	GuildID     uint64     `json:"guildId"`
	ModeratorID uint64     `json:"moderatorId"`
	Reason      string     `json:"reason"`
	BannedAt    time.Time  `json:"bannedAt"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	IsActive    bool       `json:"isActive"`
}

// HealthResponse is the response for the health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

package types

import (
	"errors"
	"time"
)

var ErrWarningNotFound = errors.New("warning not found")

// Warning represents a single warning issued against a guild member.
// Warnings are immutable once created; moderators may only delete them.
type Warning struct {
	ID          string    `bun:",pk,type:uuid"`
	UserID      uint64    `bun:",notnull"`
	GuildID     uint64    `bun:",notnull"`
	ModeratorID uint64    `bun:",notnull"`
	Reason      string    `bun:",notnull,type:text"`
	CreatedAt   time.Time `bun:",notnull"`
}

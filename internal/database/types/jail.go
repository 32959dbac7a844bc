package types

import (
	"errors"
	"time"
)

var (
	ErrJailRecordNotFound = errors.New("jail record not found")
	ErrAlreadyJailed      = errors.New("member is already jailed")
)

// JailRecord marks a guild member as jailed. At most one record exists
// per (user, guild); the gateway listener re-applies the jailed role if
// the member leaves and rejoins while the record still exists.
type JailRecord struct {
	UserID   uint64    `bun:",pk"`
	GuildID  uint64    `bun:",pk"`
	JailedAt time.Time `bun:",notnull"`
}

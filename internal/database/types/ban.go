package types

import (
	"errors"
	"time"
)

var ErrBanNotFound = errors.New("no active ban found")

// Ban represents a guild ban with an optional expiry.
// A nil ExpiresAt means the ban is permanent and is never picked up
// by the expiry scheduler.
type Ban struct {
	ID               int64      `bun:",pk,autoincrement"`
	UserID           uint64     `bun:",notnull"`
	GuildID          uint64     `bun:",notnull"`
	ModeratorID      uint64     `bun:",notnull"`
	Reason           string     `bun:",notnull,type:text"`
	BannedAt         time.Time  `bun:",notnull"`
	ExpiresAt        *time.Time `bun:",nullzero"`
	IsActive         bool       `bun:",notnull"`
	NotifiedOnExpiry bool       `bun:",notnull"`
}

// IsPermanent checks if the ban has no expiry.
func (b *Ban) IsPermanent() bool {
	return b.ExpiresAt == nil
}

// IsExpired checks if a temporary ban has passed its expiry.
func (b *Ban) IsExpired() bool {
	return b.ExpiresAt != nil && time.Now().After(*b.ExpiresAt)
}

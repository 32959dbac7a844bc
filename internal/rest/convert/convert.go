// Package convert translates database records into REST API types.
package convert

import (
	"github.com/wardenhq/warden/internal/database/types"
	restTypes "github.com/wardenhq/warden/internal/rest/types"
)

// Warning converts a database warning to its REST representation.
func Warning(w *types.Warning) restTypes.Warning {
	return restTypes.Warning{
		ID:          w.ID,
		UserID:      w.UserID,
		GuildID:     w.GuildID,
		ModeratorID: w.ModeratorID,
		Reason:      w.Reason,
		CreatedAt:   w.CreatedAt,
	}
}

// Warnings converts a slice of database warnings.
func Warnings(ws []*types.Warning) []restTypes.Warning {
	out := make([]restTypes.Warning, len(ws))
	for i, w := range ws {
		out[i] = Warning(w)
	}

	return out
}

// Ban converts a database ban to its REST representation.
func Ban(b *types.Ban) restTypes.Ban {
	return restTypes.Ban{
		ID:          b.ID,
		UserID:      b.UserID,
		GuildID:     b.GuildID,
		ModeratorID: b.ModeratorID,
		Reason:      b.Reason,
		BannedAt:    b.BannedAt,
		ExpiresAt:   b.ExpiresAt,
		IsActive:    b.IsActive,
	}
}

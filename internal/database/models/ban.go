package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/wardenhq/warden/internal/database/dbretry"
	"github.com/wardenhq/warden/internal/database/types"
)

// BanModel handles database operations for guild bans.
type BanModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewBan creates a new ban model instance.
func NewBan(db *bun.DB, logger *zap.Logger) *BanModel {
	return &BanModel{
		db:     db,
		logger: logger.Named("db_ban"),
	}
}

// CreateBan stores a new ban record.
func (m *BanModel) CreateBan(ctx context.Context, ban *types.Ban) error {
	err := dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := m.db.NewInsert().Model(ban).Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create ban: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	m.logger.Debug("Created ban",
		zap.Uint64("userID", ban.UserID),
		zap.Uint64("guildID", ban.GuildID),
		zap.Bool("permanent", ban.IsPermanent()))

	return nil
}

// GetActiveBan returns the active ban for a member in a guild.
// Returns types.ErrBanNotFound when the member has no active ban.
func (m *BanModel) GetActiveBan(ctx context.Context, userID, guildID uint64) (*types.Ban, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.Ban, error) {
		ban := new(types.Ban)

		err := m.db.NewSelect().
			Model(ban).
			Where("user_id = ?", userID).
			Where("guild_id = ?", guildID).
			Where("is_active = TRUE").
			Limit(1).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, types.ErrBanNotFound
			}

			return nil, fmt.Errorf("failed to get active ban: %w", err)
		}

		return ban, nil
	})
}

// HasActiveBan checks whether a member currently has an active ban.
func (m *BanModel) HasActiveBan(ctx context.Context, userID, guildID uint64) (bool, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (bool, error) {
		exists, err := m.db.NewSelect().
			Model((*types.Ban)(nil)).
			Where("user_id = ?", userID).
			Where("guild_id = ?", guildID).
			Where("is_active = TRUE").
			Exists(ctx)
		if err != nil {
			return false, fmt.Errorf("failed to check active ban: %w", err)
		}

		return exists, nil
	})
}

// GetExpiredBans returns active temporary bans whose expiry has passed.
func (m *BanModel) GetExpiredBans(ctx context.Context, now time.Time) ([]*types.Ban, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.Ban, error) {
		var bans []*types.Ban

		err := m.db.NewSelect().
			Model(&bans).
			Where("is_active = TRUE").
			Where("expires_at IS NOT NULL").
			Where("expires_at <= ?", now).
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get expired bans: %w", err)
		}

		return bans, nil
	})
}

// DeactivateBan marks a ban inactive, optionally recording that the
// expiry notification was sent. The scheduler sets notified after its
// first notification attempt so the DM is never sent twice.
func (m *BanModel) DeactivateBan(ctx context.Context, id int64, notified bool) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		query := m.db.NewUpdate().
			Model((*types.Ban)(nil)).
			Set("is_active = FALSE").
			Where("id = ?", id)

		if notified {
			query = query.Set("notified_on_expiry = TRUE")
		}

		if _, err := query.Exec(ctx); err != nil {
			return fmt.Errorf("failed to deactivate ban: %w", err)
		}

		return nil
	})
}

// DeactivateActiveBans marks all active bans for a member inactive.
// Returns the number of bans deactivated.
func (m *BanModel) DeactivateActiveBans(ctx context.Context, userID, guildID uint64) (int64, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (int64, error) {
		result, err := m.db.NewUpdate().
			Model((*types.Ban)(nil)).
			Set("is_active = FALSE").
			Where("user_id = ?", userID).
			Where("guild_id = ?", guildID).
			Where("is_active = TRUE").
			Exec(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to deactivate bans: %w", err)
		}

		return result.RowsAffected()
	})
}

// GetGuildBans retrieves all ban records for a guild, newest first.
func (m *BanModel) GetGuildBans(ctx context.Context, guildID uint64) ([]*types.Ban, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.Ban, error) {
		var bans []*types.Ban

		err := m.db.NewSelect().
			Model(&bans).
			Where("guild_id = ?", guildID).
			Order("banned_at DESC").
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get guild bans: %w", err)
		}

		return bans, nil
	})
}

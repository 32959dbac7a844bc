package models

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/wardenhq/warden/internal/database/dbretry"
	"github.com/wardenhq/warden/internal/database/types"
)

// WarningModel handles database operations for member warnings.
type WarningModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewWarning creates a new warning model instance.
func NewWarning(db *bun.DB, logger *zap.Logger) *WarningModel {
	return &WarningModel{
		db:     db,
		logger: logger.Named("db_warning"),
	}
}

// CreateWarning stores a new warning record.
func (m *WarningModel) CreateWarning(ctx context.Context, warning *types.Warning) error {
	err := dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := m.db.NewInsert().Model(warning).Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create warning: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	m.logger.Debug("Created warning",
		zap.String("id", warning.ID),
		zap.Uint64("userID", warning.UserID),
		zap.Uint64("guildID", warning.GuildID))

	return nil
}

// CountWarnings returns the number of warnings a member has in a guild.
func (m *WarningModel) CountWarnings(ctx context.Context, userID, guildID uint64) (int, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (int, error) {
		count, err := m.db.NewSelect().
			Model((*types.Warning)(nil)).
			Where("user_id = ?", userID).
			Where("guild_id = ?", guildID).
			Count(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to count warnings: %w", err)
		}

		return count, nil
	})
}

// GetWarnings retrieves all warnings for a member in a guild, newest first.
func (m *WarningModel) GetWarnings(ctx context.Context, userID, guildID uint64) ([]*types.Warning, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.Warning, error) {
		var warnings []*types.Warning

		err := m.db.NewSelect().
			Model(&warnings).
			Where("user_id = ?", userID).
			Where("guild_id = ?", guildID).
			Order("created_at DESC").
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get warnings: %w", err)
		}

		return warnings, nil
	})
}

// GetGuildWarnings retrieves all warnings issued in a guild, newest first.
func (m *WarningModel) GetGuildWarnings(ctx context.Context, guildID uint64) ([]*types.Warning, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.Warning, error) {
		var warnings []*types.Warning

		err := m.db.NewSelect().
			Model(&warnings).
			Where("guild_id = ?", guildID).
			Order("created_at DESC").
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get guild warnings: %w", err)
		}

		return warnings, nil
	})
}

// DeleteWarning removes a warning by ID scoped to a member and guild.
// Returns types.ErrWarningNotFound if no matching record exists.
func (m *WarningModel) DeleteWarning(ctx context.Context, id string, userID, guildID uint64) error {
	affected, err := dbretry.Operation(ctx, func(ctx context.Context) (int64, error) {
		result, err := m.db.NewDelete().
			Model((*types.Warning)(nil)).
			Where("id = ?", id).
			Where("user_id = ?", userID).
			Where("guild_id = ?", guildID).
			Exec(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to delete warning: %w", err)
		}

		return result.RowsAffected()
	})
	if err != nil {
		return err
	}

	if affected == 0 {
		return types.ErrWarningNotFound
	}

	m.logger.Debug("Deleted warning",
		zap.String("id", id),
		zap.Uint64("userID", userID),
		zap.Uint64("guildID", guildID))

	return nil
}

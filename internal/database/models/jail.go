package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/wardenhq/warden/internal/database/dbretry"
	"github.com/wardenhq/warden/internal/database/types"
)

// JailModel handles database operations for jail records.
type JailModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewJail creates a new jail model instance.
func NewJail(db *bun.DB, logger *zap.Logger) *JailModel {
	return &JailModel{
		db:     db,
		logger: logger.Named("db_jail"),
	}
}

// CreateRecord stores a jail record for a member.
// Returns types.ErrAlreadyJailed if a record already exists.
func (m *JailModel) CreateRecord(ctx context.Context, record *types.JailRecord) error {
	affected, err := dbretry.Operation(ctx, func(ctx context.Context) (int64, error) {
		result, err := m.db.NewInsert().
			Model(record).
			On("CONFLICT (user_id, guild_id) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to create jail record: %w", err)
		}

		return result.RowsAffected()
	})
	if err != nil {
		return err
	}

	if affected == 0 {
		return types.ErrAlreadyJailed
	}

	m.logger.Debug("Created jail record",
		zap.Uint64("userID", record.UserID),
		zap.Uint64("guildID", record.GuildID))

	return nil
}

// GetRecord returns the jail record for a member, if any.
// Returns types.ErrJailRecordNotFound when the member is not jailed.
func (m *JailModel) GetRecord(ctx context.Context, userID, guildID uint64) (*types.JailRecord, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.JailRecord, error) {
		record := new(types.JailRecord)

		err := m.db.NewSelect().
			Model(record).
			Where("user_id = ?", userID).
			Where("guild_id = ?", guildID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, types.ErrJailRecordNotFound
			}

			return nil, fmt.Errorf("failed to get jail record: %w", err)
		}

		return record, nil
	})
}

// DeleteRecord removes the jail record for a member.
// Returns types.ErrJailRecordNotFound when no record exists.
func (m *JailModel) DeleteRecord(ctx context.Context, userID, guildID uint64) error {
	affected, err := dbretry.Operation(ctx, func(ctx context.Context) (int64, error) {
		result, err := m.db.NewDelete().
			Model((*types.JailRecord)(nil)).
			Where("user_id = ?", userID).
			Where("guild_id = ?", guildID).
			Exec(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to delete jail record: %w", err)
		}

		return result.RowsAffected()
	})
	if err != nil {
		return err
	}

	if affected == 0 {
		return types.ErrJailRecordNotFound
	}

	m.logger.Debug("Deleted jail record",
		zap.Uint64("userID", userID),
		zap.Uint64("guildID", guildID))

	return nil
}

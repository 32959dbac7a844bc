package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/wardenhq/warden/internal/database/types"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		tables := []struct {
			model any
			name  string
		}{
			{(*types.Warning)(nil), "warnings"},
			{(*types.Ban)(nil), "bans"},
			{(*types.JailRecord)(nil), "jail_records"},
		}

		for _, table := range tables {
			_, err := db.NewCreateTable().
				Model(table.model).
				IfNotExists().
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to create table %s: %w", table.name, err)
			}
		}

		// Warning lookups are always scoped to a member within a guild
		_, err := db.NewCreateIndex().
			Model((*types.Warning)(nil)).
			Index("idx_warnings_user_guild").
			Column("user_id", "guild_id").
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create warning index: %w", err)
		}

		// The dispatcher pre-checks a single active ban per (user, guild)
		// and the scheduler scans active temporary bans by expiry
		_, err = db.NewCreateIndex().
			Model((*types.Ban)(nil)).
			Index("idx_bans_user_guild_active").
			Column("user_id", "guild_id", "is_active").
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create ban index: %w", err)
		}

		_, err = db.NewCreateIndex().
			Model((*types.Ban)(nil)).
			Index("idx_bans_active_expiry").
			Column("is_active", "expires_at").
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create ban expiry index: %w", err)
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		for _, model := range []any{
			(*types.JailRecord)(nil),
			(*types.Ban)(nil),
			(*types.Warning)(nil),
		} {
			if _, err := db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
				return fmt.Errorf("failed to drop table: %w", err)
			}
		}

		return nil
	})
}

package database

import (
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/wardenhq/warden/internal/database/models"
)

// Repository provides access to all database models.
type Repository struct {
	warning *models.WarningModel
	ban     *models.BanModel
	jail    *models.JailModel
}

// NewRepository creates a new repository instance with all models.
func NewRepository(db *bun.DB, logger *zap.Logger) *Repository {
	return &Repository{
		warning: models.NewWarning(db, logger),
		ban:     models.NewBan(db, logger),
		jail:    models.NewJail(db, logger),
	}
}

// Warning returns the warning model repository.
func (r *Repository) Warning() *models.WarningModel {
	return r.warning
}

// Ban returns the ban model repository.
func (r *Repository) Ban() *models.BanModel {
	return r.ban
}

// Jail returns the jail model repository.
func (r *Repository) Jail() *models.JailModel {
	return r.jail
}

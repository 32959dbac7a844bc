package setup

import (
	"context"
	"log"

	"go.uber.org/zap"

	"github.com/wardenhq/warden/internal/database"
	"github.com/wardenhq/warden/internal/setup/config"
)

// App bundles the core dependencies shared by every entry point.
type App struct {
	Config   *config.Config  // Application configuration
	Logger   *zap.Logger     // Main application logger
	DBLogger *zap.Logger     // Database-specific logger
	DB       database.Client // Database connection pool
}

// InitializeApp bootstraps configuration, logging and the database in
// order, so each component has its dependencies available.
func InitializeApp(ctx context.Context) (*App, error) {
	cfg, configDir, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	logger, dbLogger, err := newLoggers(cfg.Debug.LogLevel, cfg.Debug.LogDir)
	if err != nil {
		return nil, err
	}

	logger.Info("Loaded configuration", zap.String("dir", configDir))

	db, err := database.NewConnection(ctx, &cfg.PostgreSQL, dbLogger, true)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:   cfg,
		Logger:   logger,
		DBLogger: dbLogger,
		DB:       db,
	}, nil
}

// Cleanup shuts down components in reverse initialization order. Errors
// are logged, not returned, so every component gets a cleanup attempt.
func (a *App) Cleanup() {
	if err := a.Logger.Sync(); err != nil {
		log.Printf("Failed to sync logger: %v", err)
	}

	if err := a.DBLogger.Sync(); err != nil {
		log.Printf("Failed to sync DB logger: %v", err)
	}

	if err := a.DB.Close(); err != nil {
		log.Printf("Failed to close database connection: %v", err)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/rueidis"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/wardenhq/warden/internal/bot"
	"github.com/wardenhq/warden/internal/moderation"
	"github.com/wardenhq/warden/internal/rest"
	"github.com/wardenhq/warden/internal/setup"
)

// Server timeouts.
const (
	ReadTimeout     = 5 * time.Second
	WriteTimeout    = 10 * time.Second
	ShutdownTimeout = 30 * time.Second
)

func main() {
	if err := run(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	cmd := &cli.Command{
		Name:  "warden",
		Usage: "Community moderation service",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Start the bot, the expiry scheduler and the HTTP API",
				Action: runService,
			},
		},
	}

	return cmd.Run(context.Background(), os.Args)
}

func runService(ctx context.Context, _ *cli.Command) error {
	app, err := setup.InitializeApp(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.Cleanup()

	cfg := app.Config

	discordBot, err := bot.New(cfg, app.DB, app.Logger)
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}

	if err := discordBot.Start(ctx); err != nil {
		return fmt.Errorf("failed to start bot: %w", err)
	}
	defer discordBot.Close()

	// The scheduler shares the bot's platform adapters so expiry
	// reversals are audited like any other action.
	schedulerCtx, cancelScheduler := context.WithCancel(ctx)
	defer cancelScheduler()

	scheduler := moderation.NewScheduler(
		app.DB.Model().Ban(),
		discordBot.Platform(),
		discordBot.Notifier(),
		discordBot.Audit(),
		time.Duration(cfg.Scheduler.IntervalMinutes)*time.Minute,
		cfg.Scheduler.MaxConcurrency,
		app.Logger,
	)
	go scheduler.Start(schedulerCtx)

	redisClient, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: []string{fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)},
		Username:    cfg.Redis.Username,
		Password:    cfg.Redis.Password,
		ClientName:  "warden",
	})
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer redisClient.Close()

	srv := &http.Server{
		Addr:         cfg.API.ListenAddr,
		Handler:      rest.NewServer(discordBot.Dispatcher(), app.DB, redisClient, &cfg.API, app.Logger),
		ReadTimeout:  ReadTimeout,
		WriteTimeout: WriteTimeout,
	}

	go func() {
		app.Logger.Info("API server started", zap.String("addr", cfg.API.ListenAddr))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.Logger.Error("Failed to start API server", zap.Error(err))
		}
	}()

	app.Logger.Info("Warden started. Waiting for interrupt signal to gracefully shutdown...")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	app.Logger.Info("Shutting down...")
	cancelScheduler()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.Logger.Error("API server forced to shutdown", zap.Error(err))
	}

	return nil
}

// Package main implements the entry point for the recall API server,
// the review backend that schedules and serves law-study flashcards.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/lexcram/recall-api/internal/config"
	"github.com/lexcram/recall-api/internal/platform/logger"
	"github.com/lexcram/recall-api/internal/platform/postgres"
)

func main() {
	ctx := context.Background()

	cfg, appLogger, err := initialize()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	db, err := openDatabase(ctx, cfg, appLogger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := postgres.RunMigrations(ctx, db); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}
	appLogger.Info("Database migrations applied")

	app, err := newApplication(cfg, appLogger, db)
	if err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// initialize loads configuration and sets up structured logging.
func initialize() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"queue_limit", cfg.Review.QueueLimit,
		"session_ttl_minutes", cfg.Review.SessionTTLMinutes)

	return cfg, appLogger, nil
}

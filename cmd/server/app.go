package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lexcram/recall-api/internal/api/middleware"
	"github.com/lexcram/recall-api/internal/config"
	"github.com/lexcram/recall-api/internal/domain/srs"
	"github.com/lexcram/recall-api/internal/platform/metrics"
	"github.com/lexcram/recall-api/internal/platform/postgres"
	"github.com/lexcram/recall-api/internal/service/auth"
	"github.com/lexcram/recall-api/internal/service/review"
	"github.com/lexcram/recall-api/internal/store"
)

// application holds the shared application dependencies so that wiring
// and shutdown live in one place.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	cardStore store.CardStore

	tokenVerifier  auth.TokenVerifier
	srsService     srs.Service
	reviewService  *review.Service
	sessionManager *review.SessionManager

	registry  *prometheus.Registry
	collector *metrics.Collector

	rateLimiter *middleware.RateLimiter
}

// newApplication wires all dependencies. The database connection must
// already be established and migrated.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.tokenVerifier, err = auth.NewTokenVerifier(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token verifier: %w", err)
	}

	app.cardStore = postgres.NewPostgresCardStore(db, logger)

	srsParams := srs.NewParams(srs.ParamsConfig{
		MinEaseFactor:  cfg.Review.MinEaseFactor,
		FirstInterval:  cfg.Review.FirstIntervalDays,
		SecondInterval: cfg.Review.SecondIntervalDays,
		LapseInterval:  cfg.Review.LapseIntervalDays,
	})
	app.srsService = srs.NewServiceWithParams(srsParams)

	app.reviewService = review.NewService(
		app.cardStore,
		app.srsService,
		logger,
		review.WithQueueLimit(cfg.Review.QueueLimit),
	)

	sessionTTL := time.Duration(cfg.Review.SessionTTLMinutes) * time.Minute
	app.sessionManager = review.NewSessionManager(app.reviewService, logger, sessionTTL)

	app.registry = prometheus.NewRegistry()
	app.collector = metrics.NewCollector(app.registry)

	app.rateLimiter = middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the HTTP server and blocks until shutdown.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases application resources on shutdown.
func (app *application) cleanup() {
	if app.rateLimiter != nil {
		app.rateLimiter.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}

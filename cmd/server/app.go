package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/studyflow/intelligence-api/internal/config"
	"github.com/studyflow/intelligence-api/internal/domain/srs"
	"github.com/studyflow/intelligence-api/internal/platform/metrics"
	"github.com/studyflow/intelligence-api/internal/platform/postgres"
	"github.com/studyflow/intelligence-api/internal/service"
	"github.com/studyflow/intelligence-api/internal/service/auth"
	"github.com/studyflow/intelligence-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	sessionStore store.SessionStore
	reviewStore  store.ReviewStore

	// Service interfaces
	jwtService            auth.JWTService
	srsService            srs.Service
	schedulerService      service.SchedulerService
	analyticsService      service.AnalyticsService
	recommendationService service.RecommendationService

	// Observability
	metrics *metrics.Manager
}

// newApplication creates a new application instance with all dependencies
// initialized. Configuration, logger, and database connection must be
// established before application initialization.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized")

	app.sessionStore = postgres.NewPostgresSessionStore(db, logger)
	app.reviewStore = postgres.NewPostgresReviewStore(db, logger)

	app.srsService = srs.NewServiceWithParams(srs.NewParams(srs.ParamsConfig{
		MinEaseFactor:            cfg.Algorithm.MinEaseFactor,
		MaxEaseFactor:            cfg.Algorithm.MaxEaseFactor,
		BaseEaseFactor:           cfg.Algorithm.BaseEaseFactor,
		RetentionReviewThreshold: cfg.Algorithm.RetentionReviewThreshold,
	}))

	app.schedulerService, err = service.NewSchedulerService(
		app.sessionStore,
		app.reviewStore,
		app.srsService,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler service: %w", err)
	}

	app.analyticsService, err = service.NewAnalyticsService(app.sessionStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create analytics service: %w", err)
	}

	app.recommendationService, err = service.NewRecommendationService(
		app.sessionStore,
		app.reviewStore,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create recommendation service: %w", err)
	}

	app.metrics = metrics.NewManager(metrics.DefaultConfig())

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}

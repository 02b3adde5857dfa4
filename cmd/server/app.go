package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/scry-insights/internal/config"
	"github.com/phrazzld/scry-insights/internal/platform/breaker"
	"github.com/phrazzld/scry-insights/internal/platform/postgres"
	"github.com/phrazzld/scry-insights/internal/service"
	"github.com/phrazzld/scry-insights/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	events   *breaker.EventStore
	catalog  store.CatalogStore
	insights service.InsightsService

	// now is the clock used when a request does not pin a snapshot time
	now func() time.Time
}

// newApplication connects to the database and wires stores and services.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	params, err := service.NewParamsFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid analytics configuration: %w", err)
	}

	db, err := postgres.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	app, err := newApplicationWithDB(cfg, params, db, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

// newApplicationWithDB wires the application around an existing connection.
func newApplicationWithDB(
	cfg *config.Config,
	params *service.Params,
	db *sql.DB,
	logger *slog.Logger,
) (*application, error) {
	events := breaker.NewEventStore(
		postgres.NewPostgresEventStore(db, cfg.Events.MaxRows, logger),
		breaker.Config{
			Name:             "event_store",
			MaxRequests:      cfg.Events.Breaker.MaxRequests,
			Interval:         cfg.Events.Breaker.Interval,
			Timeout:          cfg.Events.Breaker.Timeout,
			FailureThreshold: cfg.Events.Breaker.ConsecutiveFailures,
		},
		logger,
	)
	catalog := postgres.NewPostgresCatalogStore(db, logger)

	insights, err := service.NewInsightsService(events, catalog, params, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create insights service: %w", err)
	}

	return &application{
		config:   cfg,
		logger:   logger,
		db:       db,
		events:   events,
		catalog:  catalog,
		insights: insights,
		now:      time.Now,
	}, nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}
}

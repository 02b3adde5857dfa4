// Package main implements the entry point for the insights server, which
// serves behavioral aggregates (sessions, paths, trending, search quality and
// learner progress) computed from the content-view and search event logs.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/scry-insights/internal/config"
	"github.com/phrazzld/scry-insights/internal/platform/logger"
	"github.com/phrazzld/scry-insights/internal/platform/postgres"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (defaults to ./config.yaml when present)")
	migrate := flag.String("migrate", "", "run a migration command (up, down, status, version, reset) and exit")
	flag.Parse()

	if err := run(*configPath, *migrate); err != nil {
		log.Fatalf("insights server: %v", err)
	}
}

func run(configPath, migrate string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	l.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("timezone", cfg.Analytics.Timezone))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if migrate != "" {
		db, err := postgres.Open(ctx, cfg.Database, l)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		return postgres.Migrate(ctx, db, migrate, l)
	}

	app, err := newApplication(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer app.cleanup()

	return app.serve(ctx)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return config.LoadFile(path)
}

// Package main implements a batch job that computes one global insights pass
// (and optionally per-user passes) and writes the tabular export.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/phrazzld/scry-insights/internal/config"
	"github.com/phrazzld/scry-insights/internal/export"
	"github.com/phrazzld/scry-insights/internal/platform/breaker"
	"github.com/phrazzld/scry-insights/internal/platform/logger"
	"github.com/phrazzld/scry-insights/internal/platform/postgres"
	"github.com/phrazzld/scry-insights/internal/service"
)

type options struct {
	configPath string
	outPath    string
	at         string
	users      string
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "path to a config file (defaults to ./config.yaml when present)")
	flag.StringVar(&opts.outPath, "out", "", "output file (defaults to stdout)")
	flag.StringVar(&opts.at, "at", "", "snapshot time in RFC3339 (defaults to now)")
	flag.StringVar(&opts.users, "users", "", "comma-separated user ids to include progress rows for")
	flag.Parse()

	if err := run(opts); err != nil {
		log.Fatalf("insights export: %v", err)
	}
}

func run(opts options) error {
	at, err := parseAt(opts.at, time.Now())
	if err != nil {
		return err
	}

	var cfg *config.Config
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Logs go to stderr so stdout stays a clean CSV stream.
	l, err := logger.SetupWithWriter(cfg.Server, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	params, err := service.NewParamsFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("invalid analytics configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.Database, l)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	events := breaker.NewEventStore(
		postgres.NewPostgresEventStore(db, cfg.Events.MaxRows, l),
		breaker.Config{
			Name:             "event_store",
			MaxRequests:      cfg.Events.Breaker.MaxRequests,
			Interval:         cfg.Events.Breaker.Interval,
			Timeout:          cfg.Events.Breaker.Timeout,
			FailureThreshold: cfg.Events.Breaker.ConsecutiveFailures,
		},
		l,
	)
	insights, err := service.NewInsightsService(events, postgres.NewPostgresCatalogStore(db, l), params, l)
	if err != nil {
		return err
	}

	global, err := insights.GlobalInsights(ctx, at)
	if err != nil {
		return err
	}

	var users []*service.UserInsights
	for _, userID := range splitUsers(opts.users) {
		u, err := insights.UserInsights(ctx, userID, at)
		if err != nil {
			return err
		}
		users = append(users, u)
	}

	if opts.outPath == "" {
		err = export.WriteCSV(os.Stdout, global, users...)
	} else {
		err = writeFile(opts.outPath, global, users)
	}
	if err != nil {
		return err
	}

	l.Info("export written",
		slog.String("pass_id", global.PassID),
		slog.Time("at", at),
		slog.Int("users", len(users)),
		slog.Int("skipped", global.Skipped.Total()))
	return nil
}

// writeFile writes the export to path. A failed close is reported, since it
// can mean the data never reached disk.
func writeFile(path string, global *service.GlobalInsights, users []*service.UserInsights) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	return writeAndClose(f, global, users)
}

func writeAndClose(wc io.WriteCloser, global *service.GlobalInsights, users []*service.UserInsights) error {
	if err := export.WriteCSV(wc, global, users...); err != nil {
		_ = wc.Close()
		return err
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	return nil
}

func parseAt(raw string, now time.Time) (time.Time, error) {
	if raw == "" {
		return now.UTC(), nil
	}
	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid -at: %w", err)
	}
	return at.UTC(), nil
}

func splitUsers(raw string) []string {
	var users []string
	for _, u := range strings.Split(raw, ",") {
		if u = strings.TrimSpace(u); u != "" {
			users = append(users, u)
		}
	}
	return users
}

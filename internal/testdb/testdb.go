//go:build integration

// Package testdb provides database helpers for integration tests: a migrated
// connection that skips locally (and fails in CI) when no database is
// configured, table resets, and transaction isolation.
package testdb

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver

	"github.com/phrazzld/scry-insights/internal/ciutil"
	"github.com/phrazzld/scry-insights/internal/platform/postgres"
	"github.com/phrazzld/scry-insights/internal/redact"
)

// Tables lists every table owned by the migrations, truncated by Reset.
var Tables = []string{"view_events", "search_events", "content_prerequisites", "content_nodes"}

// Open connects to the test database, applies migrations and registers cleanup.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	url := ciutil.TestDatabaseURL(nil)
	if url == "" {
		if ciutil.IsCI() {
			t.Fatalf("%s or %s must be set in CI", ciutil.EnvTestDatabaseURL, ciutil.EnvDatabaseURL)
		}
		t.Skip("no test database configured; skipping integration test")
	}

	db, err := sql.Open("pgx", url)
	if err != nil {
		t.Fatalf("failed to open test database %s: %v", redact.URL(url), err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("test database %s unreachable: %v", redact.URL(url), err)
	}
	if err := postgres.Migrate(ctx, db, "up", nil); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// Reset truncates every table and restarts identity sequences.
func Reset(t *testing.T, db *sql.DB) {
	t.Helper()
	query := "TRUNCATE "
	for i, table := range Tables {
		if i > 0 {
			query += ", "
		}
		query += table
	}
	query += " RESTART IDENTITY CASCADE"
	if _, err := db.ExecContext(context.Background(), query); err != nil {
		t.Fatalf("failed to reset test database: %v", err)
	}
}

// WithTx runs fn inside a transaction that is always rolled back, so tests
// can write fixtures without affecting each other.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("failed to begin transaction: %v", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			t.Errorf("failed to roll back test transaction: %v", err)
		}
	}()

	fn(t, tx)
}

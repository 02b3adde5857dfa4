package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/scry-insights/internal/platform/logger"
)

// TxFn is a function that reads within a database transaction.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// SnapshotOptions requests a read-only, repeatable-read transaction, so every
// query issued inside it observes the same database snapshot.
var SnapshotOptions = sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

// RunInSnapshot executes fn within a read-only snapshot transaction. Nothing
// is ever written, so the snapshot is released with a rollback whether fn
// succeeds, fails or panics.
func RunInSnapshot(ctx context.Context, db *sql.DB, fn TxFn) (err error) {
	opts := SnapshotOptions
	tx, err := db.BeginTx(ctx, &opts)
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}

	defer func() {
		rbErr := tx.Rollback()
		if rbErr == nil || errors.Is(rbErr, sql.ErrTxDone) {
			return
		}
		logger.FromContext(ctx).Warn("failed to release snapshot",
			slog.String("error", rbErr.Error()))
		if err == nil {
			err = fmt.Errorf("release snapshot: %w", rbErr)
		}
	}()

	return fn(ctx, tx)
}

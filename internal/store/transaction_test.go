package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestRunInSnapshot(t *testing.T) {
	fnErr := errors.New("scan failed")
	rbErr := errors.New("rollback failed")

	tests := []struct {
		name       string
		beginErr   error
		fnErr      error
		rollback   error
		wantErr    error
		wantSubstr string
	}{
		{name: "success releases snapshot"},
		{name: "function error", fnErr: fnErr, wantErr: fnErr},
		{name: "begin error", beginErr: errors.New("connection refused"), wantSubstr: "begin snapshot"},
		{name: "release error after success", rollback: rbErr, wantErr: rbErr, wantSubstr: "release snapshot"},
		{name: "function error wins over release error", fnErr: fnErr, rollback: rbErr, wantErr: fnErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			if tt.beginErr != nil {
				mock.ExpectBegin().WillReturnError(tt.beginErr)
			} else {
				mock.ExpectBegin()
				mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
				mock.ExpectRollback().WillReturnError(tt.rollback)
			}

			err := RunInSnapshot(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
				var n int
				if err := tx.QueryRowContext(ctx, "SELECT 1").Scan(&n); err != nil {
					return err
				}
				return tt.fnErr
			})

			switch {
			case tt.wantErr == nil && tt.wantSubstr == "":
				assert.NoError(t, err)
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantSubstr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantSubstr)
			}
			if tt.fnErr != nil {
				assert.NotErrorIs(t, err, rbErr)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRunInSnapshot_PanicReleasesSnapshot(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = RunInSnapshot(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
			panic("boom")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

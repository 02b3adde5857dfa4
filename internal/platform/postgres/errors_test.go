package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/scry-insights/internal/domain"
	"github.com/phrazzld/scry-insights/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	t.Parallel()

	plain := errors.New("syntax error at or near")

	tests := []struct {
		name        string
		err         error
		unavailable bool
		same        bool
	}{
		{name: "no rows", err: sql.ErrNoRows, same: true},
		{name: "deadline", err: fmt.Errorf("query: %w", context.DeadlineExceeded), unavailable: true},
		{name: "bad conn", err: driver.ErrBadConn, unavailable: true},
		{name: "conn done", err: sql.ErrConnDone, unavailable: true},
		{name: "connection exception", err: &pgconn.PgError{Code: "08006"}, unavailable: true},
		{name: "admin shutdown", err: &pgconn.PgError{Code: "57P01"}, unavailable: true},
		{name: "statement timeout", err: &pgconn.PgError{Code: "57014"}, unavailable: true},
		{name: "too many connections", err: &pgconn.PgError{Code: "53300"}, unavailable: true},
		{name: "network error", err: &net.OpError{Op: "dial", Err: errors.New("refused")}, unavailable: true},
		{name: "undefined table", err: &pgconn.PgError{Code: "42P01"}, same: true},
		{name: "plain error", err: plain, same: true},
		{name: "caller canceled", err: fmt.Errorf("query: %w", context.Canceled), same: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := MapError(tt.err)
			assert.Equal(t, tt.unavailable, errors.Is(mapped, store.ErrUnavailable))
			assert.Equal(t, tt.unavailable, errors.Is(mapped, domain.ErrUpstreamUnavailable))
			if tt.same {
				assert.Equal(t, tt.err, mapped)
			}
		})
	}

	assert.NoError(t, MapError(nil))
	assert.False(t, IsUnavailable(nil))
}

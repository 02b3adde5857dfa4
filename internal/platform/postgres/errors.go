package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/scry-insights/internal/store"
)

// PostgreSQL error codes that mean the server cannot serve the query right
// now, as opposed to a problem with the query itself.
const (
	// connectionExceptionClass covers every SQLSTATE in class 08.
	connectionExceptionClass = "08"

	tooManyConnectionsCode = "53300"
	queryCanceledCode      = "57014"
	adminShutdownCode      = "57P01"
	crashShutdownCode      = "57P02"
	cannotConnectNowCode   = "57P03"
)

// MapError maps a database error to an appropriate store error.
// It wraps the original error to preserve context for logging. Failures of
// the database itself wrap store.ErrUnavailable so callers can tell an outage
// from a bad request.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	// A caller that went away is not an outage.
	if errors.Is(err, context.Canceled) {
		return err
	}

	if IsUnavailable(err) {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}

	return err
}

// IsUnavailable reports whether err means the database could not answer:
// refused or dropped connections, timeouts, shutdowns and statement timeouts.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case tooManyConnectionsCode, queryCanceledCode, adminShutdownCode, crashShutdownCode, cannotConnectNowCode:
			return true
		}
		return strings.HasPrefix(pgErr.Code, connectionExceptionClass)
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	if pgconn.Timeout(err) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

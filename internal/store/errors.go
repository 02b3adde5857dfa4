package store

import (
	"errors"
	"fmt"

	"github.com/phrazzld/scry-insights/internal/domain"
)

// Errors shared by every store implementation.
var (
	// ErrInvalidFilter is returned when a fetch is not bounded by a valid
	// time range. Unbounded scans of the event logs are never issued.
	ErrInvalidFilter = errors.New("invalid event filter")

	// ErrTooManyRows is returned when a fetch matches more rows than the
	// store is configured to return in one pass.
	ErrTooManyRows = errors.New("too many rows")

	// ErrUnavailable marks failures of the backing store itself: connection
	// errors, timeouts and an open circuit breaker.
	ErrUnavailable = fmt.Errorf("%w: event store", domain.ErrUpstreamUnavailable)
)

// IsUnavailableError reports whether err means the store could not be
// reached, as opposed to a bad request or bad data.
func IsUnavailableError(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, domain.ErrUpstreamUnavailable)
}

// StoreError records which entity and operation a store failure came from.
// Message is a short description safe to log; Err keeps the cause.
type StoreError struct {
	Entity    string
	Operation string
	Message   string
	Err       error
}

func (e *StoreError) Error() string {
	msg := e.Entity + " " + e.Operation + ": " + e.Message
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError wraps err with the entity and operation it came from.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{Entity: entity, Operation: operation, Message: message, Err: err}
}

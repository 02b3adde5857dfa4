package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/phrazzld/scry-insights/internal/domain"
	"github.com/phrazzld/scry-insights/internal/store"
)

// ErrorKind classifies why an aggregation pass failed so callers can tell
// "no data" apart from "computation failed".
type ErrorKind string

// Possible error kinds
const (
	// KindConfiguration means the pass cannot run until configuration or
	// catalog data is fixed (cyclic prerequisites, invalid thresholds).
	KindConfiguration ErrorKind = "configuration"
	// KindUpstreamUnavailable means the event store could not be read and the
	// pass should be retried.
	KindUpstreamUnavailable ErrorKind = "upstream_unavailable"
	// KindInvalidRequest means the caller supplied an unusable argument.
	KindInvalidRequest ErrorKind = "invalid_request"
	// KindCanceled means the caller went away before the pass finished.
	KindCanceled ErrorKind = "canceled"
	// KindInternal covers everything else.
	KindInternal ErrorKind = "internal"
)

// ErrInvalidUserID is returned when a per-user pass is requested without a user.
var ErrInvalidUserID = errors.New("user id is required")

// AggregationError wraps a failed aggregation pass. No partial aggregate is
// ever returned alongside it.
type AggregationError struct {
	// Operation is the pass that failed (e.g., "global_insights")
	Operation string
	// Kind classifies the failure
	Kind ErrorKind
	// Skipped is the number of malformed records excluded before the failure
	Skipped int
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for AggregationError.
func (e *AggregationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed (%s): %v", e.Operation, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s failed (%s)", e.Operation, e.Kind)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *AggregationError) Unwrap() error {
	return e.Err
}

// NewAggregationError classifies err and wraps it. It returns nil for a nil
// error and passes an existing AggregationError through unchanged.
func NewAggregationError(operation string, skipped int, err error) error {
	if err == nil {
		return nil
	}

	var aggErr *AggregationError
	if errors.As(err, &aggErr) {
		return aggErr
	}

	return &AggregationError{
		Operation: operation,
		Kind:      Classify(err),
		Skipped:   skipped,
		Err:       err,
	}
}

// Classify maps an error onto an ErrorKind.
func Classify(err error) ErrorKind {
	var aggErr *AggregationError
	switch {
	case errors.As(err, &aggErr):
		return aggErr.Kind
	case errors.Is(err, context.Canceled):
		return KindCanceled
	case errors.Is(err, domain.ErrConfiguration), errors.Is(err, store.ErrTooManyRows):
		return KindConfiguration
	case errors.Is(err, domain.ErrUpstreamUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		return KindUpstreamUnavailable
	case errors.Is(err, ErrInvalidUserID), errors.Is(err, store.ErrInvalidFilter):
		return KindInvalidRequest
	default:
		return KindInternal
	}
}

func errNilDependency(name string) error {
	return fmt.Errorf("%s cannot be nil", name)
}

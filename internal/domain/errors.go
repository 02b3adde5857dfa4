// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrMalformedRecord marks a single event that cannot take part in an
	// aggregation pass (unparsable timestamp, missing required field).
	// Malformed records are skipped and counted, never fatal to a batch.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrConfiguration is returned when aggregation cannot proceed because the
	// configuration is invalid, for example a cyclic prerequisite graph or an
	// out-of-range threshold. It is fatal for the affected aggregation.
	ErrConfiguration = errors.New("configuration error")

	// ErrUpstreamUnavailable is returned when the event store cannot be read.
	// The whole aggregation pass fails and must be retried by the caller.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// ValidationError describes a single invalid field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Message
}

// Unwrap allows errors.Is(err, ErrValidation).
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

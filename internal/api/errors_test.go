package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/phrazzld/scry-insights/internal/api/shared"
	"github.com/phrazzld/scry-insights/internal/domain"
	"github.com/phrazzld/scry-insights/internal/service"
	"github.com/phrazzld/scry-insights/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", domain.NewValidationError("slug", "cannot be empty"), http.StatusBadRequest},
		{"invalid user", service.NewAggregationError("user_insights", 0, service.ErrInvalidUserID), http.StatusBadRequest},
		{"unavailable", service.NewAggregationError("global_insights", 0, store.ErrUnavailable), http.StatusServiceUnavailable},
		{"configuration", fmt.Errorf("%w: cycle", domain.ErrConfiguration), http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
		{"client gone", service.NewAggregationError("global_insights", 0, context.Canceled), StatusClientClosedRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
	assert.Equal(t, "Invalid request", GetSafeErrorMessage(service.ErrInvalidUserID))

	config := GetSafeErrorMessage(domain.ErrConfiguration)
	unavailable := GetSafeErrorMessage(store.ErrUnavailable)
	assert.NotEqual(t, config, unavailable, "configuration and outage messages must differ")

	leaky := errors.New("query failed: SELECT * FROM view_events")
	assert.NotContains(t, GetSafeErrorMessage(leaky), "view_events")
}

func TestSanitizeValidationError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"datetime", shared.ValidateRequest(shared.SnapshotQuery{At: "yesterday"}), "Invalid at: expected an RFC3339 timestamp"},
		{"required", shared.ValidateRequest(userPathParams{}), "Invalid userid: required field"},
		{"too long", shared.ValidateRequest(userPathParams{UserID: strings.Repeat("u", 129)}), "Invalid userid: too long"},
		{"not a validation error", errors.New("other"), "Validation error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeValidationError(tt.err))
		})
	}
}

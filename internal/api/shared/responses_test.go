package shared

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/scry-insights/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondWithError(t *testing.T) {
	log, buf := logger.NewTestLogger(t)

	req := httptest.NewRequest(http.MethodGet, "/api/insights", nil)
	ctx := WithTraceID(logger.WithLogger(req.Context(), log), "trace-1234")
	rec := httptest.NewRecorder()

	cause := errors.New("dial tcp 10.0.0.5:5432: connect: connection refused")
	RespondWithError(rec, req.WithContext(ctx), http.StatusServiceUnavailable,
		"Insights are temporarily unavailable", "upstream_unavailable", cause)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, ErrorResponse{
		Error:   "Insights are temporarily unavailable",
		Kind:    "upstream_unavailable",
		TraceID: "trace-1234",
	}, body)

	logger.AssertLogContains(t, buf, "API error response")
	assert.NotContains(t, buf.String(), "10.0.0.5")
}

func TestTraceID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, GetTraceID(req.Context()))

	id := NewTraceID()
	assert.Len(t, id, 32)
	assert.NotEqual(t, id, NewTraceID())
	assert.Equal(t, id, GetTraceID(WithTraceID(req.Context(), id)))
}

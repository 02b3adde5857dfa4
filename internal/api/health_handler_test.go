package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/phrazzld/scry-insights/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error {
	return f(ctx)
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		db         Pinger
		wantStatus int
		want       HealthResponse
	}{
		{
			name:       "no database configured",
			wantStatus: http.StatusOK,
			want:       HealthResponse{Status: "ok", Breaker: "closed"},
		},
		{
			name:       "database reachable",
			db:         pingerFunc(func(context.Context) error { return nil }),
			wantStatus: http.StatusOK,
			want:       HealthResponse{Status: "ok", Database: "ok", Breaker: "closed"},
		},
		{
			name:       "database unreachable",
			db:         pingerFunc(func(context.Context) error { return errors.New("connection refused") }),
			wantStatus: http.StatusServiceUnavailable,
			want:       HealthResponse{Status: "degraded", Database: "unreachable", Breaker: "closed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, _ := logger.NewTestLogger(t)
			h := NewHealthHandler(tt.db, func() string { return "closed" }, log)

			rec := doGet(t, h, "/health")
			require.Equal(t, tt.wantStatus, rec.Code)

			var got HealthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

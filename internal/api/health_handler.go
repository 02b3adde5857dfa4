package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/scry-insights/internal/api/shared"
	"github.com/phrazzld/scry-insights/internal/platform/logger"
	"github.com/phrazzld/scry-insights/internal/redact"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler serves GET /health.
type HealthHandler struct {
	db      Pinger
	breaker func() string
	timeout time.Duration
	logger  *slog.Logger
}

// NewHealthHandler creates a HealthHandler. db and breaker may be nil.
func NewHealthHandler(db Pinger, breaker func() string, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{
		db:      db,
		breaker: breaker,
		timeout: 2 * time.Second,
		logger:  logger.With(slog.String("component", "health_handler")),
	}
}

// ServeHTTP reports 200 when the database answers a ping and 503 otherwise.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok"}
	if h.breaker != nil {
		resp.Breaker = h.breaker()
	}

	status := http.StatusOK
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
		defer cancel()

		resp.Database = "ok"
		if err := h.db.PingContext(ctx); err != nil {
			logger.FromContextOrDefault(r.Context(), h.logger).Warn("health check ping failed",
				slog.String("error", redact.Error(err)))
			resp.Status = "degraded"
			resp.Database = "unreachable"
			status = http.StatusServiceUnavailable
		}
	}

	shared.RespondWithJSON(w, r, status, resp)
}

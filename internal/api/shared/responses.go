package shared

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/scry-insights/internal/platform/logger"
	"github.com/phrazzld/scry-insights/internal/redact"
)

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

// RespondWithJSON writes a JSON response with the given status code and data.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// RespondWithError writes a JSON error carrying message and kind, and logs
// the redacted cause. The cause itself never reaches the client.
// Server errors log at ERROR, client errors at DEBUG.
func RespondWithError(w http.ResponseWriter, r *http.Request, status int, message, kind string, cause error) {
	traceID := GetTraceID(r.Context())

	attrs := []slog.Attr{
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
		slog.Int("status_code", status),
		slog.String("user_message", message),
	}
	if kind != "" {
		attrs = append(attrs, slog.String("kind", kind))
	}
	if cause != nil {
		attrs = append(attrs,
			slog.String("error", redact.Error(cause)),
			slog.String("error_type", fmt.Sprintf("%T", cause)))
	}

	level := slog.LevelDebug
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logger.FromContext(r.Context()).LogAttrs(r.Context(), level, "API error response", attrs...)

	RespondWithJSON(w, r, status, ErrorResponse{Error: message, Kind: kind, TraceID: traceID})
}

package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/scry-insights/internal/api/shared"
	"github.com/phrazzld/scry-insights/internal/platform/logger"
	"github.com/phrazzld/scry-insights/internal/service"
)

// userPathParams holds the {userID} path parameter.
type userPathParams struct {
	UserID string `validate:"required,max=128,printascii"`
}

// snapshotTime parses the "at" query parameter. It writes a 400 response and
// returns false when the parameter is invalid.
func snapshotTime(w http.ResponseWriter, r *http.Request, now time.Time) (time.Time, bool) {
	at, err := shared.ParseSnapshotTime(r, now)
	if err != nil {
		handleValidationError(w, r, err)
		return time.Time{}, false
	}
	return at, true
}

// pathUserID extracts and validates the {userID} path parameter. It writes a
// 400 response and returns false when the parameter is invalid.
func pathUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	params := userPathParams{UserID: chi.URLParam(r, "userID")}
	if err := shared.ValidateRequest(params); err != nil {
		handleValidationError(w, r, err)
		return "", false
	}
	return params.UserID, true
}

func handleValidationError(w http.ResponseWriter, r *http.Request, err error) {
	message := "Invalid request"
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		message = SanitizeValidationError(err)
	}
	shared.RespondWithError(w, r, http.StatusBadRequest, message, string(service.KindInvalidRequest), err)
}

// HandleAPIError writes the sanitized response for a service error.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)
	kind := service.Classify(err)

	logger.FromContext(r.Context()).Debug("mapping service error",
		slog.String("kind", string(kind)),
		slog.Int("status", status))

	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "30")
	}
	shared.RespondWithError(w, r, status, GetSafeErrorMessage(err), string(kind), err)
}

package shared

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest checks the validate tags of a request struct.
func ValidateRequest(v any) error {
	return validate.Struct(v)
}

// SnapshotQuery holds the query parameters shared by every read view.
type SnapshotQuery struct {
	// At pins the snapshot time (RFC3339). Empty means now.
	At string `validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// ParseSnapshotTime reads the "at" query parameter, falling back to now.
func ParseSnapshotTime(r *http.Request, now time.Time) (time.Time, error) {
	q := SnapshotQuery{At: r.URL.Query().Get("at")}
	if err := ValidateRequest(q); err != nil {
		return time.Time{}, err
	}
	if q.At == "" {
		return now.UTC(), nil
	}
	at, err := time.Parse(time.RFC3339, q.At)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid at: %w", err)
	}
	return at.UTC(), nil
}

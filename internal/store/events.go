package store

import (
	"context"
	"fmt"
	"time"

	"github.com/phrazzld/scry-insights/internal/domain"
)

// EventFilter bounds a fetch from either event log. Since is inclusive and
// Until exclusive. UserID restricts the fetch to one user when set.
type EventFilter struct {
	UserID *string
	Since  time.Time
	Until  time.Time
}

// Validate rejects filters that would scan an unbounded range.
func (f EventFilter) Validate() error {
	if f.Since.IsZero() || f.Until.IsZero() {
		return fmt.Errorf("%w: both since and until are required", ErrInvalidFilter)
	}
	if !f.Since.Before(f.Until) {
		return fmt.Errorf("%w: since %s is not before until %s",
			ErrInvalidFilter, f.Since.Format(time.RFC3339), f.Until.Format(time.RFC3339))
	}
	if f.UserID != nil && *f.UserID == "" {
		return fmt.Errorf("%w: user id cannot be empty", ErrInvalidFilter)
	}
	return nil
}

// Window returns the filter's range length.
func (f EventFilter) Window() time.Duration {
	return f.Until.Sub(f.Since)
}

// EventStore provides read access to the append-only view and search logs.
// Results are ordered by timestamp, then ingestion sequence.
type EventStore interface {
	// FetchViews returns the view events matching filter.
	// Returns ErrInvalidFilter for unbounded filters, ErrTooManyRows when the
	// window holds more rows than the store returns in one pass, and an error
	// wrapping ErrUnavailable when the store cannot be reached.
	FetchViews(ctx context.Context, filter EventFilter) ([]domain.ViewEvent, error)

	// FetchSearches returns the search events matching filter, with the same
	// error contract as FetchViews.
	FetchSearches(ctx context.Context, filter EventFilter) ([]domain.SearchEvent, error)
}

// CatalogStore provides the content catalog and its prerequisite edges.
type CatalogStore interface {
	// LoadCatalog returns every content node ordered by slug.
	LoadCatalog(ctx context.Context) (domain.Catalog, error)
}

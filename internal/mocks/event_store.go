package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/scry-insights/internal/domain"
	"github.com/phrazzld/scry-insights/internal/store"
)

// MockEventStore implements store.EventStore for testing
type MockEventStore struct {
	// Custom behavior functions
	FetchViewsFn    func(ctx context.Context, filter store.EventFilter) ([]domain.ViewEvent, error)
	FetchSearchesFn func(ctx context.Context, filter store.EventFilter) ([]domain.SearchEvent, error)

	// Default response values
	Views    []domain.ViewEvent
	Searches []domain.SearchEvent
	Err      error

	mu            sync.Mutex
	ViewFilters   []store.EventFilter
	SearchFilters []store.EventFilter
}

var _ store.EventStore = (*MockEventStore)(nil)

// FetchViews implements the store.EventStore interface
func (m *MockEventStore) FetchViews(ctx context.Context, filter store.EventFilter) ([]domain.ViewEvent, error) {
	m.mu.Lock()
	m.ViewFilters = append(m.ViewFilters, filter)
	m.mu.Unlock()

	if m.FetchViewsFn != nil {
		return m.FetchViewsFn(ctx, filter)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Views, nil
}

// FetchSearches implements the store.EventStore interface
func (m *MockEventStore) FetchSearches(ctx context.Context, filter store.EventFilter) ([]domain.SearchEvent, error) {
	m.mu.Lock()
	m.SearchFilters = append(m.SearchFilters, filter)
	m.mu.Unlock()

	if m.FetchSearchesFn != nil {
		return m.FetchSearchesFn(ctx, filter)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Searches, nil
}

// Calls returns copies of the recorded view and search filters.
func (m *MockEventStore) Calls() (views, searches []store.EventFilter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]store.EventFilter(nil), m.ViewFilters...),
		append([]store.EventFilter(nil), m.SearchFilters...)
}

// MockCatalogStore implements store.CatalogStore for testing
type MockCatalogStore struct {
	LoadCatalogFn func(ctx context.Context) (domain.Catalog, error)

	Catalog domain.Catalog
	Err     error
}

var _ store.CatalogStore = (*MockCatalogStore)(nil)

// LoadCatalog implements the store.CatalogStore interface
func (m *MockCatalogStore) LoadCatalog(ctx context.Context) (domain.Catalog, error) {
	if m.LoadCatalogFn != nil {
		return m.LoadCatalogFn(ctx)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Catalog, nil
}

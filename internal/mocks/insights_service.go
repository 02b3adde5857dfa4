package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/phrazzld/scry-insights/internal/service"
)

// MockInsightsService implements service.InsightsService for testing
type MockInsightsService struct {
	// Custom behavior functions
	GlobalInsightsFn func(ctx context.Context, now time.Time) (*service.GlobalInsights, error)
	UserInsightsFn   func(ctx context.Context, userID string, now time.Time) (*service.UserInsights, error)

	// Default response values
	Global *service.GlobalInsights
	User   *service.UserInsights
	Err    error

	// Call tracking for verification
	mu      sync.Mutex
	Times   []time.Time
	UserIDs []string
}

var _ service.InsightsService = (*MockInsightsService)(nil)

// GlobalInsights implements the service.InsightsService interface
func (m *MockInsightsService) GlobalInsights(ctx context.Context, now time.Time) (*service.GlobalInsights, error) {
	m.mu.Lock()
	m.Times = append(m.Times, now)
	m.mu.Unlock()

	if m.GlobalInsightsFn != nil {
		return m.GlobalInsightsFn(ctx, now)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Global, nil
}

// UserInsights implements the service.InsightsService interface
func (m *MockInsightsService) UserInsights(
	ctx context.Context,
	userID string,
	now time.Time,
) (*service.UserInsights, error) {
	m.mu.Lock()
	m.Times = append(m.Times, now)
	m.UserIDs = append(m.UserIDs, userID)
	m.mu.Unlock()

	if m.UserInsightsFn != nil {
		return m.UserInsightsFn(ctx, userID, now)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.User, nil
}

// LastTime returns the most recent now argument, or the zero time.
func (m *MockInsightsService) LastTime() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Times) == 0 {
		return time.Time{}
	}
	return m.Times[len(m.Times)-1]
}

// Package breaker guards the event store with a circuit breaker so that an
// unreachable database fails aggregation passes fast instead of stacking up
// timed-out fetches.
package breaker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/phrazzld/scry-insights/internal/domain"
	"github.com/phrazzld/scry-insights/internal/metrics"
	"github.com/phrazzld/scry-insights/internal/platform/logger"
	"github.com/phrazzld/scry-insights/internal/store"
)

// Config configures the breaker.
type Config struct {
	Name string
	// MaxRequests is the number of trial requests allowed while half-open.
	MaxRequests uint32
	// Interval clears failure counts while closed; zero never clears them.
	Interval time.Duration
	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration
	// FailureThreshold is the number of consecutive outages that opens it.
	FailureThreshold uint32
}

// EventStore is a store.EventStore behind a circuit breaker. Only outages
// count as failures; rejected filters and oversized windows pass through
// without affecting the breaker.
type EventStore struct {
	next   store.EventStore
	cb     *gobreaker.CircuitBreaker[any]
	logger *slog.Logger
}

// Ensure EventStore implements store.EventStore interface
var _ store.EventStore = (*EventStore)(nil)

// NewEventStore wraps next with a circuit breaker.
func NewEventStore(next store.EventStore, cfg Config, logger *slog.Logger) *EventStore {
	if next == nil {
		panic("next cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Name == "" {
		cfg.Name = "event_store"
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	log := logger.With(slog.String("component", "event_store_breaker"))

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !store.IsUnavailableError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
			metrics.BreakerState.WithLabelValues(name).Set(float64(to))
		},
	}
	metrics.BreakerState.WithLabelValues(cfg.Name).Set(float64(gobreaker.StateClosed))

	return &EventStore{
		next:   next,
		cb:     gobreaker.NewCircuitBreaker[any](settings),
		logger: log,
	}
}

// State returns the breaker state name for health reporting.
func (s *EventStore) State() string {
	return s.cb.State().String()
}

// FetchViews implements store.EventStore.FetchViews
func (s *EventStore) FetchViews(ctx context.Context, filter store.EventFilter) ([]domain.ViewEvent, error) {
	result, err := s.cb.Execute(func() (any, error) {
		return s.next.FetchViews(ctx, filter)
	})
	if err != nil {
		return nil, s.translate(ctx, err)
	}
	events, _ := result.([]domain.ViewEvent)
	return events, nil
}

// FetchSearches implements store.EventStore.FetchSearches
func (s *EventStore) FetchSearches(ctx context.Context, filter store.EventFilter) ([]domain.SearchEvent, error) {
	result, err := s.cb.Execute(func() (any, error) {
		return s.next.FetchSearches(ctx, filter)
	})
	if err != nil {
		return nil, s.translate(ctx, err)
	}
	events, _ := result.([]domain.SearchEvent)
	return events, nil
}

// translate turns breaker rejections into store outages.
func (s *EventStore) translate(ctx context.Context, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		logger.FromContextOrDefault(ctx, s.logger).Debug("fetch rejected by circuit breaker",
			slog.String("state", s.State()))
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	return err
}

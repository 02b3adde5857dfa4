// Package metrics exposes Prometheus instrumentation for aggregation passes
// and event store fetches.
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcomes recorded for aggregation passes.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"

	// OutcomeCanceled marks passes abandoned by their caller.
	OutcomeCanceled = "canceled"
)

var (
	// Aggregation metrics
	AggregationPasses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insights_aggregation_passes_total",
			Help: "Total number of aggregation passes by view and outcome",
		},
		[]string{"view", "outcome"},
	)

	AggregationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "insights_aggregation_duration_seconds",
			Help:    "Duration of aggregation passes including fetches",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"view"},
	)

	SkippedRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insights_skipped_records_total",
			Help: "Total number of malformed event records excluded from aggregation",
		},
		[]string{"source"}, // "view", "search"
	)

	// Event store metrics
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "insights_event_fetch_duration_seconds",
			Help:    "Duration of event store fetches",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"entity"},
	)

	FetchedRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insights_event_fetched_rows_total",
			Help: "Total number of event rows fetched",
		},
		[]string{"entity"},
	)

	FetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insights_event_fetch_errors_total",
			Help: "Total number of failed event store fetches",
		},
		[]string{"entity"},
	)

	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "insights_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

// RecordPass records one aggregation pass.
func RecordPass(view string, started time.Time, err error) {
	outcome := OutcomeSuccess
	switch {
	case errors.Is(err, context.Canceled):
		outcome = OutcomeCanceled
	case err != nil:
		outcome = OutcomeError
	}
	AggregationPasses.WithLabelValues(view, outcome).Inc()
	AggregationDuration.WithLabelValues(view).Observe(time.Since(started).Seconds())
}

// RecordSkipped adds n malformed records for source.
func RecordSkipped(source string, n int) {
	if n > 0 {
		SkippedRecords.WithLabelValues(source).Add(float64(n))
	}
}

// RecordFetch records one event store fetch.
func RecordFetch(entity string, started time.Time, rows int, err error) {
	FetchDuration.WithLabelValues(entity).Observe(time.Since(started).Seconds())
	if err != nil {
		FetchErrors.WithLabelValues(entity).Inc()
		return
	}
	FetchedRows.WithLabelValues(entity).Add(float64(rows))
}

package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordPass(t *testing.T) {
	before := testutil.ToFloat64(AggregationPasses.WithLabelValues("test_view", OutcomeError))
	RecordPass("test_view", time.Now(), errors.New("boom"))
	RecordPass("test_view", time.Now(), nil)

	assert.Equal(t, before+1, testutil.ToFloat64(AggregationPasses.WithLabelValues("test_view", OutcomeError)))
	assert.GreaterOrEqual(t, testutil.ToFloat64(AggregationPasses.WithLabelValues("test_view", OutcomeSuccess)), 1.0)

	errorsBefore := testutil.ToFloat64(AggregationPasses.WithLabelValues("test_view", OutcomeError))
	canceledBefore := testutil.ToFloat64(AggregationPasses.WithLabelValues("test_view", OutcomeCanceled))
	RecordPass("test_view", time.Now(), fmt.Errorf("fetch: %w", context.Canceled))
	assert.Equal(t, errorsBefore, testutil.ToFloat64(AggregationPasses.WithLabelValues("test_view", OutcomeError)))
	assert.Equal(t, canceledBefore+1, testutil.ToFloat64(AggregationPasses.WithLabelValues("test_view", OutcomeCanceled)))
}

func TestRecordSkipped(t *testing.T) {
	before := testutil.ToFloat64(SkippedRecords.WithLabelValues("test_source"))
	RecordSkipped("test_source", 0)
	RecordSkipped("test_source", 3)
	assert.Equal(t, before+3, testutil.ToFloat64(SkippedRecords.WithLabelValues("test_source")))
}

func TestRecordFetch(t *testing.T) {
	rowsBefore := testutil.ToFloat64(FetchedRows.WithLabelValues("test_entity"))
	errsBefore := testutil.ToFloat64(FetchErrors.WithLabelValues("test_entity"))

	RecordFetch("test_entity", time.Now(), 42, nil)
	RecordFetch("test_entity", time.Now(), 0, errors.New("down"))

	assert.Equal(t, rowsBefore+42, testutil.ToFloat64(FetchedRows.WithLabelValues("test_entity")))
	assert.Equal(t, errsBefore+1, testutil.ToFloat64(FetchErrors.WithLabelValues("test_entity")))
}

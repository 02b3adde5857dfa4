package searchquality

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/phrazzld/scry-insights/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, time.February, 2, 9, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }
func int64Ptr(i int64) *int64 { return &i }
func boolPtr(b bool) *bool    { return &b }

func search(id int64, category string, results int) domain.SearchEvent {
	e := domain.SearchEvent{
		ID:           id,
		QueryText:    "query",
		Timestamp:    base.Add(time.Duration(id) * time.Minute),
		ResultsCount: results,
	}
	if category != "" {
		e.Filters = map[string]string{domain.FilterCategory: category}
	}
	return e
}

func clicked(e domain.SearchEvent, ttc int64) domain.SearchEvent {
	e.ClickedSlug = strPtr("model")
	e.TimeToClickMs = int64Ptr(ttc)
	return e
}

func fixture() []domain.SearchEvent {
	abandoned := search(3, "models", 5)
	abandoned.Failed = boolPtr(true)
	explicitSuccess := clicked(search(4, "models", 5), 4000)
	explicitSuccess.Failed = boolPtr(false)

	return []domain.SearchEvent{
		clicked(search(1, "models", 10), 2000),
		search(2, "models", 0),
		abandoned,
		explicitSuccess,
		search(5, "", 20),
	}
}

func TestScore_CompositeFormula(t *testing.T) {
	t.Parallel()

	result, err := Score(fixture(), NewDefaultParams())
	require.NoError(t, err)
	require.Len(t, result.Records, 3)

	global := result.Records[0]
	assert.Equal(t, domain.ScopeGlobal, global.Scope)
	assert.Equal(t, 5, global.Searches)
	assert.Equal(t, 2, global.Clicks)
	assert.Equal(t, 40.0, global.ClickThroughRate)
	assert.Equal(t, 40.0, global.FailureRate)
	assert.Equal(t, 8.0, global.AvgResultsCount)
	require.NotNil(t, global.AvgTimeToClickMs)
	assert.Equal(t, 3000.0, *global.AvgTimeToClickMs)
	// 0.4*40 + 0.2*70 + 0.3*60 + 0.1*80
	assert.Equal(t, 56.0, global.QualityScore)

	uncategorized := result.Records[1]
	assert.Equal(t, domain.ScopeCategory, uncategorized.Scope)
	assert.Equal(t, domain.UncategorizedBucket, uncategorized.Category)
	assert.Nil(t, uncategorized.AvgTimeToClickMs)
	// no timed clicks: speed contributes nothing
	assert.Equal(t, 40.0, uncategorized.QualityScore)

	models := result.Records[2]
	assert.Equal(t, "models", models.Category)
	assert.Equal(t, 4, models.Searches)
	assert.Equal(t, 50.0, models.ClickThroughRate)
	assert.Equal(t, 50.0, models.FailureRate)
	assert.Equal(t, 54.0, models.QualityScore)
}

func TestScore_FailedFlagIsAuthoritative(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		results  int
		failed   *bool
		expected float64
	}{
		{name: "zero results without flag", results: 0, expected: 100},
		{name: "results without flag", results: 3, expected: 0},
		{name: "explicit abandonment with results", results: 3, failed: boolPtr(true), expected: 100},
		{name: "explicit success with zero results", results: 0, failed: boolPtr(false), expected: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e := search(1, "", tc.results)
			e.Failed = tc.failed

			result, err := Score([]domain.SearchEvent{e}, NewDefaultParams())
			require.NoError(t, err)
			require.NotEmpty(t, result.Records)
			assert.Equal(t, tc.expected, result.Records[0].FailureRate)
		})
	}
}

func TestScore_Bounds(t *testing.T) {
	t.Parallel()

	slow := clicked(search(1, "a", 1000), 50_000_000)
	fast := clicked(search(2, "b", 1000), 0)

	result, err := Score([]domain.SearchEvent{slow, fast}, NewDefaultParams())
	require.NoError(t, err)

	for _, r := range result.Records {
		assert.False(t, math.IsNaN(r.QualityScore) || math.IsInf(r.QualityScore, 0))
		assert.GreaterOrEqual(t, r.QualityScore, 0.0)
		assert.LessOrEqual(t, r.QualityScore, 100.0)
	}
	assert.Equal(t, 80.0, result.Records[1].QualityScore, "slow search earns no speed points")
	assert.Equal(t, 100.0, result.Records[2].QualityScore)
}

func TestScore_Rounding(t *testing.T) {
	t.Parallel()

	events := []domain.SearchEvent{
		clicked(search(1, "", 1), 100),
		search(2, "", 1),
		search(3, "", 1),
	}

	result, err := Score(events, NewDefaultParams())
	require.NoError(t, err)
	assert.Equal(t, 33.33, result.Records[0].ClickThroughRate)
}

func TestScore_EmptyInput(t *testing.T) {
	t.Parallel()

	result, err := Score(nil, NewDefaultParams())
	require.NoError(t, err)
	assert.Empty(t, result.Records)
	assert.NotNil(t, result.Records)
}

func TestScore_SkipsMalformed(t *testing.T) {
	t.Parallel()

	events := []domain.SearchEvent{
		{ID: 1, ResultsCount: 3},
		{ID: 2, Timestamp: base, ResultsCount: -1},
		search(3, "", 4),
	}

	result, err := Score(events, NewDefaultParams())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Skipped)
	assert.Equal(t, 1, result.Records[0].Searches)
}

func TestScore_CustomWeights(t *testing.T) {
	t.Parallel()

	params := NewParams(ParamsConfig{CTRWeight: 1})
	params.SpeedWeight, params.SuccessWeight, params.RelevanceWeight = 0, 0, 0

	result, err := Score(fixture(), params)
	require.NoError(t, err)
	assert.Equal(t, 40.0, result.Records[0].QualityScore)
}

func TestScore_InvalidParams(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		mutate func(p *Params)
	}{
		{name: "negative weight", mutate: func(p *Params) { p.CTRWeight = -0.1 }},
		{name: "all weights zero", mutate: func(p *Params) {
			p.CTRWeight, p.SpeedWeight, p.SuccessWeight, p.RelevanceWeight = 0, 0, 0, 0
		}},
		{name: "zero speed divisor", mutate: func(p *Params) { p.SpeedDivisorMs = 0 }},
		{name: "zero relevance saturation", mutate: func(p *Params) { p.RelevanceSaturation = 0 }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			params := NewDefaultParams()
			tc.mutate(params)
			_, err := Score(fixture(), params)
			assert.True(t, errors.Is(err, domain.ErrConfiguration))
		})
	}
}

func TestScore_OrderIndependent(t *testing.T) {
	t.Parallel()

	events := fixture()
	for i := int64(10); i < 40; i++ {
		e := search(i, []string{"", "models", "thinking", "bias"}[i%4], int(i%7))
		if i%3 == 0 {
			e = clicked(e, i*37)
		}
		events = append(events, e)
	}

	expected, err := Score(events, NewDefaultParams())
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(11))
	for run := 0; run < 10; run++ {
		shuffled := append([]domain.SearchEvent(nil), events...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		got, err := Score(shuffled, NewDefaultParams())
		require.NoError(t, err)
		assert.Equal(t, expected, got)
	}
}

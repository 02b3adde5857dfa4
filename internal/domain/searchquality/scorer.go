// Package searchquality scores how well search serves users, globally and per
// content category.
package searchquality

import (
	"math"
	"sort"

	"github.com/phrazzld/scry-insights/internal/domain"
)

// Result holds the global record followed by one record per category.
type Result struct {
	Records []domain.SearchQualityRecord
	Skipped int
}

type tally struct {
	searches     int
	clicks       int
	failed       int
	results      int
	timedClicks  int
	timeToClicks int64
}

func (t *tally) add(e domain.SearchEvent) {
	t.searches++
	t.results += e.ResultsCount
	if e.Clicked() {
		t.clicks++
	}
	if e.IsFailed() {
		t.failed++
	}
	if e.TimeToClickMs != nil && *e.TimeToClickMs >= 0 {
		t.timedClicks++
		t.timeToClicks += *e.TimeToClickMs
	}
}

// Score computes search quality over the given events. The first record is
// the global scope; category records follow in ascending category order, with
// unfiltered searches in the "all" bucket. Groups without searches are
// omitted, so an empty input yields no records.
func Score(events []domain.SearchEvent, params *Params) (Result, error) {
	if err := params.Validate(); err != nil {
		return Result{}, err
	}

	var global tally
	categories := make(map[string]*tally)
	skipped := 0

	for _, e := range events {
		if err := e.Validate(); err != nil {
			skipped++
			continue
		}
		global.add(e)

		category := e.Category()
		if category == "" {
			category = domain.UncategorizedBucket
		}
		t, ok := categories[category]
		if !ok {
			t = &tally{}
			categories[category] = t
		}
		t.add(e)
	}

	records := make([]domain.SearchQualityRecord, 0, len(categories)+1)
	if global.searches > 0 {
		records = append(records, build(domain.ScopeGlobal, "", &global, params))
	}

	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		records = append(records, build(domain.ScopeCategory, name, categories[name], params))
	}

	return Result{Records: records, Skipped: skipped}, nil
}

func build(scope domain.SearchScope, category string, t *tally, params *Params) domain.SearchQualityRecord {
	searches := float64(t.searches)
	ctr := float64(t.clicks) / searches * 100
	failureRate := float64(t.failed) / searches * 100
	avgResults := float64(t.results) / searches

	var avgTTC *float64
	speed := 0.0
	if t.timedClicks > 0 {
		avg := float64(t.timeToClicks) / float64(t.timedClicks)
		speed = math.Max(0, 100-avg/params.SpeedDivisorMs)
		rounded := round2(avg)
		avgTTC = &rounded
	}
	success := 100 - failureRate
	relevance := math.Min(avgResults/params.RelevanceSaturation*100, 100)

	quality := params.CTRWeight*ctr +
		params.SpeedWeight*speed +
		params.SuccessWeight*success +
		params.RelevanceWeight*relevance

	return domain.SearchQualityRecord{
		Scope:            scope,
		Category:         category,
		Searches:         t.searches,
		Clicks:           t.clicks,
		ClickThroughRate: round2(ctr),
		FailureRate:      round2(failureRate),
		AvgTimeToClickMs: avgTTC,
		AvgResultsCount:  round2(avgResults),
		QualityScore:     round2(quality),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

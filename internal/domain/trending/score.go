// Package trending computes velocity-weighted popularity scores and ranks for
// content items.
package trending

import (
	"math"
	"sort"
	"time"

	"github.com/phrazzld/scry-insights/internal/domain"
)

// Result holds the ranked trending list.
type Result struct {
	Records []domain.TrendingRecord
	Skipped int
}

type counter struct {
	name     string
	category string
	// latest is the event that last set name and category; the most recent
	// view wins so renamed content shows its current name.
	latest  domain.ViewEvent
	recent  int
	prior   int
	viewers map[string]struct{}
}

// Compute scores every content item with at least one view in the recent
// window [now-Window, now) and ranks them by score descending, breaking ties
// by slug ascending. Views in [now-2*Window, now-Window) feed the velocity.
// Events outside both windows are ignored, so the function is safe to call
// repeatedly against a growing log.
func Compute(events []domain.ViewEvent, now time.Time, params *Params) (Result, error) {
	if err := params.Validate(); err != nil {
		return Result{}, err
	}

	recentStart := now.Add(-params.Window)
	priorStart := now.Add(-params.Lookback())

	counters := make(map[string]*counter)
	skipped := 0

	for _, e := range events {
		if err := e.Validate(); err != nil {
			skipped++
			continue
		}
		if e.Timestamp.Before(priorStart) || !e.Timestamp.Before(now) {
			continue
		}

		c, ok := counters[e.ContentSlug]
		if !ok {
			c = &counter{viewers: make(map[string]struct{})}
			counters[e.ContentSlug] = c
		}
		if c.latest.Timestamp.IsZero() || c.latest.Before(e) {
			c.latest = e
			c.name = e.ContentName
			c.category = e.Category
		}

		if e.Timestamp.Before(recentStart) {
			c.prior++
			continue
		}
		c.recent++
		if viewer, ok := viewerKey(e); ok {
			c.viewers[viewer] = struct{}{}
		}
	}

	records := make([]domain.TrendingRecord, 0, len(counters))
	for slug, c := range counters {
		if c.recent == 0 {
			continue
		}
		v := velocity(c.recent, c.prior, params)
		records = append(records, domain.TrendingRecord{
			ContentSlug:      slug,
			ContentName:      c.name,
			Category:         c.category,
			Score:            score(c.recent, len(c.viewers), v, params),
			Direction:        direction(v, params),
			ViewsLast24h:     c.recent,
			PriorWindowViews: c.prior,
			UniqueViewers:    len(c.viewers),
			Velocity:         v,
		})
	}

	Rank(records)
	if params.Limit > 0 && len(records) > params.Limit {
		records = records[:params.Limit]
	}

	return Result{Records: records, Skipped: skipped}, nil
}

// Rank sorts records by score descending, then slug ascending, and assigns
// dense 1-based ranks.
func Rank(records []domain.TrendingRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].Score != records[j].Score {
			return records[i].Score > records[j].Score
		}
		return records[i].ContentSlug < records[j].ContentSlug
	})
	for i := range records {
		records[i].Rank = i + 1
	}
}

// viewerKey identifies a distinct viewer. Anonymous views count by their
// session id; anonymous views without one cannot be told apart.
func viewerKey(e domain.ViewEvent) (string, bool) {
	if e.UserID != nil && *e.UserID != "" {
		return "user:" + *e.UserID, true
	}
	if e.HasSessionID() {
		return "session:" + *e.SessionID, true
	}
	return "", false
}

func velocity(recent, prior int, params *Params) float64 {
	v := float64(recent-prior) / math.Max(1, float64(prior))
	return math.Min(params.MaxVelocity, math.Max(params.MinVelocity, v))
}

func score(recent, unique int, v float64, params *Params) float64 {
	s := params.ViewsWeight*float64(recent) +
		params.UniqueViewersWeight*float64(unique) +
		params.VelocityWeight*v
	return math.Max(0, s)
}

func direction(v float64, params *Params) domain.Direction {
	switch {
	case v > params.DirectionThreshold:
		return domain.DirectionUp
	case v < -params.DirectionThreshold:
		return domain.DirectionDown
	default:
		return domain.DirectionStable
	}
}

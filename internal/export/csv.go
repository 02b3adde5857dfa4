// Package export renders published aggregates as a flat comma-separated
// table for offline reporting: one row per metric of each record.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/phrazzld/scry-insights/internal/domain"
	"github.com/phrazzld/scry-insights/internal/service"
)

// Header is the first row of every export.
var Header = []string{"section", "key", "metric", "value"}

// Sections of the export, in output order.
const (
	SectionSummary       = "summary"
	SectionPath          = "path"
	SectionTransition    = "transition"
	SectionTrending      = "trending"
	SectionSearchQuality = "search_quality"
	SectionProgress      = "progress"
	SectionUnlock        = "unlock"
	SectionAchievement   = "achievement"
)

type rowWriter struct {
	w   *csv.Writer
	err error
}

func (r *rowWriter) write(section, key, metric, value string) {
	if r.err != nil {
		return
	}
	r.err = r.w.Write([]string{section, key, metric, value})
}

func (r *rowWriter) int(section, key, metric string, v int) {
	r.write(section, key, metric, strconv.Itoa(v))
}

func (r *rowWriter) float(section, key, metric string, v float64) {
	r.write(section, key, metric, strconv.FormatFloat(v, 'f', -1, 64))
}

func (r *rowWriter) bool(section, key, metric string, v bool) {
	r.write(section, key, metric, strconv.FormatBool(v))
}

// WriteCSV writes global insights followed by any per-user insights. Output
// order follows the record order of the inputs, which is already
// deterministic. A nil global aggregate writes only the header and user rows.
func WriteCSV(out io.Writer, global *service.GlobalInsights, users ...*service.UserInsights) error {
	w := csv.NewWriter(out)
	r := &rowWriter{w: w}
	r.err = w.Write(Header)

	if global != nil {
		writeGlobal(r, global)
	}
	for _, u := range users {
		if u != nil {
			writeUser(r, u)
		}
	}

	if r.err != nil {
		return fmt.Errorf("failed to write csv row: %w", r.err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

func writeGlobal(r *rowWriter, g *service.GlobalInsights) {
	r.write(SectionSummary, g.PassID, "generated_at", g.GeneratedAt.Format(time.RFC3339))
	r.int(SectionSummary, g.PassID, "sessions", g.Sessions)
	r.int(SectionSummary, g.PassID, "degenerate_sessions", g.DegenerateSessions)
	r.int(SectionSummary, g.PassID, "qualifying_sessions", g.QualifyingSessions)
	r.int(SectionSummary, g.PassID, "skipped_views", g.Skipped.Views)
	r.int(SectionSummary, g.PassID, "skipped_searches", g.Skipped.Searches)

	for _, p := range g.Paths {
		r.int(SectionPath, p.Key, "occurrence_count", p.OccurrenceCount)
		r.float(SectionPath, p.Key, "average_total_duration_seconds", p.AverageTotalDurationSeconds)
		r.float(SectionPath, p.Key, "completion_rate", p.CompletionRate)
	}

	for _, t := range g.Transitions {
		r.int(SectionTransition, t.FromCategory+" → "+t.ToCategory, "count", t.Count)
	}

	for _, t := range g.Trending {
		r.int(SectionTrending, t.ContentSlug, "rank", t.Rank)
		r.float(SectionTrending, t.ContentSlug, "score", t.Score)
		r.write(SectionTrending, t.ContentSlug, "direction", string(t.Direction))
		r.int(SectionTrending, t.ContentSlug, "views_last_24h", t.ViewsLast24h)
		r.int(SectionTrending, t.ContentSlug, "prior_window_views", t.PriorWindowViews)
		r.int(SectionTrending, t.ContentSlug, "unique_viewers", t.UniqueViewers)
		r.float(SectionTrending, t.ContentSlug, "velocity", t.Velocity)
	}

	for _, s := range g.SearchQuality {
		key := searchKey(s)
		r.int(SectionSearchQuality, key, "searches", s.Searches)
		r.int(SectionSearchQuality, key, "clicks", s.Clicks)
		r.float(SectionSearchQuality, key, "click_through_rate", s.ClickThroughRate)
		r.float(SectionSearchQuality, key, "failure_rate", s.FailureRate)
		if s.AvgTimeToClickMs != nil {
			r.float(SectionSearchQuality, key, "avg_time_to_click_ms", *s.AvgTimeToClickMs)
		}
		r.float(SectionSearchQuality, key, "avg_results_count", s.AvgResultsCount)
		r.float(SectionSearchQuality, key, "quality_score", s.QualityScore)
	}
}

func writeUser(r *rowWriter, u *service.UserInsights) {
	for _, p := range u.Progress {
		key := u.UserID + "/" + p.ContentSlug
		r.int(SectionProgress, key, "percentage", p.Percentage)
		r.bool(SectionProgress, key, "completed", p.Completed)
	}
	for _, s := range u.Unlocks {
		r.bool(SectionUnlock, u.UserID+"/"+s.ContentSlug, "locked", s.Locked)
	}
	for _, a := range u.Achievements {
		key := u.UserID + "/" + a.AchievementID
		r.int(SectionAchievement, key, "progress", a.Progress)
		r.int(SectionAchievement, key, "target", a.Target)
		r.bool(SectionAchievement, key, "unlocked", a.Unlocked)
	}
}

// searchKey names a search quality record: "global" or "category/<name>".
func searchKey(s domain.SearchQualityRecord) string {
	if s.Scope == domain.ScopeGlobal {
		return string(domain.ScopeGlobal)
	}
	return string(domain.ScopeCategory) + "/" + s.Category
}

// Package progress derives per-user content progress, prerequisite unlock
// state and achievements from view events.
package progress

import (
	"sort"
	"time"

	"github.com/phrazzld/scry-insights/internal/domain"
)

// Tracker evaluates progress against a fixed prerequisite graph.
type Tracker struct {
	graph  *Graph
	params *Params
}

// NewTracker creates a tracker after validating params.
func NewTracker(graph *Graph, params *Params) (*Tracker, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if graph == nil {
		graph = &Graph{nodes: map[string]domain.ContentNode{}}
	}
	return &Tracker{graph: graph, params: params}, nil
}

// ProgressResult holds a user's progress, one state per viewed slug ordered by
// slug.
type ProgressResult struct {
	States  []domain.ProgressState
	Skipped int
}

// Progress computes the user's progress per content item. A slug's percentage
// is the best tier reached by any single view, so it never decreases as the
// log grows. Events belonging to other users are ignored.
func (t *Tracker) Progress(userID string, events []domain.ViewEvent) ProgressResult {
	bySlug := make(map[string]*domain.ProgressState)
	skipped := 0

	for _, e := range events {
		if err := e.Validate(); err != nil {
			skipped++
			continue
		}
		if e.UserKey() != userID {
			continue
		}

		state, ok := bySlug[e.ContentSlug]
		if !ok {
			state = &domain.ProgressState{UserID: userID, ContentSlug: e.ContentSlug}
			bySlug[e.ContentSlug] = state
		}
		if pct := t.params.percentageFor(e.Duration()); pct > state.Percentage {
			state.Percentage = pct
		}
		if e.Timestamp.After(state.LastViewedAt) {
			state.LastViewedAt = e.Timestamp
		}
	}

	states := make([]domain.ProgressState, 0, len(bySlug))
	for _, state := range bySlug {
		state.Completed = state.Percentage >= t.params.CompletionThreshold
		states = append(states, *state)
	}
	sort.Slice(states, func(i, j int) bool {
		return states[i].ContentSlug < states[j].ContentSlug
	})

	return ProgressResult{States: states, Skipped: skipped}
}

// UnlockStates reports which catalog nodes are available, in topological
// order. A node is locked while any prerequisite is below the completion
// threshold or is itself locked.
func (t *Tracker) UnlockStates(progress []domain.ProgressState) []domain.UnlockState {
	percentages := make(map[string]int, len(progress))
	for _, p := range progress {
		percentages[p.ContentSlug] = p.Percentage
	}

	locked := make(map[string]bool, t.graph.Len())
	states := make([]domain.UnlockState, 0, t.graph.Len())
	for _, slug := range t.graph.order {
		node := t.graph.nodes[slug]

		var missing []string
		for _, pre := range node.Prerequisites {
			if locked[pre] || percentages[pre] < t.params.CompletionThreshold {
				missing = append(missing, pre)
			}
		}
		missing = dedupeSorted(missing)

		locked[slug] = len(missing) > 0
		states = append(states, domain.UnlockState{
			ContentSlug:          slug,
			Locked:               locked[slug],
			MissingPrerequisites: missing,
		})
	}
	return states
}

// Achievements evaluates every configured achievement for the user, in
// definition order. Progress is capped at the target.
func (t *Tracker) Achievements(userID string, progress []domain.ProgressState, events []domain.ViewEvent) []domain.Achievement {
	stats := t.collect(userID, progress, events)

	achievements := make([]domain.Achievement, 0, len(t.params.Achievements))
	for _, def := range t.params.Achievements {
		value := stats[def.Metric]
		if value > def.Target {
			value = def.Target
		}
		achievements = append(achievements, domain.Achievement{
			UserID:        userID,
			AchievementID: def.ID,
			Name:          def.Name,
			Progress:      value,
			Target:        def.Target,
			Unlocked:      value >= def.Target,
		})
	}
	return achievements
}

func (t *Tracker) collect(userID string, progress []domain.ProgressState, events []domain.ViewEvent) map[Metric]int {
	stats := make(map[Metric]int)

	stats[MetricDistinctContent] = len(progress)
	for _, p := range progress {
		if p.Completed {
			stats[MetricCompletedContent]++
		}
	}

	categories := make(map[string]struct{})
	days := make(map[time.Time]struct{})
	seconds := 0
	for _, e := range events {
		if e.Validate() != nil || e.UserKey() != userID {
			continue
		}
		stats[MetricViews]++
		seconds += e.Duration()
		if e.Category != "" {
			categories[e.Category] = struct{}{}
		}
		local := e.Timestamp.In(t.params.Location)
		days[time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)] = struct{}{}
	}
	stats[MetricFocusMinutes] = seconds / 60
	stats[MetricDistinctCategories] = len(categories)
	stats[MetricLongestStreakDays] = longestStreak(days)

	return stats
}

// longestStreak returns the longest run of consecutive calendar days. Days
// are normalized to UTC midnight so adjacent days differ by exactly 24h.
func longestStreak(days map[time.Time]struct{}) int {
	sorted := make([]time.Time, 0, len(days))
	for d := range days {
		sorted = append(sorted, d)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	longest, current := 0, 0
	for i, d := range sorted {
		if i > 0 && d.Sub(sorted[i-1]) == 24*time.Hour {
			current++
		} else {
			current = 1
		}
		if current > longest {
			longest = current
		}
	}
	return longest
}

func dedupeSorted(slugs []string) []string {
	if len(slugs) == 0 {
		return nil
	}
	sort.Strings(slugs)
	out := slugs[:1]
	for _, s := range slugs[1:] {
		if s != out[len(out)-1] {
			out = append(out, s)
		}
	}
	return out
}

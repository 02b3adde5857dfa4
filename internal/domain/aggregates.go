package domain

import "time"

// Session is a contiguous run of one user's view events. Sessions are derived
// and never persisted as ground truth.
type Session struct {
	Key     string      `json:"session_key"`
	UserKey string      `json:"user_key"`
	Events  []ViewEvent `json:"events"`
}

// Degenerate reports whether only one event could be attributed to the session.
func (s Session) Degenerate() bool {
	return len(s.Events) == 1
}

// Len returns the number of events in the session.
func (s Session) Len() int {
	return len(s.Events)
}

// TotalDurationSeconds sums view durations, treating missing values as 0.
func (s Session) TotalDurationSeconds() int {
	total := 0
	for _, e := range s.Events {
		total += e.Duration()
	}
	return total
}

// StartedAt returns the timestamp of the first event.
func (s Session) StartedAt() time.Time {
	if len(s.Events) == 0 {
		return time.Time{}
	}
	return s.Events[0].Timestamp
}

// Path is an ordered prefix of content slugs visited within sessions.
type Path struct {
	Key                         string   `json:"path"`
	Steps                       []string `json:"steps"`
	OccurrenceCount             int      `json:"occurrence_count"`
	AverageTotalDurationSeconds float64  `json:"average_total_duration_seconds"`
	// CompletionRate is the fraction (0-1) of sessions whose last step
	// exceeded the completion threshold.
	CompletionRate float64 `json:"completion_rate"`
}

// TransitionEdge counts adjacent moves between two different categories.
type TransitionEdge struct {
	FromCategory string `json:"from_category"`
	ToCategory   string `json:"to_category"`
	Count        int    `json:"count"`
}

// Direction describes how a content item's popularity is moving.
type Direction string

// Possible direction values
const (
	DirectionUp     Direction = "up"
	DirectionDown   Direction = "down"
	DirectionStable Direction = "stable"
)

// TrendingRecord is the ranked popularity of one content item.
type TrendingRecord struct {
	ContentSlug      string    `json:"content_slug"`
	ContentName      string    `json:"content_name,omitempty"`
	Category         string    `json:"category,omitempty"`
	Score            float64   `json:"score"`
	Rank             int       `json:"rank"`
	Direction        Direction `json:"direction"`
	ViewsLast24h     int       `json:"views_last_24h"`
	PriorWindowViews int       `json:"prior_window_views"`
	UniqueViewers    int       `json:"unique_viewers"`
	Velocity         float64   `json:"velocity"`
}

// SearchScope distinguishes the global search quality record from
// per-category records.
type SearchScope string

// Possible search scopes
const (
	ScopeGlobal   SearchScope = "global"
	ScopeCategory SearchScope = "category"
)

// UncategorizedBucket holds searches without a category filter.
const UncategorizedBucket = "all"

// SearchQualityRecord scores search effectiveness for one scope.
// Rates and scores are on a 0-100 scale.
type SearchQualityRecord struct {
	Scope            SearchScope `json:"scope"`
	Category         string      `json:"category,omitempty"`
	Searches         int         `json:"searches"`
	Clicks           int         `json:"clicks"`
	ClickThroughRate float64     `json:"click_through_rate"`
	FailureRate      float64     `json:"failure_rate"`
	// AvgTimeToClickMs is nil when no search in scope recorded a click time.
	AvgTimeToClickMs *float64 `json:"avg_time_to_click_ms,omitempty"`
	AvgResultsCount  float64  `json:"avg_results_count"`
	QualityScore     float64  `json:"quality_score"`
}

// ProgressState is a user's completion of one content item.
type ProgressState struct {
	UserID       string    `json:"user_id"`
	ContentSlug  string    `json:"content_slug"`
	Percentage   int       `json:"percentage"`
	Completed    bool      `json:"completed"`
	LastViewedAt time.Time `json:"last_viewed_at"`
}

// UnlockState is the prerequisite-gated availability of one catalog node for
// a user.
type UnlockState struct {
	ContentSlug          string   `json:"content_slug"`
	Locked               bool     `json:"locked"`
	MissingPrerequisites []string `json:"missing_prerequisites,omitempty"`
}

// Achievement is a user's progress toward one milestone.
type Achievement struct {
	UserID        string `json:"user_id"`
	AchievementID string `json:"achievement_id"`
	Name          string `json:"name"`
	Progress      int    `json:"progress"`
	Target        int    `json:"target"`
	Unlocked      bool   `json:"unlocked"`
}

package progress

import (
	"fmt"
	"time"

	"github.com/phrazzld/scry-insights/internal/domain"
)

// Tier maps a single view's duration to a completion percentage.
type Tier struct {
	MinSeconds int
	Percentage int
}

// Metric identifies the user statistic an achievement tracks.
type Metric string

// Metrics tracked by achievements. Every metric only grows as the event log
// grows, so achievement progress never regresses.
const (
	MetricViews              Metric = "views"
	MetricDistinctContent    Metric = "distinct_content"
	MetricCompletedContent   Metric = "completed_content"
	MetricLongestStreakDays  Metric = "longest_streak_days"
	MetricFocusMinutes       Metric = "focus_minutes"
	MetricDistinctCategories Metric = "distinct_categories"
)

// AchievementDefinition describes one milestone.
type AchievementDefinition struct {
	ID     string
	Name   string
	Metric Metric
	Target int
}

// Params defines all configurable parameters for progress tracking
type Params struct {
	// Tiers must be ordered by MinSeconds descending. A view earns the
	// percentage of the first tier it reaches, or zero.
	Tiers []Tier

	// CompletionThreshold is the percentage at which content counts as
	// completed and unlocks the content that depends on it.
	CompletionThreshold int

	// Location defines calendar days for streaks.
	Location *time.Location

	Achievements []AchievementDefinition
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance
type ParamsConfig struct {
	// Tiers replaces the default tiers when non-empty.
	Tiers               []Tier
	CompletionThreshold int
	Location            *time.Location
	// AchievementTargets overrides targets keyed by achievement ID.
	AchievementTargets map[string]int
}

// DefaultAchievements returns the built-in achievement definitions.
func DefaultAchievements() []AchievementDefinition {
	return []AchievementDefinition{
		{ID: "first_view", Name: "First Steps", Metric: MetricViews, Target: 1},
		{ID: "explorer", Name: "Explorer", Metric: MetricDistinctContent, Target: 10},
		{ID: "scholar", Name: "Scholar", Metric: MetricCompletedContent, Target: 5},
		{ID: "streak", Name: "Consistent Learner", Metric: MetricLongestStreakDays, Target: 7},
		{ID: "deep_focus", Name: "Deep Focus", Metric: MetricFocusMinutes, Target: 30},
		{ID: "well_rounded", Name: "Well Rounded", Metric: MetricDistinctCategories, Target: 5},
	}
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		Tiers: []Tier{
			{MinSeconds: 60, Percentage: 100},
			{MinSeconds: 30, Percentage: 75},
			{MinSeconds: 15, Percentage: 50},
			{MinSeconds: 1, Percentage: 25},
		},
		CompletionThreshold: 75,
		Location:            time.UTC,
		Achievements:        DefaultAchievements(),
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if len(config.Tiers) > 0 {
		params.Tiers = append([]Tier(nil), config.Tiers...)
	}
	if config.CompletionThreshold > 0 {
		params.CompletionThreshold = config.CompletionThreshold
	}
	if config.Location != nil {
		params.Location = config.Location
	}
	for i, def := range params.Achievements {
		if target, ok := config.AchievementTargets[def.ID]; ok && target > 0 {
			params.Achievements[i].Target = target
		}
	}

	return params
}

// Validate reports whether the parameters can be used for tracking.
func (p *Params) Validate() error {
	if len(p.Tiers) == 0 {
		return fmt.Errorf("%w: at least one progress tier is required", domain.ErrConfiguration)
	}
	for i, tier := range p.Tiers {
		if tier.MinSeconds <= 0 || tier.Percentage <= 0 || tier.Percentage > 100 {
			return fmt.Errorf("%w: progress tier %d is out of range (%ds -> %d%%)",
				domain.ErrConfiguration, i, tier.MinSeconds, tier.Percentage)
		}
		if i > 0 {
			prev := p.Tiers[i-1]
			if tier.MinSeconds >= prev.MinSeconds || tier.Percentage >= prev.Percentage {
				return fmt.Errorf("%w: progress tiers must be strictly descending", domain.ErrConfiguration)
			}
		}
	}
	if p.CompletionThreshold < 1 || p.CompletionThreshold > 100 {
		return fmt.Errorf("%w: completion threshold must be within 1..100, got %d",
			domain.ErrConfiguration, p.CompletionThreshold)
	}
	if p.Location == nil {
		return fmt.Errorf("%w: progress location cannot be nil", domain.ErrConfiguration)
	}

	seen := make(map[string]struct{}, len(p.Achievements))
	for _, def := range p.Achievements {
		if def.ID == "" {
			return fmt.Errorf("%w: achievement id cannot be empty", domain.ErrConfiguration)
		}
		if _, dup := seen[def.ID]; dup {
			return fmt.Errorf("%w: duplicate achievement %q", domain.ErrConfiguration, def.ID)
		}
		seen[def.ID] = struct{}{}
		if def.Target <= 0 {
			return fmt.Errorf("%w: achievement %q needs a positive target", domain.ErrConfiguration, def.ID)
		}
		switch def.Metric {
		case MetricViews, MetricDistinctContent, MetricCompletedContent,
			MetricLongestStreakDays, MetricFocusMinutes, MetricDistinctCategories:
		default:
			return fmt.Errorf("%w: achievement %q has unknown metric %q",
				domain.ErrConfiguration, def.ID, def.Metric)
		}
	}
	return nil
}

// percentageFor applies the tier function to one view duration.
func (p *Params) percentageFor(seconds int) int {
	for _, tier := range p.Tiers {
		if seconds >= tier.MinSeconds {
			return tier.Percentage
		}
	}
	return 0
}

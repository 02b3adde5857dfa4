package config

import (
	"fmt"
	"time"

	"github.com/phrazzld/scry-insights/internal/domain"
	"github.com/phrazzld/scry-insights/internal/domain/paths"
	"github.com/phrazzld/scry-insights/internal/domain/progress"
	"github.com/phrazzld/scry-insights/internal/domain/searchquality"
	"github.com/phrazzld/scry-insights/internal/domain/session"
	"github.com/phrazzld/scry-insights/internal/domain/trending"
)

// Location resolves the configured timezone.
func (a AnalyticsConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", domain.ErrConfiguration, a.Timezone)
	}
	return loc, nil
}

// SessionParams builds session reconstruction parameters.
func (a AnalyticsConfig) SessionParams() (*session.Params, error) {
	loc, err := a.Location()
	if err != nil {
		return nil, err
	}
	params := session.NewParams(session.ParamsConfig{
		InactivityGap: a.Session.InactivityGap,
		Location:      loc,
	})
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return params, nil
}

// PathsParams builds path mining parameters.
func (a AnalyticsConfig) PathsParams() (*paths.Params, error) {
	params := paths.NewParams(paths.ParamsConfig{
		MinPathLength:  a.Paths.MinPathLength,
		PathDepth:      a.Paths.PathDepth,
		TopPaths:       a.Paths.TopPaths,
		TopTransitions: a.Paths.TopTransitions,
	})
	params.CompletionThresholdSeconds = a.Paths.CompletionThresholdSeconds
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return params, nil
}

// TrendingParams builds trending score parameters.
func (a AnalyticsConfig) TrendingParams() (*trending.Params, error) {
	params := trending.NewParams(trending.ParamsConfig{
		Window: a.Trending.Window,
		Limit:  a.Trending.Limit,
	})
	params.ViewsWeight = a.Trending.ViewsWeight
	params.UniqueViewersWeight = a.Trending.UniqueViewersWeight
	params.VelocityWeight = a.Trending.VelocityWeight
	params.MinVelocity = a.Trending.MinVelocity
	params.MaxVelocity = a.Trending.MaxVelocity
	params.DirectionThreshold = a.Trending.DirectionThreshold
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return params, nil
}

// SearchParams builds search quality parameters.
func (a AnalyticsConfig) SearchParams() (*searchquality.Params, error) {
	params := searchquality.NewParams(searchquality.ParamsConfig{
		SpeedDivisorMs:      a.Search.SpeedDivisorMs,
		RelevanceSaturation: a.Search.RelevanceSaturation,
	})
	params.CTRWeight = a.Search.CTRWeight
	params.SpeedWeight = a.Search.SpeedWeight
	params.SuccessWeight = a.Search.SuccessWeight
	params.RelevanceWeight = a.Search.RelevanceWeight
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return params, nil
}

// ProgressParams builds progress tracking parameters.
func (a AnalyticsConfig) ProgressParams() (*progress.Params, error) {
	loc, err := a.Location()
	if err != nil {
		return nil, err
	}
	tiers := make([]progress.Tier, 0, len(a.Progress.Tiers))
	for _, t := range a.Progress.Tiers {
		tiers = append(tiers, progress.Tier{MinSeconds: t.MinSeconds, Percentage: t.Percentage})
	}
	params := progress.NewParams(progress.ParamsConfig{
		Tiers:               tiers,
		CompletionThreshold: a.Progress.CompletionThreshold,
		Location:            loc,
		AchievementTargets:  a.Progress.AchievementTargets,
	})
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return params, nil
}

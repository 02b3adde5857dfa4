package service

import (
	"fmt"
	"time"

	"github.com/phrazzld/scry-insights/internal/config"
	"github.com/phrazzld/scry-insights/internal/domain"
	"github.com/phrazzld/scry-insights/internal/domain/paths"
	"github.com/phrazzld/scry-insights/internal/domain/progress"
	"github.com/phrazzld/scry-insights/internal/domain/searchquality"
	"github.com/phrazzld/scry-insights/internal/domain/session"
	"github.com/phrazzld/scry-insights/internal/domain/trending"
)

// HistoryStart is the lower bound of per-user fetches. Progress and
// achievements are computed over the user's whole history, so they never
// regress as time passes.
var HistoryStart = time.Unix(0, 0).UTC()

// Default fetch windows and timeout.
const (
	DefaultPathsWindow      = 7 * 24 * time.Hour
	DefaultSearchWindow     = 7 * 24 * time.Hour
	DefaultFetchTimeout     = 10 * time.Second
)

// Params bundles the parameters of every aggregation plus the event windows
// each pass reads.
type Params struct {
	Session  *session.Params
	Paths    *paths.Params
	Trending *trending.Params
	Search   *searchquality.Params
	Progress *progress.Params

	// PathsWindow bounds the views used for sessions and paths.
	PathsWindow time.Duration
	// SearchWindow bounds the searches used for quality scores.
	SearchWindow time.Duration
	// FetchTimeout caps the concurrent snapshot fetch of one pass.
	FetchTimeout time.Duration
}

// NewDefaultParams returns Params built from every package default.
func NewDefaultParams() *Params {
	return &Params{
		Session:          session.NewDefaultParams(),
		Paths:            paths.NewDefaultParams(),
		Trending:         trending.NewDefaultParams(),
		Search:           searchquality.NewDefaultParams(),
		Progress:         progress.NewDefaultParams(),
		PathsWindow:      DefaultPathsWindow,
		SearchWindow:     DefaultSearchWindow,
		FetchTimeout:     DefaultFetchTimeout,
	}
}

// NewParamsFromConfig builds Params from the application configuration.
func NewParamsFromConfig(cfg *config.Config) (*Params, error) {
	a := cfg.Analytics

	sessionParams, err := a.SessionParams()
	if err != nil {
		return nil, err
	}
	pathsParams, err := a.PathsParams()
	if err != nil {
		return nil, err
	}
	trendingParams, err := a.TrendingParams()
	if err != nil {
		return nil, err
	}
	searchParams, err := a.SearchParams()
	if err != nil {
		return nil, err
	}
	progressParams, err := a.ProgressParams()
	if err != nil {
		return nil, err
	}

	params := &Params{
		Session:          sessionParams,
		Paths:            pathsParams,
		Trending:         trendingParams,
		Search:           searchParams,
		Progress:         progressParams,
		PathsWindow:      a.Paths.Window,
		SearchWindow:     a.Search.Window,
		FetchTimeout:     cfg.Events.FetchTimeout,
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return params, nil
}

// Validate checks every nested parameter set and window.
func (p *Params) Validate() error {
	if p.Session == nil || p.Paths == nil || p.Trending == nil || p.Search == nil || p.Progress == nil {
		return fmt.Errorf("%w: aggregation parameters are incomplete", domain.ErrConfiguration)
	}
	if p.PathsWindow <= 0 || p.SearchWindow <= 0 {
		return fmt.Errorf("%w: fetch windows must be positive", domain.ErrConfiguration)
	}
	if p.FetchTimeout <= 0 {
		return fmt.Errorf("%w: fetch timeout must be positive", domain.ErrConfiguration)
	}
	for _, validate := range []func() error{
		p.Session.Validate,
		p.Paths.Validate,
		p.Trending.Validate,
		p.Search.Validate,
		p.Progress.Validate,
	} {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

// viewWindow is the widest view range a global pass needs.
func (p *Params) viewWindow() time.Duration {
	if lookback := p.Trending.Lookback(); lookback > p.PathsWindow {
		return lookback
	}
	return p.PathsWindow
}

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-insights/internal/domain"
	"github.com/phrazzld/scry-insights/internal/domain/paths"
	"github.com/phrazzld/scry-insights/internal/domain/progress"
	"github.com/phrazzld/scry-insights/internal/domain/searchquality"
	"github.com/phrazzld/scry-insights/internal/domain/session"
	"github.com/phrazzld/scry-insights/internal/domain/trending"
	"github.com/phrazzld/scry-insights/internal/metrics"
	"github.com/phrazzld/scry-insights/internal/platform/logger"
	"github.com/phrazzld/scry-insights/internal/store"
	"golang.org/x/sync/errgroup"
)

// Views recorded in metrics and error operations.
const (
	viewGlobal = "global_insights"
	viewUser   = "user_insights"
)

// Entities recorded in fetch metrics.
const (
	entityViews    = "view_event"
	entitySearches = "search_event"
)

// SkippedCounts tallies malformed records excluded from a pass.
type SkippedCounts struct {
	Views    int `json:"views"`
	Searches int `json:"searches"`
}

// Total returns the number of skipped records across both logs.
func (s SkippedCounts) Total() int {
	return s.Views + s.Searches
}

// GlobalInsights is the complete set of product-wide aggregates computed from
// one event snapshot.
type GlobalInsights struct {
	PassID             string                       `json:"pass_id"`
	GeneratedAt        time.Time                    `json:"generated_at"`
	Sessions           int                          `json:"sessions"`
	DegenerateSessions int                          `json:"degenerate_sessions"`
	QualifyingSessions int                          `json:"qualifying_sessions"`
	Paths              []domain.Path                `json:"paths"`
	Transitions        []domain.TransitionEdge      `json:"transitions"`
	Trending           []domain.TrendingRecord      `json:"trending"`
	SearchQuality      []domain.SearchQualityRecord `json:"search_quality"`
	Skipped            SkippedCounts                `json:"skipped"`
}

// UserInsights is one user's progress, unlock state and achievements.
type UserInsights struct {
	PassID       string                 `json:"pass_id"`
	UserID       string                 `json:"user_id"`
	GeneratedAt  time.Time              `json:"generated_at"`
	Progress     []domain.ProgressState `json:"progress"`
	Unlocks      []domain.UnlockState   `json:"unlocks"`
	Achievements []domain.Achievement   `json:"achievements"`
	Skipped      SkippedCounts          `json:"skipped"`
}

// InsightsService computes and publishes aggregates. Every call is a full pass
// over a fresh snapshot: either the complete result or an *AggregationError.
type InsightsService interface {
	// GlobalInsights computes sessions, paths, transitions, trending and
	// search quality as of now.
	GlobalInsights(ctx context.Context, now time.Time) (*GlobalInsights, error)

	// UserInsights computes progress, unlock state and achievements for
	// userID as of now.
	UserInsights(ctx context.Context, userID string, now time.Time) (*UserInsights, error)
}

type insightsServiceImpl struct {
	events  store.EventStore
	catalog store.CatalogStore
	params  *Params
	logger  *slog.Logger
}

// NewInsightsService creates a new InsightsService.
// It returns an error if any of the required dependencies are nil or the
// parameters are invalid.
func NewInsightsService(
	events store.EventStore,
	catalog store.CatalogStore,
	params *Params,
	logger *slog.Logger,
) (InsightsService, error) {
	if events == nil {
		return nil, &AggregationError{
			Operation: "create_service",
			Kind:      KindConfiguration,
			Err:       errNilDependency("event store"),
		}
	}
	if catalog == nil {
		return nil, &AggregationError{
			Operation: "create_service",
			Kind:      KindConfiguration,
			Err:       errNilDependency("catalog store"),
		}
	}
	if params == nil {
		params = NewDefaultParams()
	}
	if err := params.Validate(); err != nil {
		return nil, NewAggregationError("create_service", 0, err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &insightsServiceImpl{
		events:  events,
		catalog: catalog,
		params:  params,
		logger:  logger.With(slog.String("component", "insights_service")),
	}, nil
}

// GlobalInsights fetches views and searches concurrently, then runs every
// global aggregation on the snapshot.
func (s *insightsServiceImpl) GlobalInsights(ctx context.Context, now time.Time) (result *GlobalInsights, err error) {
	started := time.Now()
	defer func() { metrics.RecordPass(viewGlobal, started, err) }()

	now = now.UTC()
	passID := uuid.NewString()
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("pass_id", passID),
		slog.String("view", viewGlobal),
	)

	viewFilter := store.EventFilter{Since: now.Add(-s.params.viewWindow()), Until: now}
	searchFilter := store.EventFilter{Since: now.Add(-s.params.SearchWindow), Until: now}

	var (
		views    []domain.ViewEvent
		searches []domain.SearchEvent
	)
	err = s.fetchConcurrently(ctx, func(gctx context.Context) (err error) {
		views, err = s.fetchViews(gctx, viewFilter)
		return err
	}, func(gctx context.Context) (err error) {
		searches, err = s.fetchSearches(gctx, searchFilter)
		return err
	})
	if err != nil {
		return nil, s.fail(log, viewGlobal, 0, err)
	}

	trendingResult, err := trending.Compute(views, now, s.params.Trending)
	if err != nil {
		return nil, s.fail(log, viewGlobal, trendingResult.Skipped, err)
	}
	skipped := SkippedCounts{Views: trendingResult.Skipped}

	pathsStart := now.Add(-s.params.PathsWindow)
	sessionResult, err := session.ReconstructAll(withinWindow(views, pathsStart, now), s.params.Session)
	if err != nil {
		return nil, s.fail(log, viewGlobal, skipped.Total(), err)
	}

	pathsResult, err := paths.Mine(sessionResult.Sessions, s.params.Paths)
	if err != nil {
		return nil, s.fail(log, viewGlobal, skipped.Total(), err)
	}

	searchResult, err := searchquality.Score(searches, s.params.Search)
	if err != nil {
		return nil, s.fail(log, viewGlobal, skipped.Total(), err)
	}
	skipped.Searches = searchResult.Skipped

	degenerate := 0
	for _, sess := range sessionResult.Sessions {
		if sess.Degenerate() {
			degenerate++
		}
	}

	metrics.RecordSkipped("view", skipped.Views)
	metrics.RecordSkipped("search", skipped.Searches)

	log.Info("global insights computed",
		slog.Int("views", len(views)),
		slog.Int("searches", len(searches)),
		slog.Int("sessions", len(sessionResult.Sessions)),
		slog.Int("trending", len(trendingResult.Records)),
		slog.Int("skipped_views", skipped.Views),
		slog.Int("skipped_searches", skipped.Searches))

	return &GlobalInsights{
		PassID:             passID,
		GeneratedAt:        now,
		Sessions:           len(sessionResult.Sessions),
		DegenerateSessions: degenerate,
		QualifyingSessions: pathsResult.QualifyingSessions,
		Paths:              nonNil(pathsResult.Paths),
		Transitions:        nonNil(pathsResult.Transitions),
		Trending:           nonNil(trendingResult.Records),
		SearchQuality:      nonNil(searchResult.Records),
		Skipped:            skipped,
	}, nil
}

// UserInsights fetches the user's views and the content catalog concurrently,
// then computes progress, unlock state and achievements.
func (s *insightsServiceImpl) UserInsights(
	ctx context.Context,
	userID string,
	now time.Time,
) (result *UserInsights, err error) {
	started := time.Now()
	defer func() { metrics.RecordPass(viewUser, started, err) }()

	if userID == "" {
		return nil, NewAggregationError(viewUser, 0, ErrInvalidUserID)
	}

	now = now.UTC()
	passID := uuid.NewString()
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("pass_id", passID),
		slog.String("view", viewUser),
		slog.String("user_id", userID),
	)

	filter := store.EventFilter{
		UserID: &userID,
		Since:  HistoryStart,
		Until:  now,
	}

	var (
		views   []domain.ViewEvent
		catalog domain.Catalog
	)
	err = s.fetchConcurrently(ctx, func(gctx context.Context) (err error) {
		views, err = s.fetchViews(gctx, filter)
		return err
	}, func(gctx context.Context) (err error) {
		catalog, err = s.catalog.LoadCatalog(gctx)
		return err
	})
	if err != nil {
		return nil, s.fail(log, viewUser, 0, err)
	}

	graph, err := progress.NewGraph(catalog)
	if err != nil {
		return nil, s.fail(log, viewUser, 0, err)
	}
	tracker, err := progress.NewTracker(graph, s.params.Progress)
	if err != nil {
		return nil, s.fail(log, viewUser, 0, err)
	}

	progressResult := tracker.Progress(userID, views)
	unlocks := tracker.UnlockStates(progressResult.States)
	achievements := tracker.Achievements(userID, progressResult.States, views)

	metrics.RecordSkipped("view", progressResult.Skipped)

	log.Info("user insights computed",
		slog.Int("views", len(views)),
		slog.Int("catalog_nodes", graph.Len()),
		slog.Int("skipped_views", progressResult.Skipped))

	return &UserInsights{
		PassID:       passID,
		UserID:       userID,
		GeneratedAt:  now,
		Progress:     nonNil(progressResult.States),
		Unlocks:      nonNil(unlocks),
		Achievements: nonNil(achievements),
		Skipped:      SkippedCounts{Views: progressResult.Skipped},
	}, nil
}

// fetchConcurrently runs the fetches under one bounded context. The first
// failure cancels the others.
func (s *insightsServiceImpl) fetchConcurrently(ctx context.Context, fetches ...func(context.Context) error) error {
	fetchCtx, cancel := context.WithTimeout(ctx, s.params.FetchTimeout)
	defer cancel()

	g, gctx := errgroup.WithContext(fetchCtx)
	for _, fetch := range fetches {
		g.Go(func() error {
			return fetch(gctx)
		})
	}
	return g.Wait()
}

func (s *insightsServiceImpl) fetchViews(ctx context.Context, filter store.EventFilter) ([]domain.ViewEvent, error) {
	started := time.Now()
	views, err := s.events.FetchViews(ctx, filter)
	metrics.RecordFetch(entityViews, started, len(views), err)
	return views, err
}

func (s *insightsServiceImpl) fetchSearches(ctx context.Context, filter store.EventFilter) ([]domain.SearchEvent, error) {
	started := time.Now()
	searches, err := s.events.FetchSearches(ctx, filter)
	metrics.RecordFetch(entitySearches, started, len(searches), err)
	return searches, err
}

func (s *insightsServiceImpl) fail(log *slog.Logger, operation string, skipped int, err error) error {
	aggErr := NewAggregationError(operation, skipped, err)
	kind := Classify(aggErr)
	level := slog.LevelError
	if kind == KindCanceled {
		level = slog.LevelInfo
	}
	log.LogAttrs(context.Background(), level, "aggregation failed",
		slog.String("kind", string(kind)),
		slog.Int("skipped", skipped),
		slog.Any("error", err))
	return aggErr
}

// withinWindow returns the events in [since, until). Malformed events are kept
// so the reconstructor can count them.
func withinWindow(events []domain.ViewEvent, since, until time.Time) []domain.ViewEvent {
	out := make([]domain.ViewEvent, 0, len(events))
	for _, e := range events {
		if e.Validate() == nil && (e.Timestamp.Before(since) || !e.Timestamp.Before(until)) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

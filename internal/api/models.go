package api

import (
	"time"

	"github.com/phrazzld/scry-insights/internal/domain"
	"github.com/phrazzld/scry-insights/internal/service"
)

// SnapshotMeta identifies the pass a response was computed from.
type SnapshotMeta struct {
	PassID      string                `json:"pass_id"`
	GeneratedAt time.Time             `json:"generated_at"`
	Skipped     service.SkippedCounts `json:"skipped"`
}

// TrendingResponse is the body of GET /api/insights/trending.
type TrendingResponse struct {
	SnapshotMeta
	Records []domain.TrendingRecord `json:"records"`
}

// PathsResponse is the body of GET /api/insights/paths.
type PathsResponse struct {
	SnapshotMeta
	QualifyingSessions int           `json:"qualifying_sessions"`
	Paths              []domain.Path `json:"paths"`
}

// TransitionsResponse is the body of GET /api/insights/transitions.
type TransitionsResponse struct {
	SnapshotMeta
	Transitions []domain.TransitionEdge `json:"transitions"`
}

// SearchQualityResponse is the body of GET /api/insights/search-quality.
type SearchQualityResponse struct {
	SnapshotMeta
	Records []domain.SearchQualityRecord `json:"records"`
}

// ProgressResponse is the body of GET /api/users/{userID}/progress.
type ProgressResponse struct {
	SnapshotMeta
	UserID   string                 `json:"user_id"`
	Progress []domain.ProgressState `json:"progress"`
}

// AchievementsResponse is the body of GET /api/users/{userID}/achievements.
type AchievementsResponse struct {
	SnapshotMeta
	UserID       string               `json:"user_id"`
	Achievements []domain.Achievement `json:"achievements"`
}

// UnlocksResponse is the body of GET /api/users/{userID}/unlocks.
type UnlocksResponse struct {
	SnapshotMeta
	UserID  string               `json:"user_id"`
	Unlocks []domain.UnlockState `json:"unlocks"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
	Breaker  string `json:"breaker,omitempty"`
}

func globalMeta(g *service.GlobalInsights) SnapshotMeta {
	return SnapshotMeta{PassID: g.PassID, GeneratedAt: g.GeneratedAt, Skipped: g.Skipped}
}

func userMeta(u *service.UserInsights) SnapshotMeta {
	return SnapshotMeta{PassID: u.PassID, GeneratedAt: u.GeneratedAt, Skipped: u.Skipped}
}

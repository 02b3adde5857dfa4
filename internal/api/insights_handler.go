package api

import (
	"bytes"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/scry-insights/internal/api/shared"
	"github.com/phrazzld/scry-insights/internal/export"
	"github.com/phrazzld/scry-insights/internal/platform/logger"
	"github.com/phrazzld/scry-insights/internal/service"
)

// InsightsHandler serves the read views over published aggregates.
type InsightsHandler struct {
	insights service.InsightsService
	now      func() time.Time
	logger   *slog.Logger
}

// NewInsightsHandler creates a new InsightsHandler. now defaults to time.Now.
func NewInsightsHandler(
	insights service.InsightsService,
	now func() time.Time,
	logger *slog.Logger,
) *InsightsHandler {
	if insights == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("insights service cannot be nil for InsightsHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for InsightsHandler")
	}
	if now == nil {
		now = time.Now
	}

	return &InsightsHandler{
		insights: insights,
		now:      now,
		logger:   logger.With(slog.String("component", "insights_handler")),
	}
}

// global runs a global pass and writes any error response. It returns nil
// when a response has already been written.
func (h *InsightsHandler) global(w http.ResponseWriter, r *http.Request) *service.GlobalInsights {
	at, ok := snapshotTime(w, r, h.now())
	if !ok {
		return nil
	}

	log := logger.FromContextOrDefault(r.Context(), h.logger)
	log.Debug("computing global insights", slog.Time("at", at))

	insights, err := h.insights.GlobalInsights(r.Context(), at)
	if err != nil {
		HandleAPIError(w, r, err)
		return nil
	}
	return insights
}

// user runs a per-user pass and writes any error response. It returns nil
// when a response has already been written.
func (h *InsightsHandler) user(w http.ResponseWriter, r *http.Request) *service.UserInsights {
	userID, ok := pathUserID(w, r)
	if !ok {
		return nil
	}
	at, ok := snapshotTime(w, r, h.now())
	if !ok {
		return nil
	}

	log := logger.FromContextOrDefault(r.Context(), h.logger)
	log.Debug("computing user insights", slog.String("user_id", userID), slog.Time("at", at))

	insights, err := h.insights.UserInsights(r.Context(), userID, at)
	if err != nil {
		HandleAPIError(w, r, err)
		return nil
	}
	return insights
}

// GetInsights handles GET /api/insights requests.
func (h *InsightsHandler) GetInsights(w http.ResponseWriter, r *http.Request) {
	if g := h.global(w, r); g != nil {
		shared.RespondWithJSON(w, r, http.StatusOK, g)
	}
}

// GetTrending handles GET /api/insights/trending requests.
func (h *InsightsHandler) GetTrending(w http.ResponseWriter, r *http.Request) {
	if g := h.global(w, r); g != nil {
		shared.RespondWithJSON(w, r, http.StatusOK, TrendingResponse{
			SnapshotMeta: globalMeta(g),
			Records:      g.Trending,
		})
	}
}

// GetPaths handles GET /api/insights/paths requests.
func (h *InsightsHandler) GetPaths(w http.ResponseWriter, r *http.Request) {
	if g := h.global(w, r); g != nil {
		shared.RespondWithJSON(w, r, http.StatusOK, PathsResponse{
			SnapshotMeta:       globalMeta(g),
			QualifyingSessions: g.QualifyingSessions,
			Paths:              g.Paths,
		})
	}
}

// GetTransitions handles GET /api/insights/transitions requests.
func (h *InsightsHandler) GetTransitions(w http.ResponseWriter, r *http.Request) {
	if g := h.global(w, r); g != nil {
		shared.RespondWithJSON(w, r, http.StatusOK, TransitionsResponse{
			SnapshotMeta: globalMeta(g),
			Transitions:  g.Transitions,
		})
	}
}

// GetSearchQuality handles GET /api/insights/search-quality requests.
func (h *InsightsHandler) GetSearchQuality(w http.ResponseWriter, r *http.Request) {
	if g := h.global(w, r); g != nil {
		shared.RespondWithJSON(w, r, http.StatusOK, SearchQualityResponse{
			SnapshotMeta: globalMeta(g),
			Records:      g.SearchQuality,
		})
	}
}

// ExportCSV handles GET /api/insights/export.csv requests.
func (h *InsightsHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	g := h.global(w, r)
	if g == nil {
		return
	}

	// Render fully before writing so a failure can still produce an error status.
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, g); err != nil {
		shared.RespondWithError(w, r, http.StatusInternalServerError,
			"Failed to render export", string(service.KindInternal), err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="insights.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.FromContextOrDefault(r.Context(), h.logger).Error("failed to write export",
			slog.Any("error", err))
	}
}

// GetUserProgress handles GET /api/users/{userID}/progress requests.
func (h *InsightsHandler) GetUserProgress(w http.ResponseWriter, r *http.Request) {
	if u := h.user(w, r); u != nil {
		shared.RespondWithJSON(w, r, http.StatusOK, ProgressResponse{
			SnapshotMeta: userMeta(u),
			UserID:       u.UserID,
			Progress:     u.Progress,
		})
	}
}

// GetUserAchievements handles GET /api/users/{userID}/achievements requests.
func (h *InsightsHandler) GetUserAchievements(w http.ResponseWriter, r *http.Request) {
	if u := h.user(w, r); u != nil {
		shared.RespondWithJSON(w, r, http.StatusOK, AchievementsResponse{
			SnapshotMeta: userMeta(u),
			UserID:       u.UserID,
			Achievements: u.Achievements,
		})
	}
}

// GetUserUnlocks handles GET /api/users/{userID}/unlocks requests.
func (h *InsightsHandler) GetUserUnlocks(w http.ResponseWriter, r *http.Request) {
	if u := h.user(w, r); u != nil {
		shared.RespondWithJSON(w, r, http.StatusOK, UnlocksResponse{
			SnapshotMeta: userMeta(u),
			UserID:       u.UserID,
			Unlocks:      u.Unlocks,
		})
	}
}

package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/phrazzld/scry-insights/internal/api"
	apiMiddleware "github.com/phrazzld/scry-insights/internal/api/middleware"
)

// setupRouter creates the router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.Trace(app.logger))
	r.Use(middleware.Recoverer)

	insightsHandler := api.NewInsightsHandler(app.insights, app.now, app.logger)

	var pinger api.Pinger
	if app.db != nil {
		pinger = app.db
	}
	var breakerState func() string
	if app.events != nil {
		breakerState = app.events.State
	}
	healthHandler := api.NewHealthHandler(pinger, breakerState, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/insights", func(r chi.Router) {
			r.Get("/", insightsHandler.GetInsights)
			r.Get("/trending", insightsHandler.GetTrending)
			r.Get("/paths", insightsHandler.GetPaths)
			r.Get("/transitions", insightsHandler.GetTransitions)
			r.Get("/search-quality", insightsHandler.GetSearchQuality)
			r.Get("/export.csv", insightsHandler.ExportCSV)
		})

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/progress", insightsHandler.GetUserProgress)
			r.Get("/achievements", insightsHandler.GetUserAchievements)
			r.Get("/unlocks", insightsHandler.GetUserUnlocks)
		})
	})

	r.Method(http.MethodGet, "/health", healthHandler)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/lifelogd/lifelogd/internal/httpserver/deps"
	"github.com/lifelogd/lifelogd/internal/httpserver/handlers"
)

func init() { Register(registerTimeline) }

func registerTimeline(r chi.Router, d deps.Deps) {
	r.Route("/api/timeline", func(r chi.Router) {
		r.Get("/", handlers.Timeline(d))
		r.Get("/daily", handlers.TimelineSummary(d, "day"))
		r.Get("/weekly", handlers.TimelineSummary(d, "week"))
		r.Get("/monthly", handlers.TimelineSummary(d, "month"))
		r.Get("/activity", handlers.TimelineActivity(d))
	})
}

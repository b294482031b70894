package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/lifelogd/lifelogd/internal/httpserver/deps"
	"github.com/lifelogd/lifelogd/internal/httpserver/handlers"
)

func init() { Register(registerEvents) }

func registerEvents(r chi.Router, d deps.Deps) {
	r.Route("/api/events", func(r chi.Router) {
		r.Get("/", handlers.ListEvents(d))
		r.Post("/", handlers.CreateEvent(d))
		r.Get("/sources", handlers.EventSources(d))
		r.Get("/types", handlers.EventTypes(d))
		r.Get("/search", handlers.SearchEvents(d))
		r.Get("/stats", handlers.EventStats(d))
		r.Post("/resolve", handlers.ResolveEvent(d))
		r.Get("/{id}", handlers.GetEvent(d))
		r.Put("/{id}", handlers.UpdateEvent(d))
		r.Delete("/{id}", handlers.DeleteEvent(d))
	})
}

package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/lifelogd/lifelogd/internal/httpserver/deps"
	"github.com/lifelogd/lifelogd/internal/httpserver/handlers"
)

func init() { Register(registerPlugins) }

func registerPlugins(r chi.Router, d deps.Deps) {
	r.Route("/api/plugins", func(r chi.Router) {
		r.Get("/", handlers.ListPlugins(d))
		r.Post("/install", handlers.InstallPlugin(d))
		r.Get("/{id}", handlers.GetPlugin(d))
		r.Post("/{id}/run", handlers.RunPlugin(d))
		r.Post("/{id}/enable", handlers.SetPluginEnabled(d, true))
		r.Post("/{id}/disable", handlers.SetPluginEnabled(d, false))
		r.Put("/{id}/config", handlers.UpdatePluginConfig(d))
		r.Get("/{id}/logs", handlers.PluginLogs(d))
	})
}

package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/lifelogd/lifelogd/internal/httpserver/deps"
	"github.com/lifelogd/lifelogd/internal/logger"
)

func ListPlugins(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"plugins": d.Registry.List()})
	}
}

func GetPlugin(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		descriptor, err := d.Registry.Get(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, descriptor)
	}
}

// RunPlugin invokes the plugin synchronously and returns the captured
// output. Works for disabled plugins too: manual runs bypass the
// schedule gate.
func RunPlugin(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		descriptor, err := d.Registry.Get(id)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		var body struct {
			Args []string `json:"args"`
		}
		_ = decodeBody(r, &body) // empty body = no args

		result, err := d.Runner.Run(r.Context(), descriptor, body.Args)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success":  true,
			"output":   result.Output,
			"exitCode": result.ExitCode,
		})
	}
}

// SetPluginEnabled flips the enabled flag and re-establishes the trigger
// invariant: a trigger exists iff the plugin is enabled with a schedule.
func SetPluginEnabled(d deps.Deps, enabled bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		descriptor, err := d.Registry.SetEnabled(id, enabled)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		if descriptor.Schedulable() {
			if err := d.Scheduler.Start(id, descriptor); err != nil {
				d.Logger.Warn("enabled plugin has an invalid schedule",
					logger.String("plugin", id),
					logger.Error(err))
				writeJSON(w, http.StatusBadRequest, map[string]any{
					"error": "invalid schedule: " + descriptor.Schedule,
				})
				return
			}
		} else {
			d.Scheduler.Stop(id)
		}

		writeJSON(w, http.StatusOK, descriptor)
	}
}

// UpdatePluginConfig merges the patch into the descriptor and replaces
// the trigger so schedule changes take effect immediately.
func UpdatePluginConfig(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var patch map[string]any
		if err := decodeBody(r, &patch); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json body"})
			return
		}

		descriptor, err := d.Registry.UpdateConfig(id, patch)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		if descriptor.Schedulable() {
			if err := d.Scheduler.Start(id, descriptor); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]any{
					"error": "invalid schedule: " + descriptor.Schedule,
				})
				return
			}
		} else {
			d.Scheduler.Stop(id)
		}

		writeJSON(w, http.StatusOK, descriptor)
	}
}

func InstallPlugin(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Source string `json:"source"`
			Name   string `json:"name"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json body"})
			return
		}

		descriptor, err := d.Registry.Install(strings.TrimSpace(body.Source), strings.TrimSpace(body.Name))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusCreated, descriptor)
	}
}

func PluginLogs(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lines, err := d.Registry.Logs(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"logs": lines})
	}
}

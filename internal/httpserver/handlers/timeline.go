package handlers

import (
	"net/http"

	"github.com/lifelogd/lifelogd/internal/httpserver/deps"
	"github.com/lifelogd/lifelogd/internal/timeline"
)

// Timeline returns the filtered events plus a mapping keyed by period label.
func Timeline(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f := parseFilter(r)
		groupBy := r.URL.Query().Get("groupBy")
		if groupBy == "" {
			groupBy = "day"
		}

		events, err := d.Store.List(r.Context(), f)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"events":   events,
			"groupBy":  groupBy,
			"timeline": timeline.Group(events, groupBy),
		})
	}
}

// TimelineSummary returns per-period counts and mood averages.
func TimelineSummary(d deps.Deps, groupBy string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := d.Store.List(r.Context(), parseFilter(r))
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"groupBy":   groupBy,
			"summaries": timeline.Summarize(events, groupBy),
		})
	}
}

// TimelineActivity returns the weekday-by-hour heatmap.
func TimelineActivity(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := d.Store.List(r.Context(), parseFilter(r))
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"heatmap": timeline.Activity(events),
		})
	}
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/lifelogd/lifelogd/internal/domain"
	"github.com/lifelogd/lifelogd/internal/httpserver/deps"
	"github.com/lifelogd/lifelogd/internal/store/sqlite"
)

// parseFilter reads the shared list/timeline query parameters.
func parseFilter(r *http.Request) sqlite.Filter {
	q := r.URL.Query()

	f := sqlite.Filter{
		Source:    q.Get("source"),
		Type:      q.Get("type"),
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
		OrderBy:   q.Get("orderBy"),
		Order:     q.Get("order"),
	}
	if tags := strings.TrimSpace(q.Get("tags")); tags != "" {
		for _, tag := range strings.Split(tags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				f.Tags = append(f.Tags, tag)
			}
		}
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
		f.Limit = n
	}
	if n, err := strconv.Atoi(q.Get("offset")); err == nil && n > 0 {
		f.Offset = n
	}
	return f
}

func ListEvents(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f := parseFilter(r)

		events, err := d.Store.List(r.Context(), f)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		limit := f.Limit
		if limit <= 0 {
			limit = sqlite.DefaultListLimit
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"events": events,
			"pagination": map[string]int{
				"limit":  limit,
				"offset": f.Offset,
				"count":  len(events),
			},
		})
	}
}

func CreateEvent(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := decodeBody(r, &body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json body"})
			return
		}

		event, err := d.Store.Create(r.Context(), body)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, event)
	}
}

func GetEvent(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		event, found, err := d.Store.Get(r.Context(), id)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		if !found {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "event not found: " + id})
			return
		}
		writeJSON(w, http.StatusOK, event)
	}
}

func UpdateEvent(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var patch map[string]any
		if err := decodeBody(r, &patch); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json body"})
			return
		}

		event, err := d.Store.Update(r.Context(), id, patch)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, event)
	}
}

func DeleteEvent(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		removed, err := d.Store.Delete(r.Context(), id)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		if !removed {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "event not found: " + id})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": "event deleted"})
	}
}

func SearchEvents(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		if query == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "query parameter q is required"})
			return
		}

		limit := 0
		if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
			limit = n
		}

		events, err := d.Store.Search(r.Context(), query, limit)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"events": events,
			"query":  query,
		})
	}
}

func EventStats(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := d.Store.Stats(r.Context())
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func EventSources(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sources, err := d.Store.Sources(r.Context())
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"sources": sources})
	}
}

func EventTypes(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		types, err := d.Store.Types(r.Context())
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"types": types})
	}
}

func ResolveEvent(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			URI string `json:"uri"`
		}
		if err := decodeBody(r, &body); err != nil || strings.TrimSpace(body.URI) == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "uri is required"})
			return
		}

		event, err := d.Resolver.Resolve(r.Context(), body.URI)
		if err != nil {
			// Resolution failure is the expected outcome for unknown URIs;
			// only storage-level breakage is not.
			var serr *domain.StorageError
			if errors.As(err, &serr) {
				writeError(w, d.Logger, err)
				return
			}
			writeJSON(w, http.StatusNotFound, map[string]any{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, event)
	}
}

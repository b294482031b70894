package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lifelogd/lifelogd/internal/domain"
	"github.com/lifelogd/lifelogd/internal/logger"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy to HTTP statuses. Expected errors
// (validation, not-found, resolution) carry precise messages; storage
// failures are logged in full and reported generically.
func writeError(w http.ResponseWriter, log logger.Logger, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  verr.Error(),
			"fields": verr.Fields,
		})
		return
	}

	var nferr *domain.NotFoundError
	if errors.As(err, &nferr) {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": nferr.Error()})
		return
	}

	var rerr *domain.ResolutionError
	if errors.As(err, &rerr) {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": rerr.Error()})
		return
	}

	var perr *domain.PluginExecutionError
	if errors.As(err, &perr) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":    perr.Error(),
			"exitCode": perr.ExitCode,
			"stderr":   perr.Stderr,
		})
		return
	}

	var serr *domain.StorageError
	if errors.As(err, &serr) {
		log.Error("storage failure", logger.Error(serr))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal server error"})
		return
	}

	log.Error("unhandled request error", logger.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal server error"})
}

func decodeBody(r *http.Request, into any) error {
	defer func() { _ = r.Body.Close() }()
	return json.NewDecoder(r.Body).Decode(into)
}

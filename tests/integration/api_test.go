package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/lifelogd/lifelogd/internal/config"
	"github.com/lifelogd/lifelogd/internal/httpserver"
	"github.com/lifelogd/lifelogd/internal/httpserver/deps"
	"github.com/lifelogd/lifelogd/internal/logger"
	"github.com/lifelogd/lifelogd/internal/plugins"
	"github.com/lifelogd/lifelogd/internal/resolver"
	"github.com/lifelogd/lifelogd/internal/scheduler"
	"github.com/lifelogd/lifelogd/internal/store/sqlite"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	log := logger.New("error", false)
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "events.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	registry := plugins.NewRegistry(t.TempDir(), log)
	runner := plugins.NewRunner(registry, log)
	sched := scheduler.New(registry, runner, log)

	d := deps.Deps{
		Logger:    log,
		StartTime: time.Now(),
		TimeNow:   time.Now,
		Store:     store,
		Resolver:  resolver.New(nil, store, log),
		Registry:  registry,
		Runner:    runner,
		Scheduler: sched,
	}

	cfg := &config.Config{ListenPort: ":0", LogLevel: "error"}
	return httpserver.New(cfg, log, d).Handler()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

// TestEventLifecycle drives the full create -> read -> delete flow over HTTP.
func TestEventLifecycle(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/api/events", map[string]any{
		"source":    "test",
		"type":      "x.y",
		"title":     "t",
		"timestamp": "2024-01-01T00:00:00Z",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/events = %d, body %s", rec.Code, rec.Body.String())
	}

	created := decode(t, rec)
	id, _ := created["id"].(string)
	if id == "" {
		t.Fatal("created event has no generated id")
	}

	rec = doJSON(t, h, http.MethodGet, "/api/events/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/events/%s = %d", id, rec.Code)
	}
	got := decode(t, rec)
	if got["title"] != "t" || got["source"] != "test" {
		t.Errorf("round-trip mismatch: %v", got)
	}

	rec = doJSON(t, h, http.MethodDelete, "/api/events/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("DELETE /api/events/%s = %d", id, rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/events/"+id, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET after delete = %d, want 404", rec.Code)
	}
}

func TestCreateEventValidationError(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/api/events", map[string]any{
		"source":    "test",
		"type":      "x.y",
		"timestamp": "2024-01-01T00:00:00Z",
		// title missing
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("POST without title = %d, want 400", rec.Code)
	}

	body := decode(t, rec)
	if body["fields"] == nil {
		t.Error("validation response carries no field details")
	}
}

func TestListAndSearchEndpoints(t *testing.T) {
	h := newTestHandler(t)

	for _, payload := range []map[string]any{
		{"source": "strava", "type": "health.workout", "title": "Morning run", "timestamp": "2024-01-01T08:00:00Z", "tags": []string{"gym"}},
		{"source": "manual", "type": "food.meal", "title": "Dinner", "timestamp": "2024-01-02T19:00:00Z"},
	} {
		rec := doJSON(t, h, http.MethodPost, "/api/events", payload)
		if rec.Code != http.StatusCreated {
			t.Fatalf("seed POST = %d", rec.Code)
		}
	}

	rec := doJSON(t, h, http.MethodGet, "/api/events?source=strava", nil)
	body := decode(t, rec)
	events := body["events"].([]any)
	if len(events) != 1 {
		t.Errorf("filtered list returned %d events, want 1", len(events))
	}
	pagination := body["pagination"].(map[string]any)
	if pagination["count"].(float64) != 1 {
		t.Errorf("pagination.count = %v, want 1", pagination["count"])
	}

	rec = doJSON(t, h, http.MethodGet, "/api/events/search?q=dinner", nil)
	body = decode(t, rec)
	if len(body["events"].([]any)) != 1 {
		t.Error("case-insensitive search missed the event")
	}

	rec = doJSON(t, h, http.MethodGet, "/api/events/search", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("search without q = %d, want 400", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/events/stats", nil)
	body = decode(t, rec)
	if body["total"].(float64) != 2 {
		t.Errorf("stats.total = %v, want 2", body["total"])
	}

	rec = doJSON(t, h, http.MethodGet, "/api/events/sources", nil)
	body = decode(t, rec)
	if len(body["sources"].([]any)) != 2 {
		t.Errorf("sources = %v, want 2 entries", body["sources"])
	}
}

func TestTimelineEndpoints(t *testing.T) {
	h := newTestHandler(t)

	for _, ts := range []string{"2024-01-01T08:00:00Z", "2024-01-01T20:00:00Z", "2024-01-02T09:00:00Z"} {
		rec := doJSON(t, h, http.MethodPost, "/api/events", map[string]any{
			"source": "test", "type": "x.y", "title": "t", "timestamp": ts, "mood": 6,
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("seed POST = %d", rec.Code)
		}
	}

	rec := doJSON(t, h, http.MethodGet, "/api/timeline?groupBy=day", nil)
	body := decode(t, rec)
	grouped := body["timeline"].(map[string]any)
	if len(grouped) != 2 {
		t.Errorf("timeline has %d periods, want 2", len(grouped))
	}

	rec = doJSON(t, h, http.MethodGet, "/api/timeline/daily", nil)
	body = decode(t, rec)
	summaries := body["summaries"].([]any)
	if len(summaries) != 2 {
		t.Errorf("daily summaries = %d, want 2", len(summaries))
	}

	rec = doJSON(t, h, http.MethodGet, "/api/timeline/activity", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("activity = %d, want 200", rec.Code)
	}
}

func TestResolveFallsBackToStore(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/api/events", map[string]any{
		"source": "strava", "type": "health.workout", "title": "Run", "timestamp": "2024-01-01T08:00:00Z",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("seed POST = %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/events/resolve", map[string]any{
		"uri": "life://strava/health.workout",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("resolve = %d, body %s", rec.Code, rec.Body.String())
	}
	if decode(t, rec)["title"] != "Run" {
		t.Error("resolve returned the wrong event")
	}

	rec = doJSON(t, h, http.MethodPost, "/api/events/resolve", map[string]any{
		"uri": "life://nowhere/無",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("resolve unknown uri = %d, want 404", rec.Code)
	}
}

func TestPluginEndpoints(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/api/plugins/install", map[string]any{
		"source": "https://example.com/demo.git",
		"name":   "Demo Plugin",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("install = %d, body %s", rec.Code, rec.Body.String())
	}
	installed := decode(t, rec)
	if installed["enabled"].(bool) {
		t.Error("installed plugin must start disabled")
	}
	id := installed["id"].(string)

	rec = doJSON(t, h, http.MethodGet, "/api/plugins", nil)
	body := decode(t, rec)
	if len(body["plugins"].([]any)) != 1 {
		t.Error("plugin listing missed the installed plugin")
	}

	rec = doJSON(t, h, http.MethodPut, "/api/plugins/"+id+"/config", map[string]any{
		"schedule": "0 * * * *",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("config update = %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/plugins/"+id+"/enable", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("enable = %d, body %s", rec.Code, rec.Body.String())
	}
	if !decode(t, rec)["enabled"].(bool) {
		t.Error("enable did not flip the flag")
	}

	rec = doJSON(t, h, http.MethodPost, "/api/plugins/"+id+"/disable", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("disable = %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/plugins/"+id+"/logs", nil)
	body = decode(t, rec)
	if logs, ok := body["logs"].([]any); !ok || len(logs) != 0 {
		t.Errorf("logs for a never-run plugin = %v, want empty list", body["logs"])
	}

	rec = doJSON(t, h, http.MethodGet, "/api/plugins/ghost", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing plugin = %d, want 404", rec.Code)
	}
}

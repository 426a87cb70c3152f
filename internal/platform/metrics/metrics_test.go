package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

func scrape(t *testing.T, m *Metrics, update func()) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler(update).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	return string(body)
}

func TestMetrics_exposition(t *testing.T) {
	m := New()
	m.IncSessionsStarted()
	m.AddSessionsEvicted(2)
	m.ObserveSceneCompleted(3 * time.Second)
	m.ObserveSceneFailed(time.Second)

	out := scrape(t, m, func() { m.SetActiveSessions(4) })
	for _, want := range []string{
		"podcast_sessions_started_total 1",
		"podcast_sessions_evicted_total 2",
		"podcast_scenes_completed_total 1",
		"podcast_scenes_failed_total 1",
		`podcast_scene_render_seconds_count{status="completed"} 1`,
		"podcast_active_sessions 4",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in exposition:\n%s", want, out)
		}
	}
}

func TestRequestMiddleware(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(RequestMiddleware(m))
	r.Get("/api/sessions/{session_id}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "session_id") == "missing" {
			w.WriteHeader(http.StatusNotFound)
		}
	})

	for _, path := range []string{"/api/sessions/a", "/api/sessions/missing", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	out := scrape(t, m, nil)
	for _, want := range []string{
		`podcast_requests_total{method="GET",route="/api/sessions/{session_id}"} 2`,
		`podcast_errors_total{code="404",route="/api/sessions/{session_id}"} 1`,
		`podcast_requests_total{method="GET",route="unmatched"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in exposition:\n%s", want, out)
		}
	}
}

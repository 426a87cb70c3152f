package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters, gauges and histograms for the podcast orchestrator.
type Metrics struct {
	registry             *prometheus.Registry
	requestsTotal        *prometheus.CounterVec
	errorsTotal          *prometheus.CounterVec
	sessionsStartedTotal prometheus.Counter
	sessionsEvictedTotal prometheus.Counter
	scenesCompletedTotal prometheus.Counter
	scenesFailedTotal    prometheus.Counter
	sceneRenderSeconds   *prometheus.HistogramVec
	activeSessions       prometheus.Gauge
}

// New creates and registers Prometheus metrics for the orchestrator.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "podcast_requests_total",
		Help: "Total number of HTTP requests received",
	}, []string{"method", "route"})
	errorsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "podcast_errors_total",
		Help: "Total number of HTTP responses with error status (4xx or 5xx)",
	}, []string{"route", "code"})
	sessionsStartedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "podcast_sessions_started_total",
		Help: "Total number of generation sessions dispatched",
	})
	sessionsEvictedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "podcast_sessions_evicted_total",
		Help: "Total number of finished sessions removed by retention or administrative clear",
	})
	scenesCompletedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "podcast_scenes_completed_total",
		Help: "Total number of scene videos rendered successfully",
	})
	scenesFailedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "podcast_scenes_failed_total",
		Help: "Total number of scene videos that failed to render",
	})
	sceneRenderSeconds := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "podcast_scene_render_seconds",
		Help:    "Wall time spent rendering one scene video",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
	}, []string{"status"})
	activeSessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "podcast_active_sessions",
		Help: "Number of sessions with at least one scene still pending or processing",
	})

	registry.MustRegister(
		requestsTotal,
		errorsTotal,
		sessionsStartedTotal,
		sessionsEvictedTotal,
		scenesCompletedTotal,
		scenesFailedTotal,
		sceneRenderSeconds,
		activeSessions,
	)

	return &Metrics{
		registry:             registry,
		requestsTotal:        requestsTotal,
		errorsTotal:          errorsTotal,
		sessionsStartedTotal: sessionsStartedTotal,
		sessionsEvictedTotal: sessionsEvictedTotal,
		scenesCompletedTotal: scenesCompletedTotal,
		scenesFailedTotal:    scenesFailedTotal,
		sceneRenderSeconds:   sceneRenderSeconds,
		activeSessions:       activeSessions,
	}
}

// IncRequests increments the request counter for method and route pattern.
func (m *Metrics) IncRequests(method, route string) {
	m.requestsTotal.WithLabelValues(method, route).Inc()
}

// IncErrors increments the error counter for route and status code.
func (m *Metrics) IncErrors(route string, status int) {
	m.errorsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// IncSessionsStarted increments the sessions started counter.
func (m *Metrics) IncSessionsStarted() {
	m.sessionsStartedTotal.Inc()
}

// AddSessionsEvicted adds n to the evicted sessions counter.
func (m *Metrics) AddSessionsEvicted(n int) {
	m.sessionsEvictedTotal.Add(float64(n))
}

// ObserveSceneCompleted records a successful render and its duration.
func (m *Metrics) ObserveSceneCompleted(d time.Duration) {
	m.scenesCompletedTotal.Inc()
	m.sceneRenderSeconds.WithLabelValues("completed").Observe(d.Seconds())
}

// ObserveSceneFailed records a failed render and its duration.
func (m *Metrics) ObserveSceneFailed(d time.Duration) {
	m.scenesFailedTotal.Inc()
	m.sceneRenderSeconds.WithLabelValues("failed").Observe(d.Seconds())
}

// SetActiveSessions sets the active sessions gauge.
func (m *Metrics) SetActiveSessions(n int) {
	m.activeSessions.Set(float64(n))
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values (e.g. active sessions).
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}

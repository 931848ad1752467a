package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the wall controller.
type Metrics struct {
	registry          *prometheus.Registry
	requestsTotal     prometheus.Counter
	errorsTotal       prometheus.Counter
	sessionsActive    prometheus.Gauge
	tilesMountedTotal *prometheus.CounterVec
	tileErrorsTotal   *prometheus.CounterVec
	focusChangesTotal prometheus.Counter
	gateDrainedTotal  prometheus.Counter
}

// New creates and registers Prometheus metrics for the wall controller.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "videowall_requests_total",
		Help: "Total number of HTTP requests received",
	})
	errorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "videowall_errors_total",
		Help: "Total number of HTTP responses with error status (4xx or 5xx)",
	})
	sessionsActive := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "videowall_sessions_active",
		Help: "Number of connected wall sessions",
	})
	tilesMountedTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "videowall_tiles_mounted_total",
		Help: "Total number of tiles mounted, by media kind",
	}, []string{"kind"})
	tileErrorsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "videowall_tile_errors_total",
		Help: "Total number of tiles that ended in an inline error state, by media kind",
	}, []string{"kind"})
	focusChangesTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "videowall_focus_changes_total",
		Help: "Total number of audio focus transfers",
	})
	gateDrainedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "videowall_gate_drained_total",
		Help: "Total number of queued embedded player requests drained on readiness",
	})

	registry.MustRegister(
		requestsTotal,
		errorsTotal,
		sessionsActive,
		tilesMountedTotal,
		tileErrorsTotal,
		focusChangesTotal,
		gateDrainedTotal,
	)

	return &Metrics{
		registry:          registry,
		requestsTotal:     requestsTotal,
		errorsTotal:       errorsTotal,
		sessionsActive:    sessionsActive,
		tilesMountedTotal: tilesMountedTotal,
		tileErrorsTotal:   tileErrorsTotal,
		focusChangesTotal: focusChangesTotal,
		gateDrainedTotal:  gateDrainedTotal,
	}
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// SetActiveSessions sets the connected sessions gauge.
func (m *Metrics) SetActiveSessions(n int) {
	m.sessionsActive.Set(float64(n))
}

// TileMounted counts a mounted tile.
func (m *Metrics) TileMounted(kind string) {
	m.tilesMountedTotal.WithLabelValues(kind).Inc()
}

// TileFailed counts a tile that ended in the inline error state.
func (m *Metrics) TileFailed(kind string) {
	m.tileErrorsTotal.WithLabelValues(kind).Inc()
}

// FocusChanged counts an audio focus transfer.
func (m *Metrics) FocusChanged() {
	m.focusChangesTotal.Inc()
}

// GateDrained adds n drained readiness gate requests.
func (m *Metrics) GateDrained(n int) {
	m.gateDrainedTotal.Add(float64(n))
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

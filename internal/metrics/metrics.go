// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "aquatrack"

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	loads           *prometheus.CounterVec
	fetchSeconds    *prometheus.HistogramVec
	storageFailures *prometheus.CounterVec
	renders         prometheus.Counter
	sseClients      prometheus.Gauge
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loads_total",
			Help:      "Document load attempts by origin and outcome.",
		}, []string{"origin", "outcome"}),
		fetchSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Time spent fetching documents.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"scheme"}),
		storageFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_failures_total",
			Help:      "Cache operations that failed and were treated as absent.",
		}, []string{"op"}),
		renders: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_renders_total",
			Help:      "Pages rendered.",
		}),
		sseClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sse_clients",
			Help:      "Connected live-reload clients.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.loads, m.fetchSeconds, m.storageFailures, m.renders, m.sseClients,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Load(origin, outcome string) {
	if m == nil {
		return
	}
	m.loads.WithLabelValues(origin, outcome).Inc()
}

func (m *Metrics) Fetch(scheme string, seconds float64) {
	if m == nil {
		return
	}
	m.fetchSeconds.WithLabelValues(scheme).Observe(seconds)
}

func (m *Metrics) StorageFailure(op string) {
	if m == nil {
		return
	}
	m.storageFailures.WithLabelValues(op).Inc()
}

func (m *Metrics) Render() {
	if m == nil {
		return
	}
	m.renders.Inc()
}

// SSEClients adjusts the connected client gauge by delta.
func (m *Metrics) SSEClients(delta float64) {
	if m == nil {
		return
	}
	m.sseClients.Add(delta)
}

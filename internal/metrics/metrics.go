// Package metrics holds the Prometheus collectors for GraphLeague.
//
// Every method is safe on a nil *Metrics so components can run without
// instrumentation.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors, registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	intentsTotal     *prometheus.CounterVec
	queryDuration    *prometheus.HistogramVec
	storeErrorsTotal *prometheus.CounterVec
	generationRetry  prometheus.Counter
}

// New creates and registers the collectors on a fresh registry, together
// with the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.intentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphleague_intents_total",
			Help: "Total number of classified queries by intent kind",
		},
		[]string{"kind"},
	)
	m.queryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "graphleague_query_duration_seconds",
			Help:    "Duration of query engine operations",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		},
		[]string{"operation"},
	)
	m.storeErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphleague_store_errors_total",
			Help: "Total number of graph store failures by engine operation",
		},
		[]string{"operation"},
	)
	m.generationRetry = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "graphleague_generation_retries_total",
		Help: "Total number of retried text generation calls",
	})

	m.registry.MustRegister(
		m.intentsTotal,
		m.queryDuration,
		m.storeErrorsTotal,
		m.generationRetry,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// IntentClassified counts one classification outcome.
func (m *Metrics) IntentClassified(kind string) {
	if m == nil {
		return
	}
	m.intentsTotal.WithLabelValues(kind).Inc()
}

// ObserveQuery records the duration of an engine operation.
func (m *Metrics) ObserveQuery(operation string, d time.Duration) {
	if m == nil {
		return
	}
	m.queryDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// StoreError counts a store failure seen by an engine operation.
func (m *Metrics) StoreError(operation string) {
	if m == nil {
		return
	}
	m.storeErrorsTotal.WithLabelValues(operation).Inc()
}

// GenerationRetried counts one retried generation call.
func (m *Metrics) GenerationRetried() {
	if m == nil {
		return
	}
	m.generationRetry.Inc()
}

// Registry exposes the underlying registry, or nil.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

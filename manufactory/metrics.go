package manufactory

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of one or more manufactories.
//
// Each Metrics owns its registry so several can coexist in one process
// (and in parallel tests) without duplicate registration.
type Metrics struct {
	registry *prometheus.Registry

	productions *prometheus.CounterVec
	failures    *prometheus.CounterVec
	cacheHits   *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// NewMetrics creates the collectors under namespace and registers them on a
// fresh registry.
func NewMetrics(namespace string) *Metrics {
	registry := prometheus.NewRegistry()

	productions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "productions_total",
			Help:      "Total number of values produced by recipes",
		},
		[]string{"type", "lifecycle"},
	)

	failures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "production_failures_total",
			Help:      "Total number of failed productions, counted where the failure originated",
		},
		[]string{"type"},
	)

	cacheHits := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Total number of requests served from a cache",
		},
		[]string{"lifecycle"},
	)

	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "production_duration_seconds",
			Help:      "Time spent producing a value, dependencies included",
			Buckets:   []float64{.00001, .0001, .001, .01, .1, 1},
		},
		[]string{"lifecycle"},
	)

	registry.MustRegister(productions, failures, cacheHits, duration)

	return &Metrics{
		registry:    registry,
		productions: productions,
		failures:    failures,
		cacheHits:   cacheHits,
		duration:    duration,
	}
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) observeProduction(r *recipe, started time.Time) {
	if m == nil {
		return
	}
	m.productions.WithLabelValues(r.produces.Name(), r.lifecycle.String()).Inc()
	m.duration.WithLabelValues(r.lifecycle.String()).Observe(time.Since(started).Seconds())
}

func (m *Metrics) observeFailure(r *recipe) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(r.produces.Name()).Inc()
}

func (m *Metrics) observeHit(r *recipe) {
	if m == nil {
		return
	}
	m.cacheHits.WithLabelValues(r.lifecycle.String()).Inc()
}

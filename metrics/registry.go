// Package metrics exposes Prometheus instrumentation for the router.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// Search metrics
	SearchesTotal      *prometheus.CounterVec
	SearchDuration     *prometheus.HistogramVec
	SearchStatesPopped *prometheus.HistogramVec
	FallbacksTotal     *prometheus.CounterVec
	AlternativesFound  prometheus.Histogram

	// Real-time source metrics
	UpstreamCallsTotal *prometheus.CounterVec
	UpstreamDuration   *prometheus.HistogramVec
	CacheLookupsTotal  *prometheus.CounterVec
	FeedEntities       prometheus.Gauge
	FeedTimestamp      prometheus.Gauge

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Graph metrics
	GraphStations prometheus.Gauge
	GraphEdges    prometheus.Gauge

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.initSearchMetrics()
	r.initRealtimeMetrics()
	r.initHTTPMetrics()
	r.initGraphMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initHTTPMetrics() {
	r.HTTPRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "transit_router_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	r.HTTPRequestDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "transit_router_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
}

func (r *Registry) initGraphMetrics() {
	r.GraphStations = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "transit_router_graph_stations",
			Help: "Stations in the loaded graph",
		},
	)

	r.GraphEdges = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "transit_router_graph_edges",
			Help: "Edges in the loaded graph",
		},
	)
}

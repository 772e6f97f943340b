package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initRealtimeMetrics() {
	r.UpstreamCallsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "transit_router_upstream_calls_total",
			Help: "Total number of calls to the real-time departure source",
		},
		[]string{"endpoint", "outcome"},
	)

	r.UpstreamDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "transit_router_upstream_duration_seconds",
			Help:    "Real-time departure source call duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 3.0},
		},
		[]string{"endpoint"},
	)

	r.CacheLookupsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "transit_router_cache_lookups_total",
			Help: "Departure cache lookups by result",
		},
		[]string{"endpoint", "result"},
	)

	r.FeedEntities = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "transit_router_gtfsrt_trips",
			Help: "Trips indexed from the latest GTFS-Realtime feed",
		},
	)

	r.FeedTimestamp = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "transit_router_gtfsrt_header_timestamp_seconds",
			Help: "Header timestamp of the latest GTFS-Realtime feed",
		},
	)
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSearchMetrics() {
	r.SearchesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "transit_router_searches_total",
			Help: "Total number of route searches by algorithm and outcome",
		},
		[]string{"algorithm", "outcome"},
	)

	r.SearchDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "transit_router_search_duration_seconds",
			Help:    "Route search duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 20.0},
		},
		[]string{"algorithm"},
	)

	r.SearchStatesPopped = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "transit_router_search_states_popped",
			Help:    "Number of states popped from the queue per search",
			Buckets: []float64{10, 50, 100, 500, 1000, 2000},
		},
		[]string{"algorithm"},
	)

	r.FallbacksTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "transit_router_fallbacks_total",
			Help: "Total number of requests answered by the static finder",
		},
		[]string{"reason"},
	)

	r.AlternativesFound = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "transit_router_alternatives_returned",
			Help:    "Number of alternatives returned per request",
			Buckets: []float64{0, 1, 2, 3, 5},
		},
	)
}

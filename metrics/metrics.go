package metrics

import (
	"time"
)

// Search outcomes.
const (
	OutcomeFound          = "found"
	OutcomeNoPath         = "no_path"
	OutcomeBudgetExceeded = "budget_exceeded"
	OutcomeCancelled      = "cancelled"
	OutcomeError          = "error"
)

// RecordSearch records one search run.
func (r *Registry) RecordSearch(algorithm, outcome string, duration time.Duration, popped int) {
	r.SearchesTotal.WithLabelValues(algorithm, outcome).Inc()
	r.SearchDuration.WithLabelValues(algorithm).Observe(duration.Seconds())
	r.SearchStatesPopped.WithLabelValues(algorithm).Observe(float64(popped))
}

// RecordFallback records a request answered by the static finder.
func (r *Registry) RecordFallback(reason string) {
	r.FallbacksTotal.WithLabelValues(reason).Inc()
}

// RecordAlternatives records how many alternatives a request returned.
func (r *Registry) RecordAlternatives(n int) {
	r.AlternativesFound.Observe(float64(n))
}

// RecordUpstreamCall records a call to the departure source.
func (r *Registry) RecordUpstreamCall(endpoint, outcome string, duration time.Duration) {
	r.UpstreamCallsTotal.WithLabelValues(endpoint, outcome).Inc()
	r.UpstreamDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordCacheLookup records a departure cache hit or miss.
func (r *Registry) RecordCacheLookup(endpoint string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.CacheLookupsTotal.WithLabelValues(endpoint, result).Inc()
}

// RecordFeed records the size and age of a freshly indexed GTFS-RT feed.
func (r *Registry) RecordFeed(trips int, headerTimestamp int64) {
	r.FeedEntities.Set(float64(trips))
	r.FeedTimestamp.Set(float64(headerTimestamp))
}

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// SetGraphSize records the size of the loaded graph.
func (r *Registry) SetGraphSize(stations, edges int) {
	r.GraphStations.Set(float64(stations))
	r.GraphEdges.Set(float64(edges))
}

// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Upstream catalog API
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "readersrealm_upstream_requests_total",
			Help: "Open Library requests by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"}, // outcome: "ok", "not_found", "error", "breaker_open"
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "readersrealm_upstream_request_duration_seconds",
			Help:    "Duration of Open Library requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Text processing outcomes that silently drop data
	AuthorsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "readersrealm_authors_dropped_total",
			Help: "Author search hits dropped because no person entity was found",
		},
	)

	CandidatesExcluded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "readersrealm_recommendation_candidates_excluded_total",
			Help: "Recommendation candidates left out of the TF-IDF corpus",
		},
		[]string{"reason"}, // "fetch_failed", "no_description"
	)

	RecommendationsUnavailable = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "readersrealm_recommendations_unavailable_total",
			Help: "Recommendation requests where the base work had no corpus row",
		},
	)

	SecondaryLookupFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "readersrealm_secondary_lookup_failures_total",
			Help: "Failed non-primary upstream lookups that were skipped",
		},
		[]string{"lookup"}, // "author_name", "language", "candidates"
	)

	// HTTP API
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "readersrealm_http_requests_total",
			Help: "HTTP requests by route pattern and status code",
		},
		[]string{"route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "readersrealm_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)

// RecordUpstream records one upstream call.
func RecordUpstream(endpoint, outcome string, d time.Duration) {
	UpstreamRequests.WithLabelValues(endpoint, outcome).Inc()
	UpstreamDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// RecordHTTP records one served request.
func RecordHTTP(route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(route).Observe(d.Seconds())
}

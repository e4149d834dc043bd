// Package metrics declares the Prometheus collectors exposed on /metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// HTTPRequestsTotal counts handled requests by method, route and
	// status.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_http_requests_total",
			Help: "Number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency by method and route.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tracker_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// RefreshesTotal counts portfolio refreshes by outcome ("ok"/"error").
	RefreshesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_portfolio_refreshes_total",
			Help: "Number of portfolio refreshes by outcome.",
		},
		[]string{"outcome"},
	)

	// FeedFetchFailures counts failed external feed reads by feed name.
	FeedFetchFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_feed_fetch_failures_total",
			Help: "Number of failed external feed fetches.",
		},
		[]string{"feed"},
	)

	// SessionTransitions counts identity transitions by kind
	// ("sign_in"/"sign_out").
	SessionTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_session_transitions_total",
			Help: "Number of identity transitions.",
		},
		[]string{"kind"},
	)
)

// MustRegisterMetrics registers every collector with the default
// registry. Call once from main.
func MustRegisterMetrics() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		RefreshesTotal,
		FeedFetchFailures,
		SessionTransitions,
	)
}

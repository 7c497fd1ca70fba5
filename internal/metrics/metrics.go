// Package metrics holds the domain-level Prometheus collectors.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	ModelTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pet3d_model_transitions_total",
			Help: "3D model status transitions by target status.",
		},
		[]string{"status"},
	)

	ProviderErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pet3d_provider_errors_total",
			Help: "Failed calls to external providers.",
		},
		[]string{"provider", "operation"},
	)

	OrdersCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pet3d_orders_created_total",
			Help: "Orders created.",
		},
	)

	PaymentsCaptured = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pet3d_payments_captured_total",
			Help: "Payments moved to completed.",
		},
	)

	NotificationFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pet3d_notification_failures_total",
			Help: "Operator notifications that could not be delivered.",
		},
	)

	// HTTPRequests is labelled by the registered route, not the raw URL.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "HTTP requests currently being served.",
		},
	)

	RateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pet3d_rate_limited_total",
			Help: "Requests rejected by the rate limiter.",
		},
		[]string{"path"},
	)
)

func init() {
	prometheus.MustRegister(
		ModelTransitions,
		ProviderErrors,
		OrdersCreated,
		PaymentsCaptured,
		NotificationFailures,
		HTTPRequests,
		HTTPDuration,
		HTTPInFlight,
		RateLimited,
	)
}

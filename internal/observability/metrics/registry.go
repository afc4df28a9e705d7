// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestSize measures HTTP request body size in bytes
	HTTPRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_size_bytes",
			Help:    "HTTP request size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// HTTPResponseSize measures HTTP response body size in bytes
	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// ActiveConnections tracks the number of active HTTP connections
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)
)

// Business metrics track recommendation serving and model lifecycle
var (
	// RecommendationsServedTotal counts recommended items by tier and strategy
	RecommendationsServedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_served_total",
			Help: "Total number of recommended items served",
		},
		[]string{"tier", "strategy"},
	)

	// RecommendationDuration measures time to assemble a recommendation list
	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommendation_duration_seconds",
			Help:    "Time taken to assemble a recommendation list",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"tier"},
	)

	// ModelRebuildsTotal counts model rebuild attempts by trigger and status
	ModelRebuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "model_rebuilds_total",
			Help: "Total number of latent model rebuild attempts",
		},
		[]string{"trigger", "status"},
	)

	// ModelRebuildDuration measures time to rebuild the latent model
	ModelRebuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "model_rebuild_duration_seconds",
			Help:    "Time taken to rebuild the latent model",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
	)

	// ModelExplainedVariance tracks the fit quality of the active model
	ModelExplainedVariance = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_explained_variance",
			Help: "Explained variance of the active latent model",
		},
	)

	// InteractionsSinceRebuild tracks new interactions since the last rebuild
	InteractionsSinceRebuild = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "interactions_since_rebuild",
			Help: "Number of interactions recorded since the last model rebuild",
		},
	)

	// ProviderRequestsTotal counts external similarity provider calls by result
	ProviderRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_requests_total",
			Help: "Total number of similarity provider calls",
		},
		[]string{"provider", "result"}, // result: success, failure, skipped
	)

	// ProviderRequestDuration measures similarity provider call latency
	ProviderRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_request_duration_seconds",
			Help:    "Similarity provider call duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.2, 0.4, 0.8, 1.6},
		},
		[]string{"provider"},
	)

	// RecommendationEventsTotal counts tracked exposure outcomes
	RecommendationEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_events_total",
			Help: "Total number of recommendation events recorded",
		},
		[]string{"outcome"}, // outcome: exposure, click, rating, thumbs_up, thumbs_down, favorite, watchlist
	)
)

// Database metrics track database performance
var (
	// DBQueryDuration measures database query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	// DBConnectionsActive tracks active database connections
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	// DBConnectionsIdle tracks idle database connections
	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)

// RecordHTTPRequest records an HTTP request with its metadata
func RecordHTTPRequest(method, path, status string, duration time.Duration, requestSize, responseSize int) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())

	if requestSize > 0 {
		HTTPRequestSize.WithLabelValues(method, path).Observe(float64(requestSize))
	}
	if responseSize > 0 {
		HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}

// RecordOperationDuration records the duration of a named operation
func RecordOperationDuration(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

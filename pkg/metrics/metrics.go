package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP Metrics
	HTTPRequestsTotal *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
	HTTPRequestSize   *prometheus.HistogramVec
	HTTPResponseSize  *prometheus.HistogramVec

	// Onboarding Metrics
	RequestsCreatedTotal *prometheus.CounterVec
	TransitionsTotal     *prometheus.CounterVec
	TransitionsBlocked   *prometheus.CounterVec
	VersionConflicts     prometheus.Counter
	SubmitValidationErrs *prometheus.CounterVec
	TimeToDecision       *prometheus.HistogramVec
	OpenRequests         *prometheus.GaugeVec

	// Database Metrics
	DBConnectionsActive prometheus.Gauge
	DBConnectionsFailed *prometheus.CounterVec
	DBQueryDuration     *prometheus.HistogramVec
	DBQueryErrors       *prometheus.CounterVec

	// Redis Metrics
	RedisConnectionsActive prometheus.Gauge
	RedisOperationDuration *prometheus.HistogramVec
	RedisOperationErrors   *prometheus.CounterVec

	// Notification Metrics
	NotificationsSent *prometheus.CounterVec

	// Worker Metrics
	WorkerJobsProcessed *prometheus.CounterVec
	WorkerJobDuration   *prometheus.HistogramVec
	WorkerErrors        *prometheus.CounterVec

	// Authentication Metrics
	AuthRequestsTotal    *prometheus.CounterVec
	AuthFailuresTotal    *prometheus.CounterVec
	AuthTokenValidations *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	m := &Metrics{
		// HTTP Metrics
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPRequestSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "path"},
		),
		HTTPResponseSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "path", "status"},
		),

		// Onboarding Metrics
		RequestsCreatedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "onboarding_requests_created_total",
				Help: "Total number of onboarding requests opened",
			},
			[]string{"bank"},
		),
		TransitionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "onboarding_transitions_total",
				Help: "Total number of accepted status transitions",
			},
			[]string{"to_status", "role"},
		),
		TransitionsBlocked: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "onboarding_transitions_blocked_total",
				Help: "Total number of transitions rejected by a guard",
			},
			[]string{"reason"},
		),
		VersionConflicts: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "onboarding_version_conflicts_total",
				Help: "Total number of optimistic-lock conflicts on request writes",
			},
		),
		SubmitValidationErrs: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "onboarding_submit_validation_errors_total",
				Help: "Total number of submissions rejected by strict validation",
			},
			[]string{"bank"},
		),
		TimeToDecision: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "onboarding_time_to_decision_seconds",
				Help:    "Time from request creation to a terminal decision",
				Buckets: prometheus.ExponentialBuckets(3600, 2, 10), // 1h to ~42 days
			},
			[]string{"outcome"},
		),
		OpenRequests: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "onboarding_open_requests",
				Help: "Number of requests currently in a non-terminal status",
			},
			[]string{"status"},
		),

		// Database Metrics
		DBConnectionsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "db_connections_active",
				Help: "Number of active database connections",
			},
		),
		DBConnectionsFailed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "db_connections_failed_total",
				Help: "Total number of failed database connection attempts",
			},
			[]string{"database"},
		),
		DBQueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "db_query_duration_seconds",
				Help:    "Database query execution time in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 10), // 1ms to ~1s
			},
			[]string{"query_type", "table"},
		),
		DBQueryErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "db_query_errors_total",
				Help: "Total number of database query errors",
			},
			[]string{"query_type", "error_type"},
		),

		// Redis Metrics
		RedisConnectionsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "redis_connections_active",
				Help: "Number of active Redis connections",
			},
		),
		RedisOperationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "redis_operations_duration_seconds",
				Help:    "Redis operation duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 10), // 1ms to ~1s
			},
			[]string{"operation"},
		),
		RedisOperationErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "redis_operations_errors_total",
				Help: "Total number of Redis operation errors",
			},
			[]string{"operation"},
		),

		// Notification Metrics
		NotificationsSent: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notifications_sent_total",
				Help: "Total number of notifications sent",
			},
			[]string{"type", "status"},
		),

		// Worker Metrics
		WorkerJobsProcessed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "worker_jobs_processed_total",
				Help: "Total number of jobs processed by workers",
			},
			[]string{"worker_type", "status"},
		),
		WorkerJobDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "worker_job_duration_seconds",
				Help:    "Worker job processing duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 0.1s to ~102s
			},
			[]string{"worker_type"},
		),
		WorkerErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "worker_errors_total",
				Help: "Total number of worker errors",
			},
			[]string{"worker_type"},
		),

		// Authentication Metrics
		AuthRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_requests_total",
				Help: "Total number of authentication requests",
			},
			[]string{"method", "status"},
		),
		AuthFailuresTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_failures_total",
				Help: "Total number of authentication failures",
			},
			[]string{"reason"},
		),
		AuthTokenValidations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_token_validations_total",
				Help: "Total number of token validation attempts",
			},
			[]string{"valid"},
		),
	}

	return m
}

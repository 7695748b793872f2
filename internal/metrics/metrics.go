package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_http_requests_total",
			Help: "Total HTTP requests by method, path and status code",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "intake_http_request_duration_seconds",
			Help:    "HTTP request latency by method and path",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	RecordsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_records_created_total",
			Help: "Inventory records created, by box type",
		},
		[]string{"box_type"},
	)

	ActiveIntakeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "intake_active_sessions",
			Help: "Mixed-box intake sessions currently awaiting input",
		},
	)

	CascadeFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_group_cascade_failures_total",
			Help: "Group cascade member operations that failed, by operation",
		},
		[]string{"operation"},
	)
)

// Package telemetry provides application-level observability for the Vertex backend.
//
// # Prometheus Metrics Endpoint
//
// All metrics are registered against the default Prometheus registry and are
// automatically available on the side-channel HTTP server started by main.go:
//
//	GET http(s)://<host>:<VTX_TELEMETRY_METRICS_PROMETHEUS_PORT>/metrics
//
// Default port: 9090.  The endpoint returns data in the Prometheus text exposition
// format (Content-Type: text/plain; version=0.0.4) and is intended to be scraped by
// a Prometheus server every 15–60 seconds.  It is NOT served by the Gin router.
//
// # Metric Groups
//
//   - HTTP request counters and latency histograms (labelled by route template, not raw URL)
//   - Appointment reminder dispatch counters and duration histogram
//   - Workspace approval decision counters
//   - Report generation counters and duration histogram
//   - Database connection pool gauge (polled every 30 s)
//
// # Label Cardinality
//
// HTTP metrics use c.FullPath() (route template such as /api/v1/trainer/students/:id)
// rather than the raw request URL to prevent unbounded label cardinality from
// user-supplied path segments such as student or workspace IDs.
package telemetry

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics — labelled by method, route template, and status code.
//
// HTTPRequestsTotal is a CounterVec with labels {method, path, status}.
// The path label holds the Gin route template, NOT the raw URL, to prevent
// unbounded cardinality.
//
// Example PromQL queries:
//   - Request rate (req/s, 5 m window):  rate(http_requests_total[5m])
//   - Error rate (%):                    sum(rate(http_requests_total{status=~"5.."}[5m])) / sum(rate(http_requests_total[5m])) * 100
//   - Requests by route:                 sum by (path) (rate(http_requests_total[5m]))
//
// HTTPRequestDuration is a HistogramVec with labels {method, path} and exponential-ish
// buckets from 5 ms to 30 s.  Use histogram_quantile to compute latency percentiles.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed, by method, route template, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, by method and route template.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)
)

// Reminder dispatch metrics — recorded by the reminder dispatcher background job.
//
// RemindersSentTotal is a CounterVec with labels {channel, result} incremented
// once per dispatch attempt.  "channel" is email or whatsapp; "result" is sent
// or error.
//
// Example PromQL queries:
//   - Delivery rate by channel:  sum by (channel) (rate(reminders_sent_total{result="sent"}[1h]))
//   - Alert expression:          increase(reminders_sent_total{result="error"}[30m]) > 3
//
// ReminderDispatchDuration is a Histogram using the default Prometheus buckets.
// Each observation represents one complete dispatch cycle (all due reminders).
var (
	RemindersSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminders_sent_total",
			Help: "Total number of appointment reminder dispatch attempts, by channel and result.",
		},
		[]string{"channel", "result"},
	)

	ReminderDispatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reminder_dispatch_duration_seconds",
			Help:    "Duration of a single reminder dispatch cycle.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// WorkspaceApprovalsTotal is a CounterVec with label {decision} (approved or
// rejected) incremented once per platform admin approval decision.  A sustained
// rejected rate is a signal that onboarding instructions need work.
//
// Example PromQL queries:
//   - Decisions per day:  sum by (decision) (increase(workspace_approvals_total[24h]))
var WorkspaceApprovalsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "workspace_approvals_total",
		Help: "Total number of workspace approval decisions, by decision.",
	},
	[]string{"decision"},
)

// Report generation metrics — recorded by the report service.
//
// ReportGenerationsTotal is a CounterVec with labels {kind, result}.  "kind" is
// the report kind (students, appointments); "result" is ok or error.
//
// ReportGenerationDuration is a HistogramVec with label {kind}.  Report
// generation does a full table export so the buckets extend to 60 s.
var (
	ReportGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_generations_total",
			Help: "Total number of report generation attempts, by kind and result.",
		},
		[]string{"kind", "result"},
	)

	ReportGenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "report_generation_duration_seconds",
			Help:    "Duration of report generation, by report kind.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"kind"},
	)
)

// DBOpenConnections is a Gauge that tracks the number of open connections currently
// held by the sql.DB connection pool.  It is sampled every 30 seconds by
// StartDBStatsCollector rather than per-request to avoid the overhead of sql.DB.Stats().
//
// Example PromQL queries:
//   - Pool utilisation (%): db_open_connections / <VTX_DATABASE_MAX_CONNECTIONS> * 100
//   - Alert on near-exhaustion: db_open_connections > 20  (for max_connections=25)
var DBOpenConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "db_open_connections",
		Help: "Current number of open database connections in the pool.",
	},
)

// StartDBStatsCollector launches a background goroutine that samples sql.DB connection
// pool statistics every 30 seconds and updates the DBOpenConnections gauge.
// The goroutine exits cleanly when the database becomes unreachable (db.Ping fails),
// which happens automatically when the application shuts down and defers db.Close().
//
// Call this once, immediately after db.Connect() succeeds in main.go:
//
//	telemetry.StartDBStatsCollector(database)
func StartDBStatsCollector(db *sql.DB) {
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			if err := db.Ping(); err != nil {
				slog.Warn("db stats collector: database unreachable, stopping collector", "error", err)
				return
			}
			DBOpenConnections.Set(float64(db.Stats().OpenConnections))
		}
	}()
}

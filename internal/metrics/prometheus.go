package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "staffsync_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "staffsync_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	leaveSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "staffsync_leave_submissions_total",
			Help: "Leave request submissions by result",
		},
		[]string{"result"},
	)

	leaveRequestedDays = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "staffsync_leave_requested_days",
			Help:    "Days requested by accepted submissions",
			Buckets: []float64{1, 2, 3, 5, 10, 15, 20, 30},
		},
	)

	leaveDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "staffsync_leave_decisions_total",
			Help: "Leave request decisions by outcome",
		},
		[]string{"outcome"},
	)

	outboxEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "staffsync_outbox_events_total",
			Help: "Outbox events relayed to kafka by result",
		},
		[]string{"result"},
	)
)

func statusClass(statusCode int) string {
	switch {
	case statusCode >= 500:
		return "5xx"
	case statusCode >= 400:
		return "4xx"
	case statusCode >= 300:
		return "3xx"
	case statusCode >= 200:
		return "2xx"
	default:
		return "unknown"
	}
}

func RecordHTTPRequest(method, endpoint string, statusCode int, durationSeconds float64) {
	httpRequestsTotal.WithLabelValues(method, endpoint, statusClass(statusCode)).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
}

// RecordLeaveSubmission counts a submission. result is "created" or the
// error code that rejected it; days is only observed for created requests.
func RecordLeaveSubmission(result string, days int) {
	leaveSubmissionsTotal.WithLabelValues(result).Inc()
	if result == "created" {
		leaveRequestedDays.Observe(float64(days))
	}
}

func RecordLeaveDecision(outcome string) {
	leaveDecisionsTotal.WithLabelValues(outcome).Inc()
}

func RecordOutboxEvent(result string) {
	outboxEventsTotal.WithLabelValues(result).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}

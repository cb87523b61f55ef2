package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce           sync.Once
	httpRequestsTotal      *prometheus.CounterVec
	httpLatencySeconds     *prometheus.HistogramVec
	httpErrorsTotal        *prometheus.CounterVec
	refreshDurationSeconds *prometheus.HistogramVec
	refreshOutcomesTotal   *prometheus.CounterVec
	completionQuerySeconds *prometheus.HistogramVec
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kursus_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kursus_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kursus_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		refreshDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kursus_refresh_duration_seconds",
			Help:    "Duration of course cache refreshes.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"course"})

		refreshOutcomesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kursus_refresh_outcomes_total",
			Help: "Course cache refresh outcomes by result.",
		}, []string{"course", "outcome"})

		completionQuerySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kursus_completion_query_seconds",
			Help:    "Latency of point completion aggregation runs.",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			refreshDurationSeconds,
			refreshOutcomesTotal,
			completionQuerySeconds,
		)
	})
}

// Requests exposes the counter for API requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// Latency exposes the latency histogram for API requests.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// Errors exposes the counter for API error responses.
func Errors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// RefreshDuration exposes the histogram of cache refresh durations.
func RefreshDuration() *prometheus.HistogramVec {
	RegisterMetrics()
	return refreshDurationSeconds
}

// RefreshOutcomes exposes the counter of refresh outcomes.
func RefreshOutcomes() *prometheus.CounterVec {
	RegisterMetrics()
	return refreshOutcomesTotal
}

// CompletionQueryLatency exposes the histogram of aggregation latencies.
func CompletionQueryLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return completionQuerySeconds
}

package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce        sync.Once
	requestsTotal       *prometheus.CounterVec
	latencySeconds      *prometheus.HistogramVec
	errorsTotal         *prometheus.CounterVec
	checkInsTotal       *prometheus.CounterVec
	duplicateScansTotal prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		latencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "attendance_api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		errorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_api_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		checkInsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_checkins_total",
			Help: "Attendance records created, labeled by method and status.",
		}, []string{"method", "status"})

		duplicateScansTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "attendance_duplicate_scans_total",
			Help: "Scan attempts rejected because the student was already recorded.",
		})

		prometheus.MustRegister(requestsTotal, latencySeconds, errorsTotal, checkInsTotal, duplicateScansTotal)
	})
}

// Requests exposes the counter for API requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// Latency exposes the latency histogram for API requests.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return latencySeconds
}

// Errors exposes the counter for API error responses.
func Errors() *prometheus.CounterVec {
	RegisterMetrics()
	return errorsTotal
}

// CheckIns exposes the counter for recorded attendance.
func CheckIns() *prometheus.CounterVec {
	RegisterMetrics()
	return checkInsTotal
}

// DuplicateScans exposes the counter for rejected duplicate scans.
func DuplicateScans() prometheus.Counter {
	RegisterMetrics()
	return duplicateScansTotal
}

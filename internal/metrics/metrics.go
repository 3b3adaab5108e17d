// Package metrics exposes service lifecycle metrics to Prometheus
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "traefiker_lifecycle_operations_total",
			Help: "Total number of service lifecycle operations by result",
		},
		[]string{"operation", "result"},
	)

	provisionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "traefiker_provision_duration_seconds",
			Help:    "Background provisioning duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		},
		[]string{"outcome"},
	)

	transitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "traefiker_service_transitions_total",
			Help: "Total number of persisted service status transitions",
		},
		[]string{"from", "to"},
	)

	provisionsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "traefiker_provisions_in_flight",
			Help: "Number of background provisioning jobs currently running",
		},
	)
)

// Operation results
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// RecordOperation counts a synchronous lifecycle operation
func RecordOperation(operation string, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	operationsTotal.WithLabelValues(operation, result).Inc()
}

// RecordTransition counts a persisted status change
func RecordTransition(from, to string) {
	if from == to {
		return
	}
	transitionsTotal.WithLabelValues(from, to).Inc()
}

// ProvisionStarted marks a background job as running and returns its completion callback
func ProvisionStarted() func(outcome string) {
	start := time.Now()
	provisionsInFlight.Inc()
	return func(outcome string) {
		provisionsInFlight.Dec()
		provisionDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the default registry in the Prometheus text format
func Handler() http.Handler {
	return promhttp.Handler()
}

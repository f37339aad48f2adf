package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	providerOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calendso_provider_operations_total",
			Help: "Provider operations issued by the reconciliation engine, by provider type, operation and outcome.",
		},
		[]string{"provider", "operation", "status"},
	)

	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "calendso_provider_operation_seconds",
			Help:    "Wall-clock duration of provider operations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "operation"},
	)
)

// RecordOperation counts one provider operation outcome.
func RecordOperation(provider, operation string, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	providerOperations.WithLabelValues(provider, operation, status).Inc()
}

// ObserveDuration records how long a provider operation took.
func ObserveDuration(provider, operation string, seconds float64) {
	operationDuration.WithLabelValues(provider, operation).Observe(seconds)
}

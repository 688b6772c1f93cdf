package metrics

import "github.com/prometheus/client_golang/prometheus"

// Validation Prometheus metrics.
var (
	ValidationRowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "validation_rows_total",
			Help:      "Total number of validated rows",
		},
		[]string{"result"}, // "valid" / "invalid"
	)

	ValidationFieldErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "validation_field_errors_total",
			Help:      "Total number of fields that failed validation",
		},
		[]string{"field_type"},
	)
)

var validationMetricsRegistered bool

// RegisterValidationMetrics registers Prometheus validation metrics. Must be called once from main.
func RegisterValidationMetrics() {
	if validationMetricsRegistered {
		return
	}
	prometheus.MustRegister(ValidationRowsTotal)
	prometheus.MustRegister(ValidationFieldErrorsTotal)
	validationMetricsRegistered = true
}

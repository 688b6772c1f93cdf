package metrics

import "github.com/prometheus/client_golang/prometheus"

// Export Prometheus metrics.
var (
	ExportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "exports_total",
			Help:      "Total number of dataset exports",
		},
		[]string{"format", "status"},
	)

	ExportBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "export_bytes",
			Help:      "Size of rendered exports in bytes",
			Buckets:   prometheus.ExponentialBuckets(256, 4, 8),
		},
		[]string{"format"},
	)
)

var exportMetricsRegistered bool

// RegisterExportMetrics registers Prometheus export metrics. Must be called once from main.
func RegisterExportMetrics() {
	if exportMetricsRegistered {
		return
	}
	prometheus.MustRegister(ExportsTotal)
	prometheus.MustRegister(ExportBytes)
	exportMetricsRegistered = true
}

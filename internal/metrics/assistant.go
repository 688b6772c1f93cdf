package metrics

import "github.com/prometheus/client_golang/prometheus"

// Assistant (text generation) Prometheus metrics.
var (
	AssistantRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "assistant_requests_total",
			Help:      "Total number of text generation requests",
		},
		[]string{"provider", "model", "status"},
	)

	AssistantRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "assistant_request_duration_seconds",
			Help:      "Text generation request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider", "model"},
	)

	AssistantTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "assistant_tokens_total",
			Help:      "Total text generation tokens consumed",
		},
		[]string{"provider", "model", "type"}, // "prompt" / "completion"
	)

	AssistantErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "assistant_errors_total",
			Help:      "Total text generation errors",
		},
		[]string{"provider", "model", "error_type"},
	)

	AssistantCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "assistant_cache_total",
			Help:      "Completion cache lookups by result",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var assistantMetricsRegistered bool

// RegisterAssistantMetrics registers Prometheus assistant metrics. Must be called once from main.
func RegisterAssistantMetrics() {
	if assistantMetricsRegistered {
		return
	}
	prometheus.MustRegister(AssistantRequestsTotal)
	prometheus.MustRegister(AssistantRequestDuration)
	prometheus.MustRegister(AssistantTokensTotal)
	prometheus.MustRegister(AssistantErrorsTotal)
	prometheus.MustRegister(AssistantCacheTotal)
	assistantMetricsRegistered = true
}

package gemini

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type clientMetrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

var (
	clientMetricsInstance *clientMetrics
	clientMetricsOnce     sync.Once
	clientRegistry        = prometheus.DefaultRegisterer
)

func newClientMetrics() *clientMetrics {
	clientMetricsOnce.Do(func() {
		clientMetricsInstance = &clientMetrics{
			requests: promauto.With(clientRegistry).NewCounterVec(prometheus.CounterOpts{
				Name: "llm_requests_total",
				Help: "Generate requests sent to the language model by outcome",
			}, []string{"model", "outcome"}),
			latency: promauto.With(clientRegistry).NewHistogramVec(prometheus.HistogramOpts{
				Name:    "llm_request_duration_seconds",
				Help:    "Latency of generate requests",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
			}, []string{"model"}),
		}
	})
	return clientMetricsInstance
}

func resetClientMetricsForTesting() {
	clientRegistry = prometheus.NewRegistry()
	clientMetricsInstance = nil
	clientMetricsOnce = sync.Once{}
}

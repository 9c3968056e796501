package receipts

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type fetchMetrics struct {
	failures prometheus.Counter
	fetched  prometheus.Counter
}

// Singleton pattern for metrics (avoid double registration in tests).
var (
	fetchMetricsInstance *fetchMetrics
	fetchMetricsOnce     sync.Once
	fetchRegistry        = prometheus.DefaultRegisterer
)

func newFetchMetrics() *fetchMetrics {
	fetchMetricsOnce.Do(func() {
		fetchMetricsInstance = &fetchMetrics{
			failures: promauto.With(fetchRegistry).NewCounter(prometheus.CounterOpts{
				Name: "receipt_fetch_failures_total",
				Help: "Receipt fetches that fell back to an empty result because the store failed",
			}),
			fetched: promauto.With(fetchRegistry).NewCounter(prometheus.CounterOpts{
				Name: "receipt_fetch_receipts_total",
				Help: "Receipts returned to analytics after filtering",
			}),
		}
	})
	return fetchMetricsInstance
}

// resetFetchMetricsForTesting resets the metrics singleton for test isolation.
func resetFetchMetricsForTesting() {
	fetchRegistry = prometheus.NewRegistry()
	fetchMetricsInstance = nil
	fetchMetricsOnce = sync.Once{}
}

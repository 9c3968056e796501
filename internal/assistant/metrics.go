package assistant

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type assistantMetrics struct {
	queries       *prometheus.CounterVec
	roundTrips    prometheus.Histogram
	toolCalls     *prometheus.CounterVec
	shoppingLists prometheus.Counter
}

var (
	assistantMetricsInstance *assistantMetrics
	assistantMetricsOnce     sync.Once
	assistantRegistry        = prometheus.DefaultRegisterer
)

func newAssistantMetrics() *assistantMetrics {
	assistantMetricsOnce.Do(func() {
		assistantMetricsInstance = &assistantMetrics{
			queries: promauto.With(assistantRegistry).NewCounterVec(prometheus.CounterOpts{
				Name: "assistant_queries_total",
				Help: "Queries processed by the assistant by final state",
			}, []string{"final_state"}),
			roundTrips: promauto.With(assistantRegistry).NewHistogram(prometheus.HistogramOpts{
				Name:    "assistant_round_trips",
				Help:    "Model round trips needed to answer a query",
				Buckets: []float64{1, 2, 3, 4, 5, 8},
			}),
			toolCalls: promauto.With(assistantRegistry).NewCounterVec(prometheus.CounterOpts{
				Name: "assistant_tool_calls_total",
				Help: "Tool calls requested by the model by tool and outcome",
			}, []string{"tool", "outcome"}),
			shoppingLists: promauto.With(assistantRegistry).NewCounter(prometheus.CounterOpts{
				Name: "assistant_shopping_list_passes_total",
				Help: "Shopping list passes created from answered queries",
			}),
		}
	})
	return assistantMetricsInstance
}

func resetAssistantMetricsForTesting() {
	assistantRegistry = prometheus.NewRegistry()
	assistantMetricsInstance = nil
	assistantMetricsOnce = sync.Once{}
}

package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search pipeline metrics.
var (
	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gemdex",
			Name:      "searches_total",
			Help:      "Total searches by query kind",
		},
		[]string{"kind", "status"}, // kind: text/image/sketch/handwriting
	)

	RerankRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gemdex",
			Name:      "rerank_requests_total",
			Help:      "Total rerank service calls",
		},
		[]string{"status"},
	)

	AssembleSkippedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "gemdex",
			Name:      "assemble_skipped_assets_total",
			Help:      "Result assets that failed to load during assembly",
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers search metrics. Called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchesTotal)
	prometheus.MustRegister(RerankRequestsTotal)
	prometheus.MustRegister(AssembleSkippedTotal)
	searchMetricsRegistered = true
}

package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	FetchAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "emoji_kitchen",
			Name:      "fetch_attempts_total",
			Help:      "HTTP requests issued to the rendering API, by result.",
		},
		[]string{"result"},
	)

	FetchLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "emoji_kitchen",
			Name:      "fetch_latency_seconds",
			Help:      "Latency of single requests to the rendering API.",
		},
	)

	InflightFetches = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "emoji_kitchen",
			Name:      "inflight_fetches",
			Help:      "Requests currently holding a concurrency permit.",
		},
	)

	PairOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "emoji_kitchen",
			Name:      "pair_outcomes_total",
			Help:      "Terminal state of each processed pair.",
		},
		[]string{"state"},
	)
)

// Register registers the downloader metrics into reg.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(FetchAttempts, FetchLatency, InflightFetches, PairOutcomes)
}

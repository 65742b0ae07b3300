package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of the search (recommendation generation) round trip
	SearchLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "advisor_search_latency_seconds",
		Help:    "Latency of recommendation generation calls",
		Buckets: prometheus.DefBuckets,
	})

	// Total number of searches submitted
	SearchTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "advisor_search_requests_total",
		Help: "Total number of recommendation searches submitted",
	})

	// Searches that ended in a user-visible error banner
	SearchFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "advisor_search_failures_total",
		Help: "Searches that failed and surfaced an error to the user",
	})

	// Latency of similar-phones lookups
	SimilarLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "advisor_similar_latency_seconds",
		Help:    "Latency of similar-phones generation calls",
		Buckets: prometheus.DefBuckets,
	})

	// How many image requests fell back to the seeded placeholder
	ImageFallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "advisor_image_fallbacks_total",
		Help: "Image generations replaced by the deterministic placeholder",
	})
)

func Init() {
	prometheus.MustRegister(
		SearchLatency,
		SearchTotal,
		SearchFailures,
		SimilarLatency,
		ImageFallbacks,
	)
}

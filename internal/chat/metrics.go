package chat

import "github.com/prometheus/client_golang/prometheus"

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_chat_requests_total",
			Help: "Chat requests processed, by intent and outcome.",
		},
		[]string{"intent", "outcome"},
	)

	cacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "folio_chat_cache_hits_total",
			Help: "Chat responses served from the response cache.",
		},
	)

	computeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "folio_chat_compute_duration_seconds",
			Help:    "Time spent computing statistics for a chat request.",
			Buckets: prometheus.DefBuckets,
		},
	)

	summarizeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "folio_chat_summarize_duration_seconds",
			Help:    "Time spent in the summarization step, fallback included.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal, cacheHitsTotal, computeDuration, summarizeDuration)
}

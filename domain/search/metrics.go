package search

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the search engine's Prometheus collectors
type Metrics struct {
	searches         *prometheus.CounterVec
	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
	retrieverLatency *prometheus.HistogramVec
	upstreamCalls    prometheus.Counter
}

// NewMetrics registers the search collectors on the default registerer
func NewMetrics() *Metrics {
	return newMetrics(prometheus.DefaultRegisterer)
}

func newMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		searches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stagedoor",
			Subsystem: "search",
			Name:      "requests_total",
			Help:      "Search requests by query tier and outcome.",
		}, []string{"tier", "status"}),
		cacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stagedoor",
			Subsystem: "search",
			Name:      "cache_hits_total",
			Help:      "Cache hits by layer (filters, embedding, results).",
		}, []string{"layer"}),
		cacheMisses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stagedoor",
			Subsystem: "search",
			Name:      "cache_misses_total",
			Help:      "Cache misses by layer.",
		}, []string{"layer"}),
		retrieverLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "stagedoor",
			Subsystem: "search",
			Name:      "retriever_seconds",
			Help:      "Retrieval latency by path (dense, lexical).",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path"}),
		upstreamCalls: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "stagedoor",
			Subsystem: "search",
			Name:      "upstream_calls_total",
			Help:      "Estimated embedding and LLM API calls.",
		}),
	}
}

func (m *Metrics) observeSearch(tier int, status string) {
	m.searches.WithLabelValues(strconv.Itoa(tier), status).Inc()
	m.upstreamCalls.Add(float64(APICalls(tier)))
}

func (m *Metrics) cacheHit(layer string) {
	m.cacheHits.WithLabelValues(layer).Inc()
}

func (m *Metrics) cacheMiss(layer string) {
	m.cacheMisses.WithLabelValues(layer).Inc()
}

package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "helpmap"

// Upstream and cache Prometheus metrics.
var (
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Total outbound requests by provider and outcome",
		},
		[]string{"provider", "outcome"}, // outcome: ok, empty, auth_error, network_error, upstream_error
	)

	UpstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Outbound request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider"},
	)

	CacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache hits and misses by cache",
		},
		[]string{"cache", "result"}, // result: hit, miss, error
	)

	SummaryLockTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_lock_total",
			Help:      "Summary lock acquisition outcomes",
		},
		[]string{"result"}, // acquired, timeout
	)

	GenerationAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_attempts_total",
			Help:      "Text generation attempts by provider and status",
		},
		[]string{"provider", "status"}, // ok, error
	)
)

var registerOnce sync.Once

// Register registers all helpmap metrics with the default registry.
// Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			UpstreamRequestsTotal,
			UpstreamRequestDuration,
			CacheLookupsTotal,
			SummaryLockTotal,
			GenerationAttemptsTotal,
			httpRequestDuration,
			httpRequestsTotal,
		)
	})
}

// ObserveUpstream records one outbound call.
func ObserveUpstream(provider, outcome string, started time.Time) {
	UpstreamRequestsTotal.WithLabelValues(provider, outcome).Inc()
	UpstreamRequestDuration.WithLabelValues(provider).Observe(time.Since(started).Seconds())
}

// ObserveCache records a cache lookup result.
func ObserveCache(cache, result string) {
	CacheLookupsTotal.WithLabelValues(cache, result).Inc()
}

// Package metrics provides Prometheus instrumentation for polystore
// providers.
//
// Wire ProviderOpDuration into a provider's operation boundary:
//
//	defer metrics.ObserveProviderOp("relational", "query", time.Now())
//
// and scrape DefaultRegistry from wherever the embedding application
// exposes /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// ProviderOpDuration tracks how long each Provider operation takes,
	// broken down by provider kind (relational/document/object, the
	// providers that record it) and operation name.
	ProviderOpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "polystore",
			Subsystem: "provider",
			Name:      "op_duration_seconds",
			Help:      "Duration of Provider operations in seconds.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .5, 1},
		},
		[]string{"provider", "operation"},
	)

	// CacheHits / CacheMisses track the cached-provider decorator's
	// effectiveness.
	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "polystore",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total cache hits in the caching provider decorator.",
		},
		[]string{"driver"}, // "redis"
	)
	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "polystore",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total cache misses in the caching provider decorator.",
		},
		[]string{"driver"},
	)
)

// DefaultRegistry is the Prometheus registry used by polystore.
var DefaultRegistry = prometheus.NewRegistry()

func init() {
	DefaultRegistry.MustRegister(collectors.NewGoCollector())
	DefaultRegistry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	DefaultRegistry.MustRegister(
		ProviderOpDuration,
		CacheHits,
		CacheMisses,
	)
}

// Register lets callers add their own prometheus.Collector to the
// polystore registry.
func Register(c prometheus.Collector) error {
	return DefaultRegistry.Register(c)
}

// MustRegister panics if registration fails.
func MustRegister(c ...prometheus.Collector) {
	DefaultRegistry.MustRegister(c...)
}

// NewHistogram creates and registers a Histogram with the given name and
// labels, for providers that need a metric beyond the built-ins above.
func NewHistogram(namespace, name, help string, buckets []float64, labels []string) *prometheus.HistogramVec {
	h := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}, labels)
	DefaultRegistry.MustRegister(h)
	return h
}

// ObserveProviderOp records a Provider operation's duration:
//
//	defer metrics.ObserveProviderOp("relational", "query", time.Now())
func ObserveProviderOp(provider, operation string, start time.Time) {
	ProviderOpDuration.WithLabelValues(provider, operation).Observe(time.Since(start).Seconds())
}

// ObserveCacheHit and ObserveCacheMiss record one cache lookup outcome.
func ObserveCacheHit(driver string)  { CacheHits.WithLabelValues(driver).Inc() }
func ObserveCacheMiss(driver string) { CacheMisses.WithLabelValues(driver).Inc() }

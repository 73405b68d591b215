package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics contains the Prometheus collectors for the stats agent.
// A nil *Metrics is safe to call; every method no-ops.
type Metrics struct {
	RequestsTotal     *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	CacheHits         *prometheus.CounterVec
	CacheMisses       *prometheus.CounterVec
	CacheEvictions    *prometheus.CounterVec
	SourceAttempts    *prometheus.CounterVec
	RetrievalDuration prometheus.Histogram

	registry *prometheus.Registry
}

// New creates and registers the agent's collectors under the given
// namespace.
func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, path and status",
		}, []string{"method", "path", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Cache hits by tier",
		}, []string{"tier"}),
		CacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Cache misses by tier",
		}, []string{"tier"}),
		CacheEvictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_evictions_total",
			Help:      "Cache evictions by tier",
		}, []string{"tier"}),
		SourceAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_attempts_total",
			Help:      "Data source fetch attempts by source and outcome",
		}, []string{"source", "outcome"}),
		RetrievalDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_duration_seconds",
			Help:      "End-to-end retrieval latency including fallbacks",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
		registry: registry,
	}

	registry.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.CacheHits,
		m.CacheMisses,
		m.CacheEvictions,
		m.SourceAttempts,
		m.RetrievalDuration,
	)
	return m
}

// RecordCacheHit increments the hit counter for a tier.
func (m *Metrics) RecordCacheHit(tier string) {
	if m == nil {
		return
	}
	m.CacheHits.WithLabelValues(tier).Inc()
}

// RecordCacheMiss increments the miss counter for a tier.
func (m *Metrics) RecordCacheMiss(tier string) {
	if m == nil {
		return
	}
	m.CacheMisses.WithLabelValues(tier).Inc()
}

// RecordSourceAttempt records one adapter fetch outcome: success,
// empty, not_found, unavailable or error.
func (m *Metrics) RecordSourceAttempt(source, outcome string) {
	if m == nil {
		return
	}
	m.SourceAttempts.WithLabelValues(source, outcome).Inc()
}

// RecordRetrieval observes a retrieval's end-to-end duration.
func (m *Metrics) RecordRetrieval(d time.Duration) {
	if m == nil {
		return
	}
	m.RetrievalDuration.Observe(d.Seconds())
}

// Handler returns the scrape endpoint handler.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// Middleware instruments HTTP requests.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}
		m.RequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.RequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Package metrics exports pipeline, cache and server activity as Prometheus
// metrics.
//
// A [Collector] implements the hook interfaces of the observability package.
// Install it once at startup and serve [Collector.Handler] on /metrics:
//
//	m := metrics.New()
//	m.Install()
//	router.Handle("/metrics", m.Handler())
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/breadthfirst/pkg/observability"
)

const namespace = "breadthfirst"

// Collector records metrics into its own registry.
type Collector struct {
	registry *prometheus.Registry

	Layouts      *prometheus.HistogramVec
	LayoutLevels prometheus.Histogram
	LayoutNodes  prometheus.Histogram
	Cycles       prometheus.Counter
	Renders      *prometheus.HistogramVec
	CacheLookups *prometheus.CounterVec
	CacheBytes   *prometheus.CounterVec
	Requests     *prometheus.HistogramVec
	InFlight     prometheus.Gauge
}

// New creates a collector with a fresh registry that also carries the Go
// runtime and process collectors.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		Layouts: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layout_duration_seconds",
			Help:      "Breadth-first layout latencies in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"result"}),
		LayoutLevels: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layout_levels",
			Help:      "Number of depth levels per computed layout",
			Buckets:   prometheus.LinearBuckets(1, 4, 10),
		}),
		LayoutNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layout_nodes",
			Help:      "Number of nodes per layout request",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		Cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "maximal_adjustments_abandoned_total",
			Help:      "Maximal adjustment passes abandoned because of a cycle",
		}),
		Renders: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Artifact render latencies in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"formats", "result"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by key type and outcome",
		}, []string{"key_type", "outcome"}),
		CacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache by key type",
		}, []string{"key_type"}),
		Requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latencies in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "HTTP requests currently being served",
		}),
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.Layouts, c.LayoutLevels, c.LayoutNodes, c.Cycles, c.Renders,
		c.CacheLookups, c.CacheBytes, c.Requests, c.InFlight,
	)
	return c
}

// Registry returns the registry the collector writes to.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Install registers the collector as the global pipeline, cache and server hooks.
func (c *Collector) Install() {
	observability.SetPipelineHooks(c)
	observability.SetCacheHooks(c)
	observability.SetServerHooks(c)
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// OnLayoutStart implements observability.PipelineHooks.
func (c *Collector) OnLayoutStart(_ context.Context, nodeCount, _ int) {
	c.LayoutNodes.Observe(float64(nodeCount))
}

// OnLayoutComplete implements observability.PipelineHooks.
func (c *Collector) OnLayoutComplete(_ context.Context, levelCount int, dur time.Duration, err error) {
	c.Layouts.WithLabelValues(result(err)).Observe(dur.Seconds())
	if err == nil {
		c.LayoutLevels.Observe(float64(levelCount))
	}
}

// OnCycleDetected implements observability.PipelineHooks.
func (c *Collector) OnCycleDetected(context.Context, string) {
	c.Cycles.Inc()
}

// OnRenderStart implements observability.PipelineHooks.
func (c *Collector) OnRenderStart(context.Context, []string) {}

// OnRenderComplete implements observability.PipelineHooks.
func (c *Collector) OnRenderComplete(_ context.Context, formats []string, dur time.Duration, err error) {
	c.Renders.WithLabelValues(joinFormats(formats), result(err)).Observe(dur.Seconds())
}

// OnCacheHit implements observability.CacheHooks.
func (c *Collector) OnCacheHit(_ context.Context, keyType string) {
	c.CacheLookups.WithLabelValues(keyType, "hit").Inc()
}

// OnCacheMiss implements observability.CacheHooks.
func (c *Collector) OnCacheMiss(_ context.Context, keyType string) {
	c.CacheLookups.WithLabelValues(keyType, "miss").Inc()
}

// OnCacheSet implements observability.CacheHooks.
func (c *Collector) OnCacheSet(_ context.Context, keyType string, size int) {
	c.CacheBytes.WithLabelValues(keyType).Add(float64(size))
}

// OnRequest implements observability.ServerHooks.
func (c *Collector) OnRequest(context.Context, string, string) {
	c.InFlight.Inc()
}

// OnResponse implements observability.ServerHooks.
func (c *Collector) OnResponse(_ context.Context, method, route string, status int, dur time.Duration) {
	c.InFlight.Dec()
	c.Requests.WithLabelValues(method, route, strconv.Itoa(status)).Observe(dur.Seconds())
}

// joinFormats keeps the label cardinality bounded by the format set.
func joinFormats(formats []string) string {
	if len(formats) == 0 {
		return "none"
	}
	return strings.Join(formats, ",")
}

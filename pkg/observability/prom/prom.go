// Package prom implements the observability hooks with Prometheus metrics.
//
//	reg := prometheus.NewRegistry()
//	h := prom.New(reg)
//	observability.SetLayoutHooks(h)
//	observability.SetCacheHooks(h)
//	observability.SetHTTPHooks(h)
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package prom

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/sankey/pkg/observability"
)

// Hooks records layout, cache and HTTP events as Prometheus metrics.
type Hooks struct {
	layouts        *prometheus.CounterVec
	layoutDuration prometheus.Histogram
	layoutNodes    prometheus.Histogram
	cacheEvents    *prometheus.CounterVec
	cacheBytes     prometheus.Counter
	requests       *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// New registers the sankey metrics with reg and returns hooks feeding them.
// A nil reg uses prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Hooks {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Hooks{
		layouts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sankey_layouts_total",
			Help: "Total number of computed layouts, labelled by status.",
		}, []string{"status"}),
		layoutDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "sankey_layout_duration_seconds",
			Help:    "Time spent computing a layout.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
		layoutNodes: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "sankey_layout_nodes",
			Help:    "Number of nodes per computed layout.",
			Buckets: prometheus.ExponentialBuckets(2, 2, 12),
		}),
		cacheEvents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sankey_cache_events_total",
			Help: "Cache lookups and writes, labelled by event and key type.",
		}, []string{"event", "key_type"}),
		cacheBytes: f.NewCounter(prometheus.CounterOpts{
			Name: "sankey_cache_written_bytes_total",
			Help: "Bytes written to the cache.",
		}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sankey_http_requests_total",
			Help: "HTTP requests served, labelled by method, route and status code.",
		}, []string{"method", "route", "code"}),
		requestLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sankey_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (h *Hooks) OnLayoutStart(context.Context, int, int) {}

func (h *Hooks) OnLayoutComplete(_ context.Context, nodeCount int, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	h.layouts.WithLabelValues(status).Inc()
	if err == nil {
		h.layoutDuration.Observe(d.Seconds())
		h.layoutNodes.Observe(float64(nodeCount))
	}
}

func (h *Hooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues("hit", keyType).Inc()
}

func (h *Hooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues("miss", keyType).Inc()
}

func (h *Hooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cacheEvents.WithLabelValues("set", keyType).Inc()
	h.cacheBytes.Add(float64(size))
}

func (h *Hooks) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	h.requests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	h.requestLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ observability.LayoutHooks = (*Hooks)(nil)
	_ observability.CacheHooks  = (*Hooks)(nil)
	_ observability.HTTPHooks   = (*Hooks)(nil)
)

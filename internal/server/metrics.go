package server

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/stacktree/pkg/observability"
)

const namespace = "stacktree"

// Metrics implements the observability hooks on top of Prometheus
// collectors.
type Metrics struct {
	layoutDuration *prometheus.HistogramVec
	layoutNodes    prometheus.Histogram
	renderDuration *prometheus.HistogramVec
	renderErrors   *prometheus.CounterVec
	reconciled     *prometheus.CounterVec
	mismatches     prometheus.Counter

	cacheEvents *prometheus.CounterVec
	cacheBytes  *prometheus.CounterVec

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inFlight        prometheus.Gauge

	scenes prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		layoutDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layout_duration_seconds",
			Help:      "Time spent computing tidy layouts.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"viz_type"}),
		layoutNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layout_nodes",
			Help:      "Number of nodes per computed layout.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		renderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Time spent rendering artifacts.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"formats"}),
		renderErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "render_errors_total",
			Help:      "Failed render calls.",
		}, []string{"formats"}),
		reconciled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scene_elements_reconciled_total",
			Help:      "Scene elements changed by keyed reconciliation.",
		}, []string{"change"}),
		mismatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parent_mismatches_total",
			Help:      "Parent back-references that disagreed with containment.",
		}),
		cacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_events_total",
			Help:      "Cache lookups and writes.",
		}, []string{"key_type", "event"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache.",
		}, []string{"key_type"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Requests currently being served.",
		}),
		scenes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scenes",
			Help:      "Retained scenes held by the server.",
		}),
	}

	reg.MustRegister(
		m.layoutDuration, m.layoutNodes, m.renderDuration, m.renderErrors,
		m.reconciled, m.mismatches, m.cacheEvents, m.cacheBytes,
		m.requests, m.requestDuration, m.inFlight, m.scenes,
	)
	return m
}

// Install registers m as the process-wide pipeline, cache and HTTP hooks.
func (m *Metrics) Install() {
	observability.SetPipelineHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

// =============================================================================
// PipelineHooks
// =============================================================================

func (m *Metrics) OnLayoutStart(context.Context, string, int) {}

func (m *Metrics) OnLayoutComplete(_ context.Context, vizType string, nodeCount int, d time.Duration, err error) {
	if err != nil {
		return
	}
	m.layoutDuration.WithLabelValues(vizType).Observe(d.Seconds())
	m.layoutNodes.Observe(float64(nodeCount))
}

func (m *Metrics) OnRenderStart(context.Context, []string) {}

func (m *Metrics) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	label := strings.Join(formats, ",")
	if err != nil {
		m.renderErrors.WithLabelValues(label).Inc()
		return
	}
	m.renderDuration.WithLabelValues(label).Observe(d.Seconds())
}

func (m *Metrics) OnReconcile(_ context.Context, added, updated, removed int) {
	m.reconciled.WithLabelValues("added").Add(float64(added))
	m.reconciled.WithLabelValues("updated").Add(float64(updated))
	m.reconciled.WithLabelValues("removed").Add(float64(removed))
}

func (m *Metrics) OnParentMismatch(_ context.Context, count int) {
	m.mismatches.Add(float64(count))
}

// =============================================================================
// CacheHooks
// =============================================================================

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheEvents.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

// =============================================================================
// HTTPHooks
// =============================================================================

func (m *Metrics) OnRequest(context.Context, string, string) {
	m.inFlight.Inc()
}

func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.inFlight.Dec()
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// sceneCount records the number of retained scenes.
func (m *Metrics) sceneCount(n int) {
	if m != nil {
		m.scenes.Set(float64(n))
	}
}

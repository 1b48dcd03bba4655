// Package prom implements the observability hooks on Prometheus collectors.
//
// Collectors are created per [Metrics] value and registered on the registerer
// passed to [New], so tests can use a private registry:
//
//	reg := prometheus.NewRegistry()
//	m := prom.New(reg)
//	observability.SetInteractionHooks(m)
//	observability.SetCacheHooks(m)
package prom

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/MomoChenisMe/xyflow-sub001/pkg/observability"
)

// Metrics implements every hook interface of the observability package.
type Metrics struct {
	GesturesStarted  *prometheus.CounterVec
	GesturesFinished *prometheus.CounterVec
	GestureSeconds   *prometheus.HistogramVec
	Zoom             prometheus.Gauge

	PipelineSeconds *prometheus.HistogramVec
	PipelineErrors  *prometheus.CounterVec

	CacheRequests *prometheus.CounterVec
	CacheBytes    *prometheus.CounterVec
}

var (
	_ observability.InteractionHooks = (*Metrics)(nil)
	_ observability.PipelineHooks    = (*Metrics)(nil)
	_ observability.CacheHooks       = (*Metrics)(nil)
)

// New creates the collectors and registers them on reg. It panics if a
// collector is already registered, like prometheus.MustRegister.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		GesturesStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xyflow_gestures_started_total",
				Help: "Gestures that left the pending state",
			},
			[]string{"kind"},
		),
		GesturesFinished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xyflow_gestures_finished_total",
				Help: "Finished gestures by outcome",
			},
			[]string{"kind", "outcome"},
		),
		GestureSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "xyflow_gesture_duration_seconds",
				Help:    "Duration of finished gestures",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
			},
			[]string{"kind"},
		),
		Zoom: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "xyflow_viewport_zoom",
			Help: "Last zoom level reached",
		}),
		PipelineSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "xyflow_pipeline_stage_duration_seconds",
				Help:    "Duration of pipeline stages",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		PipelineErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xyflow_pipeline_errors_total",
				Help: "Failed pipeline stages",
			},
			[]string{"stage"},
		),
		CacheRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xyflow_cache_requests_total",
				Help: "Cache lookups by key type and result",
			},
			[]string{"key_type", "result"},
		),
		CacheBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xyflow_cache_written_bytes_total",
				Help: "Bytes written to the cache",
			},
			[]string{"key_type"},
		),
	}
	reg.MustRegister(
		m.GesturesStarted, m.GesturesFinished, m.GestureSeconds, m.Zoom,
		m.PipelineSeconds, m.PipelineErrors,
		m.CacheRequests, m.CacheBytes,
	)
	return m
}

// Install registers m as the global interaction, pipeline and cache hooks.
func (m *Metrics) Install() {
	observability.SetInteractionHooks(m)
	observability.SetPipelineHooks(m)
	observability.SetCacheHooks(m)
}

func (m *Metrics) OnGestureStart(kind string) {
	m.GesturesStarted.WithLabelValues(kind).Inc()
}

func (m *Metrics) OnGestureEnd(kind string, committed bool, d time.Duration) {
	outcome := "committed"
	if !committed {
		outcome = "cancelled"
	}
	m.GesturesFinished.WithLabelValues(kind, outcome).Inc()
	m.GestureSeconds.WithLabelValues(kind).Observe(d.Seconds())
}

func (m *Metrics) OnZoom(zoom float64) { m.Zoom.Set(zoom) }

func (m *Metrics) OnLoadStart(context.Context, string) {}

func (m *Metrics) OnLoadComplete(_ context.Context, _ string, _ int, d time.Duration, err error) {
	m.stage("load", d, err)
}

func (m *Metrics) OnLayoutStart(context.Context, string, int) {}

func (m *Metrics) OnLayoutComplete(_ context.Context, _ string, d time.Duration, err error) {
	m.stage("layout", d, err)
}

func (m *Metrics) OnRenderStart(context.Context, []string) {}

func (m *Metrics) OnRenderComplete(_ context.Context, _ []string, d time.Duration, err error) {
	m.stage("render", d, err)
}

func (m *Metrics) stage(name string, d time.Duration, err error) {
	m.PipelineSeconds.WithLabelValues(name).Observe(d.Seconds())
	if err != nil {
		m.PipelineErrors.WithLabelValues(name).Inc()
	}
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.CacheRequests.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.CacheRequests.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.CacheBytes.WithLabelValues(keyType).Add(float64(size))
}

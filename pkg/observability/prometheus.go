package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus implements every hook interface on top of Prometheus
// collectors registered with a caller-supplied registerer.
type Prometheus struct {
	iterations   prometheus.Counter
	temperature  prometheus.Gauge
	movement     prometheus.Histogram
	iterDuration prometheus.Histogram

	layouts        *prometheus.CounterVec
	layoutDuration prometheus.Histogram
	renders        *prometheus.CounterVec
	renderDuration prometheus.Histogram

	cacheOps *prometheus.CounterVec

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

var (
	_ EngineHooks   = (*Prometheus)(nil)
	_ PipelineHooks = (*Prometheus)(nil)
	_ CacheHooks    = (*Prometheus)(nil)
	_ HTTPHooks     = (*Prometheus)(nil)
)

// NewPrometheus creates the collectors and registers them with reg.
// It panics if any collector is already registered, like
// prometheus.MustRegister.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		iterations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "impred", Subsystem: "engine", Name: "iterations_total",
			Help: "Layout iterations executed.",
		}),
		temperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "impred", Subsystem: "engine", Name: "temperature",
			Help: "Temperature of the most recent iteration.",
		}),
		movement: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "impred", Subsystem: "engine", Name: "max_movement",
			Help:    "Largest node movement per iteration.",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
		iterDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "impred", Subsystem: "engine", Name: "iteration_duration_seconds",
			Help:    "Wall-clock time per iteration.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		layouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "impred", Subsystem: "pipeline", Name: "layouts_total",
			Help: "Layout runs by outcome.",
		}, []string{"outcome"}),
		layoutDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "impred", Subsystem: "pipeline", Name: "layout_duration_seconds",
			Help:    "Wall-clock time per layout run.",
			Buckets: prometheus.DefBuckets,
		}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "impred", Subsystem: "pipeline", Name: "renders_total",
			Help: "Render runs by outcome.",
		}, []string{"outcome"}),
		renderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "impred", Subsystem: "pipeline", Name: "render_duration_seconds",
			Help:    "Wall-clock time per render run.",
			Buckets: prometheus.DefBuckets,
		}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "impred", Subsystem: "cache", Name: "operations_total",
			Help: "Cache operations by key type and result.",
		}, []string{"key_type", "result"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "impred", Subsystem: "http", Name: "requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "impred", Subsystem: "http", Name: "request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(
		p.iterations, p.temperature, p.movement, p.iterDuration,
		p.layouts, p.layoutDuration, p.renders, p.renderDuration,
		p.cacheOps, p.requests, p.requestDuration,
	)
	return p
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (p *Prometheus) OnIteration(_ int, temperature, maxMovement float64, d time.Duration) {
	p.iterations.Inc()
	p.temperature.Set(temperature)
	p.movement.Observe(maxMovement)
	p.iterDuration.Observe(d.Seconds())
}

func (p *Prometheus) OnLayoutStart(context.Context, int, int) {}

func (p *Prometheus) OnLayoutComplete(_ context.Context, _ int, d time.Duration, err error) {
	p.layouts.WithLabelValues(outcome(err)).Inc()
	p.layoutDuration.Observe(d.Seconds())
}

func (p *Prometheus) OnRenderStart(context.Context, []string) {}

func (p *Prometheus) OnRenderComplete(_ context.Context, _ []string, d time.Duration, err error) {
	p.renders.WithLabelValues(outcome(err)).Inc()
	p.renderDuration.Observe(d.Seconds())
}

func (p *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	p.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	p.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (p *Prometheus) OnCacheSet(_ context.Context, keyType string, _ int) {
	p.cacheOps.WithLabelValues(keyType, "set").Inc()
}

func (p *Prometheus) OnRequest(context.Context, string, string) {}

func (p *Prometheus) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	p.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

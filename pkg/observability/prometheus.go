package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "circlepack"

// Prometheus implements every hook interface with Prometheus collectors.
type Prometheus struct {
	solvesStarted *prometheus.CounterVec
	solves        *prometheus.CounterVec
	solveDuration *prometheus.HistogramVec
	radius        *prometheus.GaugeVec

	cacheLookups *prometheus.CounterVec
	cacheBytes   *prometheus.CounterVec

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewPrometheus registers the collectors with reg. Pass
// prometheus.NewRegistry() in tests to avoid duplicate registration.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	f := promauto.With(reg)
	return &Prometheus{
		// solvesStarted counts solves handed to an engine.
		// Labels: backend
		solvesStarted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solver",
			Name:      "started_total",
			Help:      "Solves handed to a backend",
		}, []string{"backend"}),
		// solves counts finished solves.
		// Labels: backend, status
		solves: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solver",
			Name:      "completed_total",
			Help:      "Finished solves by backend and status",
		}, []string{"backend", "status"}),
		solveDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solver",
			Name:      "duration_seconds",
			Help:      "Wall-clock time of solver runs",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		}, []string{"backend", "status"}),
		radius: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "solver",
			Name:      "last_radius",
			Help:      "Radius of the last validated packing per backend",
		}, []string{"backend"}),
		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Result cache lookups by outcome",
		}, []string{"key_type", "outcome"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "written_bytes_total",
			Help:      "Bytes written to the result cache",
		}, []string{"key_type"}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status code",
		}, []string{"method", "route", "code"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (p *Prometheus) OnSolveStart(_ context.Context, backend string, _ int) {
	p.solvesStarted.WithLabelValues(backend).Inc()
}

func (p *Prometheus) OnSolveComplete(_ context.Context, backend, status string, radius float64, d time.Duration) {
	p.solves.WithLabelValues(backend, status).Inc()
	p.solveDuration.WithLabelValues(backend, status).Observe(d.Seconds())
	if radius > 0 {
		p.radius.WithLabelValues(backend).Set(radius)
	}
}

func (p *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	p.cacheLookups.WithLabelValues(keyType, "hit").Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	p.cacheLookups.WithLabelValues(keyType, "miss").Inc()
}

func (p *Prometheus) OnCacheSet(_ context.Context, keyType string, size int) {
	p.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (p *Prometheus) OnRequest(_ context.Context, method, route string, status int, d time.Duration) {
	p.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ SolveHooks = (*Prometheus)(nil)
	_ CacheHooks = (*Prometheus)(nil)
	_ APIHooks   = (*Prometheus)(nil)
)

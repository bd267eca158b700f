// Package api serves the packing pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz          liveness probe
//	GET  /v1/backends      solver backends and their regimes
//	POST /v1/solve         run the pipeline for a JSON request
//	GET  /v1/runs          recent runs, when a store is configured
//	GET  /v1/runs/{id}     one run
//	GET  /metrics          Prometheus metrics
//
// Errors are JSON objects {"code": ..., "message": ...}; the code is the
// pipeline error code and selects the HTTP status.
package api

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/circlepack/pkg/observability"
	"github.com/matzehuels/circlepack/pkg/pipeline"
)

const (
	// DefaultMaxConcurrent bounds solves running at once.
	DefaultMaxConcurrent = 4
	// DefaultMaxN bounds the circle count of a single request.
	DefaultMaxN = 200
)

// Options configures a Server.
type Options struct {
	// MaxConcurrent caps simultaneous solves; further requests get 503 BUSY.
	MaxConcurrent int
	// MaxN rejects larger requests with 400.
	MaxN int
	// MaxTimeLimit caps the requested time limit; zero leaves it unbounded.
	MaxTimeLimit time.Duration
	// Gatherer backs /metrics; nil uses the default registry.
	Gatherer prometheus.Gatherer
	Logger   *log.Logger
}

// Server holds the HTTP handlers.
type Server struct {
	runner *pipeline.Runner
	opts   Options
	slots  chan struct{}
}

// New creates a server around runner.
func New(runner *pipeline.Runner, opts Options) *Server {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = DefaultMaxConcurrent
	}
	if opts.MaxN <= 0 {
		opts.MaxN = DefaultMaxN
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Server{
		runner: runner,
		opts:   opts,
		slots:  make(chan struct{}, opts.MaxConcurrent),
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.healthz)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/backends", s.backends)
		r.Post("/solve", s.solve)
		r.Get("/runs", s.listRuns)
		r.Get("/runs/{id}", s.getRun)
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))
	return r
}

// instrument logs every request and reports it to the API hooks, labelled
// by route pattern rather than raw path.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		observability.API().OnRequest(r.Context(), r.Method, route, status, elapsed)
		s.opts.Logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", elapsed,
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// acquire takes a solve slot without waiting.
func (s *Server) acquire() bool {
	select {
	case s.slots <- struct{}{}:
		return true
	default:
		return false
	}
}

func (s *Server) release() { <-s.slots }

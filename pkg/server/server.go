// Package server exposes the layout pipeline over HTTP.
//
// # Routes
//
//	POST /v1/layouts                 lay out a graph, store the run, return it
//	GET  /v1/layouts                 list stored runs, newest first
//	GET  /v1/layouts/{id}            fetch a stored run with its layout
//	GET  /v1/layouts/{id}/{format}   render a stored layout (svg, png, dot)
//	GET  /healthz                    liveness
//	GET  /metrics                    Prometheus metrics
//
// Every request runs its own engine; the server shares only the runner's
// cache and the run store between requests.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/impred/pkg/pipeline"
	"github.com/matzehuels/impred/pkg/store"
)

// Defaults of Options.
const (
	DefaultMaxBodyBytes   = 10 << 20
	DefaultMaxNodes       = 5000
	DefaultRequestTimeout = 2 * time.Minute
	DefaultListLimit      = 50
)

// Options configures a Server. Zero values take the defaults above.
type Options struct {
	Runner *pipeline.Runner
	Store  store.Store
	Logger *log.Logger

	// Gatherer serves /metrics. Nil uses prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer

	MaxBodyBytes   int64
	MaxNodes       int
	RequestTimeout time.Duration
}

// Server handles layout requests.
type Server struct {
	runner   *pipeline.Runner
	store    store.Store
	logger   *log.Logger
	gatherer prometheus.Gatherer

	maxBody  int64
	maxNodes int
	timeout  time.Duration
}

// New creates a server. A nil Runner gets an uncached one and a nil Store
// an in-memory one.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	runner := opts.Runner
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	st := opts.Store
	if st == nil {
		st = store.NewMemoryStore()
	}
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	s := &Server{
		runner:   runner,
		store:    st,
		logger:   logger,
		gatherer: gatherer,
		maxBody:  opts.MaxBodyBytes,
		maxNodes: opts.MaxNodes,
		timeout:  opts.RequestTimeout,
	}
	if s.maxBody <= 0 {
		s.maxBody = DefaultMaxBodyBytes
	}
	if s.maxNodes <= 0 {
		s.maxNodes = DefaultMaxNodes
	}
	if s.timeout <= 0 {
		s.timeout = DefaultRequestTimeout
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1/layouts", func(r chi.Router) {
		r.Post("/", s.createLayout)
		r.Get("/", s.listLayouts)
		r.Get("/{id}", s.getLayout)
		r.Get("/{id}/{format}", s.renderLayout)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

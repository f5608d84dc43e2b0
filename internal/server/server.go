// Package server exposes Sankey layout computation over HTTP.
//
// Routes:
//
//	POST /v1/layout  compute a layout from {"nodes","links","options"}
//	GET  /healthz    liveness probe with build info
//	GET  /metrics    Prometheus metrics
//
// Errors use the envelope {"error": "...", "code": "INVALID_VALUE"}.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/sankey/pkg/buildinfo"
	"github.com/matzehuels/sankey/pkg/pipeline"
)

// DefaultMaxBodyBytes caps request bodies when Options leaves it unset.
const DefaultMaxBodyBytes = 4 << 20

// Options configures a Server.
type Options struct {
	// Runner computes layouts. Nil means an uncached runner.
	Runner *pipeline.Runner
	// Logger receives one line per request. Nil discards.
	Logger *log.Logger
	// Gatherer backs /metrics. Nil means prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
	// Defaults seed the options of every request.
	Defaults pipeline.Options
	// MaxBodyBytes limits request bodies; zero means DefaultMaxBodyBytes.
	MaxBodyBytes int64
}

// Server is the HTTP API. Its defaults can be swapped at runtime with
// Reconfigure, which makes config hot reload possible without restarting.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	router chi.Router

	mu       sync.RWMutex
	defaults pipeline.Options
	maxBody  int64
}

// New builds the router.
func New(opts Options) *Server {
	if opts.Runner == nil {
		opts.Runner = pipeline.NewRunner(nil, nil, nil)
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	s := &Server{
		runner: opts.Runner,
		logger: opts.Logger,
	}
	s.Reconfigure(opts.Defaults, opts.MaxBodyBytes)

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found", Code: "NOT_FOUND"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed", Code: "METHOD_NOT_ALLOWED"})
	})

	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.layout)
	})

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Reconfigure replaces the request defaults and the body limit.
func (s *Server) Reconfigure(defaults pipeline.Options, maxBody int64) {
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	defaults.Logger = nil
	defaults.Refresh = false
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaults = defaults
	s.maxBody = maxBody
}

func (s *Server) settings() (pipeline.Options, int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaults, s.maxBody
}

type healthResponse struct {
	Status string `json:"status"`
	buildinfo.Info
}

// GET /healthz
func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Info: buildinfo.Get()})
}

// ListenAndServe serves h on addr until ctx is cancelled, then shuts down
// gracefully.
func ListenAndServe(ctx context.Context, addr string, h http.Handler, logger *log.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

// Package server exposes the layout pipeline over HTTP.
//
// Routes:
//
//	GET    /healthz                      liveness probe
//	GET    /metrics                      Prometheus metrics (when configured)
//	POST   /v1/layouts                   compute a layout, optionally saving it
//	GET    /v1/layouts                   list saved layouts, newest first
//	GET    /v1/layouts/{id}              fetch a saved layout
//	GET    /v1/layouts/{id}/render       render a saved layout (?format=svg|png|dot|json)
//	DELETE /v1/layouts/{id}              delete a saved layout
//
// Errors are returned as {"error": {"code": ..., "message": ...}} with the
// HTTP status derived from the error code.
package server

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/breadthfirst/pkg/pipeline"
	"github.com/matzehuels/breadthfirst/pkg/store"
)

// DefaultMaxBodyBytes limits request bodies when Config.MaxBodyBytes is zero.
const DefaultMaxBodyBytes = 8 << 20

// DefaultRequestTimeout bounds request handling when Config.RequestTimeout is zero.
const DefaultRequestTimeout = 60 * time.Second

// Config wires the server's dependencies.
type Config struct {
	Runner  *pipeline.Runner
	Store   store.Store
	Logger  *log.Logger
	Metrics http.Handler // served on /metrics when non-nil

	// Defaults are the options a request body is decoded over.
	Defaults pipeline.Options

	MaxBodyBytes   int64
	RequestTimeout time.Duration
	Version        string
}

// Server is the HTTP API.
type Server struct {
	runner   *pipeline.Runner
	store    store.Store
	logger   *log.Logger
	defaults pipeline.Options
	maxBody  int64
	version  string

	router chi.Router
}

// New builds the server and its routes.
func New(cfg Config) *Server {
	s := &Server{
		runner:   cfg.Runner,
		store:    cfg.Store,
		logger:   cfg.Logger,
		defaults: cfg.Defaults,
		maxBody:  cfg.MaxBodyBytes,
		version:  cfg.Version,
	}
	if s.runner == nil {
		s.runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if s.store == nil {
		s.store = store.NewMemoryStore()
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.maxBody <= 0 {
		s.maxBody = DefaultMaxBodyBytes
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	r.Get("/healthz", s.handleHealth)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Route("/v1/layouts", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Get("/", s.handleList)
		r.Route("/{id}", func(r chi.Router) {
			r.Use(validateID)
			r.Get("/", s.handleGet)
			r.Delete("/", s.handleDelete)
			r.Get("/render", s.handleRender)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, errNotFound("no route for %s %s", r.Method, r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody(r, "METHOD_NOT_ALLOWED", "method not allowed"))
	})

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": s.version})
}

// defaultOptions returns a copy of the configured defaults that a request
// body can be decoded into without touching the shared values.
func (s *Server) defaultOptions() pipeline.Options {
	o := s.defaults
	if o.AvoidOverlap != nil {
		v := *o.AvoidOverlap
		o.AvoidOverlap = &v
	}
	if o.BoundingBox != nil {
		bb := *o.BoundingBox
		o.BoundingBox = &bb
	}
	o.Roots = slices.Clone(o.Roots)
	o.Formats = slices.Clone(o.Formats)
	return o
}

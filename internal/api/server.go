// Package api serves the layout pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz        build information
//	POST /v1/layout      lay out a graph, optionally rendering snapshots
//	POST /v1/discretise  slice a graph by snapshot times or intervals
//	POST /v1/render      render snapshots of a finished layout
//
// Request and response bodies are JSON in the format of [graph.Graph] and
// [graph.Layout]. Every successful response carries a fresh run id, also
// returned in the X-Run-ID header.
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/matzehuels/dynalayout/pkg/pipeline"
)

const (
	// DefaultTimeout bounds a single /v1 request, layout included.
	DefaultTimeout = 2 * time.Minute

	// DefaultMaxBodyBytes bounds request bodies.
	DefaultMaxBodyBytes = 32 << 20

	shutdownTimeout   = 15 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// Options configures a Server.
type Options struct {
	Logger *log.Logger

	// Timeout bounds each /v1 request. Zero means DefaultTimeout.
	Timeout time.Duration

	// MaxBodyBytes bounds request bodies. Zero means DefaultMaxBodyBytes.
	MaxBodyBytes int64

	// AllowedOrigins lists CORS origins. Empty allows any origin.
	AllowedOrigins []string
}

// Server is the HTTP front end of a pipeline runner. The runner is shared
// by all requests.
type Server struct {
	runner *pipeline.Runner
	opts   Options
	logger *log.Logger
}

// New creates a server around runner.
func New(runner *pipeline.Runner, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	return &Server{runner: runner, opts: opts, logger: opts.Logger}
}

// Router returns the HTTP handler with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "X-Run-ID"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(s.opts.Timeout))
		r.Use(middleware.RequestSize(s.opts.MaxBodyBytes))
		r.Use(middleware.AllowContentType("application/json"))

		r.Post("/layout", s.handleLayout)
		r.Post("/discretise", s.handleDiscretise)
		r.Post("/render", s.handleRender)
	})

	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully, letting in-flight requests finish.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "addr", addr)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

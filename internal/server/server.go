// Package server implements the stacktree render server.
//
// The server exposes the pipeline over HTTP and keeps retained scenes:
// surfaces that are updated by keyed reconciliation instead of being redrawn,
// so node identities (and their data-id attributes) persist across updates.
//
// # Routes
//
//	GET    /healthz               liveness probe
//	GET    /metrics               Prometheus metrics
//	GET    /v1/render             render the built-in tree, or ?tree=<file> under the data dir
//	POST   /v1/render             render the tree document in the body
//	POST   /v1/layout             lay out the tree document in the body, returns the layout JSON
//	GET    /v1/scenes             list retained scenes
//	POST   /v1/scenes             create a retained scene from the body
//	GET    /v1/scenes/{id}        current drawing (?format=svg|png|json)
//	PUT    /v1/scenes/{id}        relayout and reconcile with the body, returns the diff
//	DELETE /v1/scenes/{id}        drop a scene
//
// Render requests take their options from the query string: format, viz,
// style, title, fit, strict and scale.
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/stacktree/pkg/pipeline"
)

// Defaults for [Config].
const (
	DefaultAddr         = ":8080"
	DefaultMaxBodyBytes = 4 << 20
	DefaultMaxScenes    = 1024
	shutdownTimeout     = 10 * time.Second
)

// Config configures a [Server].
type Config struct {
	Addr string

	// DataDir, when set, lets GET /v1/render read tree files below it.
	DataDir string

	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64

	// MaxScenes caps the number of retained scenes; zero means no limit.
	MaxScenes int

	// Options are the base pipeline options; query parameters override them.
	Options pipeline.Options

	Logger *log.Logger

	// Registry receives the server's metrics. Nil means a fresh registry.
	Registry *prometheus.Registry
}

// Server serves the render API.
type Server struct {
	cfg     Config
	runner  *pipeline.Runner
	scenes  *sceneStore
	metrics *Metrics
	logger  *log.Logger
	handler http.Handler
}

// New creates a server around runner. It validates cfg.Options and installs
// the Prometheus hooks process-wide.
func New(runner *pipeline.Runner, cfg Config) (*Server, error) {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}
	check := cfg.Options
	if err := check.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	s := &Server{
		cfg:     cfg,
		runner:  runner,
		metrics: NewMetrics(cfg.Registry),
		logger:  cfg.Logger,
	}
	s.scenes = newSceneStore(cfg.MaxScenes, s.metrics.sceneCount)
	s.metrics.Install()
	s.handler = s.routes()
	return s, nil
}

// Handler returns the HTTP handler with all routes and middleware.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.withLogging)
	r.Use(s.withRecovery)

	r.Get("/healthz", handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.cfg.Registry, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/render", s.handleRenderGet)
		r.Post("/render", s.handleRenderPost)
		r.Post("/layout", s.handleLayout)

		r.Route("/scenes", func(r chi.Router) {
			r.Get("/", s.handleSceneList)
			r.Post("/", s.handleSceneCreate)
			r.Get("/{id}", s.handleSceneGet)
			r.Put("/{id}", s.handleSceneUpdate)
			r.Delete("/{id}", s.handleSceneDelete)
		})
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("server stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

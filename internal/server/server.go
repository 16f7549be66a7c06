// Package server exposes the template graph model over REST for the
// orchestrating host: template upload and validation, topological order,
// dependency edges, and per-session execution readiness.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/me/tomoflow/internal/config"
	"github.com/me/tomoflow/internal/parser"
	"github.com/me/tomoflow/internal/schema"
	"github.com/me/tomoflow/internal/store"
)

// Server is the tomoflow REST API server.
type Server struct {
	router    chi.Router
	logger    *slog.Logger
	config    config.ServerConfig
	startTime time.Time
	parser    *parser.Parser
	validator *parser.Validator
	registry  *schema.Registry
	store     store.Store
}

// New creates a Server with all routes registered.
func New(cfg config.ServerConfig, st store.Store, registry *schema.Registry, logger *slog.Logger) *Server {
	p := parser.New(logger, registry)
	s := &Server{
		router:    chi.NewRouter(),
		logger:    logger.With("component", "server"),
		config:    cfg,
		startTime: time.Now(),
		parser:    p,
		validator: parser.NewValidator(p, logger),
		registry:  registry,
		store:     st,
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/templates", func(r chi.Router) {
			r.Get("/", s.handleListTemplates)
			r.Post("/", s.handleCreateTemplate)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetTemplate)
				r.Delete("/", s.handleDeleteTemplate)
				r.Post("/validate", s.handleValidateTemplate)
				r.Get("/order", s.handleGetOrder)
				r.Get("/graph", s.handleGetGraph)
			})
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Post("/complete", s.handleCompleteSteps)
				r.Get("/ready", s.handleGetReady)
			})
		})
	})
}

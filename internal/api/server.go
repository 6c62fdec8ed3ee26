package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/doclinks/internal/config"
	"github.com/dgallion1/doclinks/internal/discovery"
	"github.com/dgallion1/doclinks/internal/fetch"
	"github.com/dgallion1/doclinks/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for doclinks.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	local        *discovery.Local
	stats        *fetch.Stats
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. local may be nil, which
// disables the local discovery endpoint.
func NewServer(orch *pipeline.Orchestrator, local *discovery.Local, stats *fetch.Stats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		local:        local,
		stats:        stats,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/discover/local", s.handleDiscoverLocal)
		r.Post("/api/discover/remote", s.handleDiscoverRemote)
		r.Get("/api/discover/{jobID}", s.handleJobStatus)
		r.Get("/api/stats/fetch", s.handleFetchStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

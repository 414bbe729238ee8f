package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/docx2dita/internal/config"
	"github.com/dgallion1/docx2dita/internal/pipeline"
)

// Server is the HTTP API server for docx2dita.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	log          *slog.Logger
	cfg          config.Config
	settings     config.Settings
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, log *slog.Logger, cfg config.Config, settings config.Settings) *Server {
	s := &Server{
		orchestrator: orch,
		log:          log,
		cfg:          cfg,
		settings:     settings,
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

		r.Post("/api/convert", s.handleConvert)
		r.Get("/api/convert/{jobID}/status", s.handleStatus)
		r.Get("/api/convert/{jobID}/styles", s.handleGetStyles)
		r.Post("/api/convert/{jobID}/styles", s.handleUpdateStyles)
		r.Get("/api/convert/{jobID}/archive", s.handleArchive)
		r.Get("/api/convert/{jobID}/report", s.handleReport)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

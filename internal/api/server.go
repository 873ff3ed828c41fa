package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/secpolicy/internal/config"
	"github.com/dgallion1/secpolicy/internal/pipeline"
	"github.com/dgallion1/secpolicy/internal/schema"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for secpolicy.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	schema       *schema.Schema
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, s *schema.Schema, log *slog.Logger, cfg config.Config) *Server {
	srv := &Server{
		orchestrator: orch,
		schema:       s,
		log:          log,
		cfg:          cfg,
	}
	srv.setupRoutes()
	return srv
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

		r.Post("/api/parse", s.handleParse)

		r.Post("/api/ingest", s.handleIngest)
		r.Get("/api/ingest/{jobID}", s.handleIngestStatus)
		r.Get("/api/ingest/{jobID}/result", s.handleIngestResult)
		r.Get("/api/ingest/{jobID}/tables.xlsx", s.handleIngestWorkbook)

		r.Get("/api/documents", s.handleListDocuments)
		r.Get("/api/documents/{docID}", s.handleGetDocument)

		r.Get("/api/stats", s.handleStats)
		r.Get("/api/schema", s.handleSchema)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

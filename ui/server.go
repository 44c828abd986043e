package ui

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/igordot/SuMu/app"
	"github.com/igordot/SuMu/internal"
	"github.com/igordot/SuMu/internal/config"
	"github.com/igordot/SuMu/internal/errors"
	"github.com/igordot/SuMu/ports"
)

// Server exposes the analysis workflow over HTTP.
type Server struct {
	cohorts    *app.CohortService
	summarizer *app.Summarizer
	fitters    map[string]ports.ModelFitter
	config     *config.Config
	logger     *internal.Logger
}

// NewServer wires the HTTP surface.
func NewServer(cohorts *app.CohortService, summarizer *app.Summarizer, fitters map[string]ports.ModelFitter, cfg *config.Config, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Server{
		cohorts:    cohorts,
		summarizer: summarizer,
		fitters:    fitters,
		config:     cfg,
		logger:     logger,
	}
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Route("/cohorts/{cohort}", func(r chi.Router) {
		r.Get("/summary", s.handleCohortSummary)
		r.Get("/km", s.handleKaplanMeier)
		r.Get("/report", s.handleReport)
		r.Post("/fit", s.handleFit)
		r.Delete("/snapshot", s.handleInvalidate)
	})
	return r
}

// ListenAndServe runs the server on the configured port.
func (s *Server) ListenAndServe() error {
	addr := ":" + s.config.Server.Port
	s.logger.Info("HTTP API listening on %s", addr)
	return http.ListenAndServe(addr, s.Router())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response: %v", err)
	}
}

// writeError maps the error taxonomy onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.CodeRetrieval:
		status = http.StatusBadGateway
	case errors.CodeSchema, errors.CodeKeyMismatch, errors.CodeFormulaSubstitution, errors.CodeInvalidInput:
		status = http.StatusBadRequest
	case errors.CodeFitting:
		status = http.StatusUnprocessableEntity
	}
	s.logger.Error("request failed (%s): %v", errors.GetCode(err), err)
	s.writeJSON(w, status, map[string]string{
		"code":  errors.GetCode(err),
		"error": err.Error(),
	})
}

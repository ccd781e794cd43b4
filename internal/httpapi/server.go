// Package httpapi exposes the query pipeline over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"agribot/internal/agents"
	apperrors "agribot/internal/common/errors"
	"agribot/internal/common/logger"
	"agribot/internal/models"
	"agribot/internal/orchestrator"
	"agribot/internal/persistence"
)

// Pinger checks one backing dependency for the health report.
type Pinger func(ctx context.Context) error

type Server struct {
	orc    *orchestrator.Orchestrator
	deps   map[string]Pinger
	logger logger.Logger
}

func NewServer(orc *orchestrator.Orchestrator, log logger.Logger) *Server {
	return &Server{
		orc:    orc,
		deps:   map[string]Pinger{},
		logger: log.With(map[string]interface{}{"component": "httpapi"}),
	}
}

// AddDependency registers an optional backing service for the health report.
// Dependencies are advisory: a failing ping is reported but does not change
// the overall status, because every dependency here degrades gracefully.
func (s *Server) AddDependency(name string, ping Pinger) {
	s.deps[name] = ping
}

// Router builds the full route table.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/query", s.handleQuery)
	mux.HandleFunc("POST /api/v1/feedback", s.handleFeedback)
	mux.HandleFunc("GET /api/v1/session/{id}/history", s.handleHistory)
	mux.HandleFunc("DELETE /api/v1/session/{id}", s.handleClearSession)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req orchestrator.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "request body must be JSON")
		return
	}

	resp, err := s.orc.Handle(r.Context(), &req)
	if err != nil {
		var stdErr *apperrors.StandardError
		if errors.As(err, &stdErr) && stdErr.Code == apperrors.ErrCodeEmptyQuery {
			s.writeError(w, http.StatusBadRequest, string(stdErr.Code), stdErr.Message)
			return
		}
		s.logger.Error("query handling failed", map[string]interface{}{"error": err.Error()})
		s.writeError(w, http.StatusInternalServerError, "INTERNAL", "query could not be processed")
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var fb persistence.Feedback
	if err := json.NewDecoder(r.Body).Decode(&fb); err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "request body must be JSON")
		return
	}
	if fb.QueryID == "" || fb.Rating < 1 || fb.Rating > 5 {
		s.writeError(w, http.StatusBadRequest, "INVALID_FEEDBACK", "query_id and a rating between 1 and 5 are required")
		return
	}

	if err := s.orc.Feedback(r.Context(), &fb); err != nil {
		s.writeError(w, http.StatusInternalServerError, "FEEDBACK_FAILED", "feedback could not be recorded")
		return
	}
	s.writeJSON(w, http.StatusAccepted, map[string]string{"status": "recorded"})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sc, err := s.orc.History(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "SESSION_UNAVAILABLE", "session history could not be read")
		return
	}
	s.writeJSON(w, http.StatusOK, sc)
}

func (s *Server) handleClearSession(w http.ResponseWriter, r *http.Request) {
	if err := s.orc.ClearSession(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, http.StatusInternalServerError, "SESSION_UNAVAILABLE", "session could not be cleared")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type healthResponse struct {
	Status       string                            `json:"status"`
	Agents       map[models.Category]agents.Status `json:"agents"`
	Dependencies map[string]string                 `json:"dependencies,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	overall, perAgent := s.orc.Health(r.Context())

	var deps map[string]string
	if len(s.deps) > 0 {
		deps = make(map[string]string, len(s.deps))
		for name, ping := range s.deps {
			pingCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			if err := ping(pingCtx); err != nil {
				deps[name] = "down"
				s.logger.Warn("dependency ping failed", map[string]interface{}{
					"dependency": name,
					"error":      err.Error(),
				})
			} else {
				deps[name] = "ok"
			}
			cancel()
		}
	}

	status := http.StatusOK
	if overall == agents.StateUnhealthy {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, healthResponse{
		Status:       string(overall),
		Agents:       perAgent,
		Dependencies: deps,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encoding failed", map[string]interface{}{"error": err.Error()})
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	s.writeJSON(w, status, map[string]string{
		"code":    code,
		"message": message,
	})
}

// internal/server/handlers.go
package server

import (
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/officialprakashkumarsingh/render/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAgent accepts {"query": ...} and runs one full agent loop, replying
// with {"answer": ...} on success or {"error": ...} and a server-error status
// on any terminal failure.
func (s *Server) handleAgent(w http.ResponseWriter, r *http.Request) {
	if s.limiter != nil && !s.limiter.Allow() {
		s.writeJSON(w, http.StatusTooManyRequests, schemas.AgentResponse{Error: "too many requests"})
		return
	}

	var req schemas.AgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, schemas.AgentResponse{Error: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		s.writeJSON(w, http.StatusBadRequest, schemas.AgentResponse{Error: "query must not be empty"})
		return
	}

	if s.sem != nil {
		if err := s.sem.Acquire(r.Context(), 1); err != nil {
			s.writeJSON(w, http.StatusServiceUnavailable, schemas.AgentResponse{Error: "server is shutting down or request cancelled"})
			return
		}
		defer s.sem.Release(1)
	}

	answer, err := s.runner.Run(r.Context(), req.Query, s.baseURL(r))
	if err != nil {
		s.logger.Error("Agent request failed.", zap.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, schemas.AgentResponse{Error: err.Error()})
		return
	}

	s.writeJSON(w, http.StatusOK, schemas.AgentResponse{Answer: answer})
}

// baseURL derives the externally visible address used in screenshot
// observations, preferring the configured override when the service sits
// behind a proxy.
func (s *Server) baseURL(r *http.Request) string {
	if s.cfg.PublicBaseURL != "" {
		return strings.TrimRight(s.cfg.PublicBaseURL, "/")
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed to encode response.", zap.Error(err))
	}
}

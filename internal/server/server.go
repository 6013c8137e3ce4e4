// Package server exposes the assistant over HTTP: one JSON endpoint for
// conversation turns plus health probing. Metrics are served separately.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	apperrors "storeassist/internal/common/errors"
	"storeassist/internal/common/logger"
	"storeassist/internal/common/observability"
	"storeassist/internal/models"
)

// TurnHandler runs one conversation turn.
type TurnHandler interface {
	Handle(ctx context.Context, req models.TurnRequest) (models.TurnResponse, error)
}

// Server is the public HTTP surface.
type Server struct {
	turns TurnHandler
	obs   *observability.Observability
	log   logger.Logger
}

func New(turns TurnHandler, obs *observability.Observability, log logger.Logger) *Server {
	return &Server{turns: turns, obs: obs, log: log}
}

// Handler returns the route mux for the public port.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/messages", s.handleMessage)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req models.TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	start := time.Now()
	resp, err := s.turns.Handle(r.Context(), req)
	if err != nil {
		var stdErr *apperrors.StandardError
		if errors.As(err, &stdErr) && stdErr.Code == apperrors.ErrCodeMalformedInput {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": stdErr.Message})
			return
		}
		s.log.Error("turn failed", map[string]interface{}{
			"tenant": req.Tenant, "error": err.Error(),
		})
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	if s.obs != nil {
		s.obs.RecordTurn(r.Context(), resp.Mode, resp.Intent)
		s.obs.RecordTurnDuration(r.Context(), time.Since(start), resp.Mode)
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/MeKo-Tech/lumo/internal/pipeline"
)

// healthHandler reports liveness and pipeline counters. A structural
// pipeline error (wrong model wired up) flips the status to degraded so
// operators can tell it apart from transient frame hiccups.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	mem := pipeline.GetMemStats()
	resp := HealthResponse{
		Status: "healthy",
		Time:   time.Now().UTC().Format(time.RFC3339),
		State:  s.pipe.State().String(),
		Stats:  s.pipe.Stats(),
		Mem:    &mem,
	}
	status := http.StatusOK
	if err := s.pipe.Err(); err != nil {
		resp.Status = "degraded"
		resp.Structural = err.Error()
		status = http.StatusServiceUnavailable
	}

	s.writeJSON(w, resp, status)
}

// predictionHandler returns the latest prediction, 404 before the first.
func (s *Server) predictionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	latest := s.Latest()
	if latest == nil {
		s.writeError(w, "no prediction yet", http.StatusNotFound)
		return
	}
	s.writeJSON(w, latest, http.StatusOK)
}

// modelHandler exposes the loaded model's shapes and pipeline settings, the
// init-time discovery made visible.
func (s *Server) modelHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, s.pipe.Info(), http.StatusOK)
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, msg string, status int) {
	s.writeJSON(w, ErrorResponse{Error: msg}, status)
}

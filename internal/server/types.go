// Package server exposes the live pipeline's predictions over HTTP: a JSON
// endpoint for the latest prediction, a websocket stream, health, model info,
// and Prometheus metrics. The server holds only the most recent prediction;
// only the pipeline worker writes it, handlers read.
package server

import (
	"sync/atomic"
	"time"

	"github.com/MeKo-Tech/lumo/internal/decode"
	"github.com/MeKo-Tech/lumo/internal/pipeline"
)

// Pipeline is the view of the classifier the server needs.
type Pipeline interface {
	Stats() pipeline.Stats
	State() pipeline.State
	Err() error
	Info() map[string]interface{}
}

// Config holds server configuration.
type Config struct {
	Host            string
	Port            int
	CORSOrigin      string
	TimeoutSec      int
	ShutdownTimeout int
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	cfg    Config
	pipe   Pipeline
	latest atomic.Pointer[PredictionResponse]
	hub    *hub
}

// HealthResponse reports liveness plus pipeline counters.
type HealthResponse struct {
	Status     string             `json:"status"`
	Time       string             `json:"time"`
	State      string             `json:"pipeline_state"`
	Structural string             `json:"structural_error,omitempty"`
	Stats      pipeline.Stats     `json:"stats"`
	Mem        *pipeline.MemStats `json:"mem,omitempty"`
}

// PredictionResponse is the JSON shape of one prediction.
type PredictionResponse struct {
	Index      int     `json:"index"`
	Label      string  `json:"label,omitempty"`
	Confidence float32 `json:"confidence"`
	FrameSeq   uint64  `json:"frame_seq"`
	ElapsedMs  float64 `json:"elapsed_ms"`
	Received   string  `json:"received"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// New creates a server over an already-built pipeline.
func New(cfg Config, pipe Pipeline) *Server {
	return &Server{
		cfg:  cfg,
		pipe: pipe,
		hub:  newHub(),
	}
}

// Publish records a prediction as the latest value and pushes it to stream
// subscribers. It is the pipeline's Sink: latest-value-wins, never blocking.
func (s *Server) Publish(pred decode.Prediction) {
	resp := toResponse(pred)
	s.latest.Store(&resp)
	predictionsPublished.Inc()
	s.hub.broadcast(resp)
}

// Latest returns the most recent prediction, nil before the first.
func (s *Server) Latest() *PredictionResponse {
	return s.latest.Load()
}

func toResponse(pred decode.Prediction) PredictionResponse {
	return PredictionResponse{
		Index:      pred.Index,
		Label:      pred.Label,
		Confidence: pred.Confidence,
		FrameSeq:   pred.FrameSeq,
		ElapsedMs:  float64(pred.Elapsed) / float64(time.Millisecond),
		Received:   time.Now().UTC().Format(time.RFC3339Nano),
	}
}

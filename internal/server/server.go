package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler builds the route table with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.withMiddleware(s.healthHandler, "/healthz"))
	mux.HandleFunc("/api/v1/prediction", s.withMiddleware(s.predictionHandler, "/api/v1/prediction"))
	mux.HandleFunc("/api/v1/model", s.withMiddleware(s.modelHandler, "/api/v1/model"))
	mux.HandleFunc("/ws", s.streamHandler)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Run serves until ctx is canceled, then shuts down gracefully: the listener
// closes first so no new requests arrive, live websocket clients are closed,
// and in-flight requests get ShutdownTimeout to finish.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  time.Duration(s.cfg.TimeoutSec) * time.Second,
		WriteTimeout: time.Duration(s.cfg.TimeoutSec) * time.Second,
	}
	// The websocket endpoint holds connections open past WriteTimeout.
	httpSrv.WriteTimeout = 0

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("server shutting down")
	s.hub.closeAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(s.cfg.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

// Package httpapi exposes sync runs and status over HTTP for the portal.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tablekeep/loresync/internal/core/ports/driven"
	"github.com/tablekeep/loresync/internal/core/ports/driving"
	"github.com/tablekeep/loresync/internal/logger"
)

// Server serves the sync API.
type Server struct {
	sync    driving.SyncService
	tasks   driven.SchedulerStore
	handler http.Handler
	srv     *http.Server
}

// NewServer creates the API server. The scheduler store may be nil; the
// status endpoint then omits scheduler state.
func NewServer(listen string, syncService driving.SyncService, tasks driven.SchedulerStore) *Server {
	s := &Server{
		sync:  syncService,
		tasks: tasks,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/sync", s.handleSync)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	s.handler = mux

	// A sync request blocks until the run completes, so the write timeout
	// has to cover a full paced run, not a normal response.
	s.srv = &http.Server{
		Addr:              listen,
		Handler:           mux,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// Handler returns the route handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens and serves until Shutdown is called.
func (s *Server) Start() error {
	logger.Info("HTTP API listening on %s", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

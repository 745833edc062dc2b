// Package server provides the HTTP server for the mirrorpaint drawing session.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ayusman/mirrorpaint/internal/app"
	"github.com/ayusman/mirrorpaint/internal/logging"
	"github.com/ayusman/mirrorpaint/internal/server/api"
	"github.com/ayusman/mirrorpaint/internal/store"
)

// ShutdownTimeout bounds how long Run waits for open requests on shutdown.
const ShutdownTimeout = 5 * time.Second

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	// Canvas receives clear, export, resize and detection commands.
	Canvas api.Canvas
	// Hub feeds the MJPEG stream and the state websocket.
	Hub     *app.Hub
	Metrics http.Handler
	Logger  *slog.Logger
}

// Server represents the HTTP server for the mirrorpaint application.
type Server struct {
	config Config
	mux    *http.ServeMux
	logger *slog.Logger
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.Logger == nil {
		config.Logger = logging.NewNop()
	}
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		logger: config.Logger,
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil {
		s.mux.Handle("/api/exports", api.NewExportsHandler(s.config.Store))
		s.mux.Handle("/api/exports/", api.NewExportsHandler(s.config.Store))
	}

	if s.config.Canvas != nil {
		s.mux.Handle("/api/canvas/", api.NewCanvasHandler(s.config.Canvas))
	}

	if s.config.Hub != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Hub))
		s.mux.Handle("/api/state", NewStateHandler(s.config.Hub, s.logger))
	}

	if s.config.Metrics != nil {
		s.mux.Handle("/metrics", s.config.Metrics)
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.Canvas != nil {
		response["detection"] = s.config.Canvas.IsEnabled()
	}
	if s.config.Hub != nil {
		response["clients"] = s.config.Hub.Subscribers()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", addr, err)

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("graceful shutdown incomplete", "timeout", ShutdownTimeout, "error", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("close server: %w", err)
			}
		}
		s.logger.Info("http server stopped")
		return nil
	}
}

// Package web serves the dashboard: a JSON API over the studio service, a
// websocket hub for live run events, and the static frontend bundle.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/linelab/linelab/pkg/config"
	"github.com/linelab/linelab/pkg/database"
	"github.com/linelab/linelab/pkg/logger"
	"github.com/linelab/linelab/pkg/studio"
)

// Server is the dashboard HTTP server
type Server struct {
	config config.WebConfig
	logger *logger.Logger
	server *http.Server
	hub    *WebSocketHub
	api    *API
	addr   string
	mu     sync.RWMutex
}

// NewServer creates a new web server instance. repo may be nil when the
// database is disabled; the runs endpoint then serves an empty history.
func NewServer(cfg config.WebConfig, service *studio.Service, repo *database.RunRepository, defaults studio.AnalogDefaults, log *logger.Logger) *Server {
	return &Server{
		config: cfg,
		logger: log,
		hub:    NewWebSocketHub(log),
		api:    NewAPI(service, repo, defaults, log),
	}
}

// routes builds the request mux: health, the JSON API, the websocket
// endpoint, and the frontend.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)

	mux.HandleFunc("/api/status", s.api.HandleStatus)
	mux.HandleFunc("/api/schemes", s.api.HandleSchemes)
	mux.HandleFunc("/api/encode", s.api.HandleEncode)
	mux.HandleFunc("/api/decode", s.api.HandleDecode)
	mux.HandleFunc("/api/analog", s.api.HandleAnalog)
	mux.HandleFunc("/api/runs", s.api.HandleRuns)

	mux.Handle("/ws", s.hub.Handler())

	s.mountFrontend(mux)
	return mux
}

// mountFrontend serves the dashboard bundle: an embedded build when
// compiled in, otherwise frontend/dist on disk with SPA fallback. Neither
// being present just means no UI; the API still works.
func (s *Server) mountFrontend(mux *http.ServeMux) {
	const staticDir = "frontend/dist"

	if fsys, err := embeddedStaticFS(); err == nil && fsys != nil {
		s.logger.Info("Serving embedded frontend assets")
		mux.Handle("/", http.FileServer(fsys))
		return
	}

	fi, err := os.Stat(staticDir)
	if err != nil || !fi.IsDir() {
		s.logger.Info("No static frontend assets found; SPA not served",
			logger.String("dir", staticDir))
		return
	}

	s.logger.Info("Serving static frontend assets", logger.String("dir", staticDir))
	index := filepath.Join(staticDir, "index.html")
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		reqPath := filepath.Clean(r.URL.Path)
		if reqPath == "/" {
			http.ServeFile(w, r, index)
			return
		}
		if len(reqPath) > 0 && reqPath[0] == '/' {
			reqPath = reqPath[1:]
		}
		fullPath := filepath.Join(staticDir, reqPath)
		if fi, err := os.Stat(fullPath); err == nil && !fi.IsDir() {
			http.ServeFile(w, r, fullPath)
			return
		}
		// SPA routes resolve client-side
		http.ServeFile(w, r, index)
	})
}

// Start runs the hub and the HTTP server until ctx is cancelled, then
// shuts down gracefully. Binding port 0 picks a free port; GetAddr
// reports the one chosen.
func (s *Server) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.logger.Info("Web server is disabled")
		return nil
	}

	go s.hub.Run(ctx)

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Host, s.config.Port),
		Handler:      s.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	listener, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	s.mu.Lock()
	s.addr = listener.Addr().String()
	s.mu.Unlock()

	s.logger.Info("Starting web server", logger.String("address", s.addr))

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down web server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
		return ctx.Err()
	case err := <-errChan:
		return err
	}
}

// GetAddr returns the address the server is listening on
func (s *Server) GetAddr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

// GetHub returns the WebSocket hub
func (s *Server) GetHub() *WebSocketHub {
	return s.hub
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "linelab",
		"time":    time.Now().Unix(),
	}); err != nil {
		s.logger.Warn("Failed to encode health response", logger.Error(err))
	}
}

// Package api exposes the running player over HTTP: a status snapshot,
// transport control and a websocket stream of player events.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"playerkit/internal/core"
	"playerkit/internal/plugins/eventstream"

	"go.uber.org/zap"
)

// StateProvider returns the latest player snapshot
type StateProvider interface {
	Snapshot() eventstream.Snapshot
}

// Server provides HTTP API endpoints for the player
type Server struct {
	state      StateProvider
	controller Controller
	hub        *Hub
	logger     *zap.Logger
	mux        *http.ServeMux
	server     *http.Server
}

// NewServer creates a new API server
func NewServer(state StateProvider, controller Controller, hub *Hub, logger *zap.Logger, port int) *Server {
	s := &Server{
		state:      state,
		controller: controller,
		hub:        hub,
		logger:     logger.Named("api"),
	}

	s.mux = http.NewServeMux()
	s.mux.HandleFunc("/", s.handleSitemap)
	s.mux.HandleFunc("/api/state", s.handleGetState)
	s.mux.HandleFunc("/api/control", s.handleControl)
	s.mux.Handle("/api/events", hub)
	s.mux.HandleFunc("/health", s.handleHealth)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the request router
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.server.Addr
}

// handleGetState returns the player snapshot as JSON
func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.writeJSON(w, http.StatusOK, s.state.Snapshot())

	s.logger.Debug("State request served",
		zap.String("remote_addr", r.RemoteAddr))
}

// ControlResponse is the body returned by POST /api/control
type ControlResponse struct {
	Status string `json:"status"`
	Action string `json:"action,omitempty"`
	Error  string `json:"error,omitempty"`
}

// handleControl applies a transport or playlist action
func (s *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ControlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, ControlResponse{
			Status: "error",
			Error:  fmt.Sprintf("invalid JSON: %v", err),
		})
		return
	}

	err := s.controller.Control(r.Context(), req)
	if err != nil {
		status := controlStatus(err)
		s.logger.Warn("Control request failed",
			zap.String("action", req.Action),
			zap.Int("status", status),
			zap.Error(err))
		s.writeJSON(w, status, ControlResponse{
			Status: "error",
			Action: req.Action,
			Error:  err.Error(),
		})
		return
	}

	s.logger.Info("Control request applied",
		zap.String("action", req.Action),
		zap.String("remote_addr", r.RemoteAddr))
	s.writeJSON(w, http.StatusOK, ControlResponse{Status: "ok", Action: req.Action})
}

func controlStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidControl):
		return http.StatusBadRequest
	case errors.Is(err, ErrNoPlayer):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrEndOfPlaylist), errors.Is(err, core.ErrNoContainer):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// handleHealth returns a simple health check response
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// Endpoint represents an API endpoint with its documentation
type Endpoint struct {
	Path        string `json:"path"`
	Method      string `json:"method"`
	Description string `json:"description"`
}

var endpoints = []Endpoint{
	{
		Path:        "/",
		Method:      "GET",
		Description: "This sitemap - lists all available API endpoints",
	},
	{
		Path:        "/api/state",
		Method:      "GET",
		Description: "Playlist snapshot (active index, per-source playback state and position)",
	},
	{
		Path:        "/api/control",
		Method:      "POST",
		Description: "Apply an action: play, pause, stop, seek, next, previous, load",
	},
	{
		Path:        "/api/events",
		Method:      "GET",
		Description: "Websocket stream of player events",
	},
	{
		Path:        "/health",
		Method:      "GET",
		Description: "Health check endpoint - returns {\"status\": \"ok\"}",
	},
}

// handleSitemap returns a list of all available API endpoints
func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	// Only handle requests to the root path
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	accept := r.Header.Get("Accept")
	preferHTML := strings.Contains(accept, "text/html")

	// 404 for automation compatibility, with a helpful body
	if preferHTML {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head>
    <title>playerd API</title>
    <style>
        body { font-family: monospace; margin: 40px; background: #1e1e1e; color: #d4d4d4; }
        h1 { color: #4ec9b0; }
        .endpoint { background: #2d2d2d; padding: 15px; margin: 10px 0; border-left: 3px solid #007acc; }
        .method { color: #4ec9b0; font-weight: bold; }
        .path { color: #ce9178; }
        .description { color: #9cdcfe; margin-top: 5px; }
    </style>
</head>
<body>
    <h1>playerd API</h1>
`)
		for _, ep := range endpoints {
			fmt.Fprintf(w, `    <div class="endpoint">
        <div><span class="method">%s</span> <span class="path">%s</span></div>
        <div class="description">%s</div>
    </div>
`, ep.Method, ep.Path, ep.Description)
		}
		fmt.Fprintf(w, "</body>\n</html>\n")
	} else {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, "playerd API\n")
		fmt.Fprintf(w, "===========\n\n")
		fmt.Fprintf(w, "Available endpoints:\n\n")
		for _, ep := range endpoints {
			fmt.Fprintf(w, "  %-6s %-14s %s\n", ep.Method, ep.Path, ep.Description)
		}
		fmt.Fprintf(w, "\nExamples:\n\n")
		fmt.Fprintf(w, "  curl http://localhost%s/api/state | jq\n", s.server.Addr)
		fmt.Fprintf(w, "  curl -X POST -d '{\"action\":\"next\"}' http://localhost%s/api/control\n", s.server.Addr)
	}

	s.logger.Debug("Sitemap request served",
		zap.String("remote_addr", r.RemoteAddr),
		zap.Bool("html_format", preferHTML))
}

// Start begins serving HTTP requests
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP API server", zap.String("addr", s.server.Addr))

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop disconnects event clients and gracefully shuts down the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping HTTP API server")
	s.hub.Close()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	return nil
}

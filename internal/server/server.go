// Package server provides the HTTP server for handscene.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/handscene/internal/capture"
	"github.com/ayusman/handscene/internal/scene"
	"github.com/ayusman/handscene/internal/server/api"
	"github.com/ayusman/handscene/internal/store"
)

// Tracker is the part of the running pipeline the server controls.
type Tracker interface {
	api.Toggle
	IsRunning() bool
}

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	Scene     *scene.Scene
	Camera    capture.Camera
	Tracker   Tracker
}

// Server represents the HTTP server.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	stream *SceneStream
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Scene != nil {
		s.stream = NewSceneStream(s.config.Scene)
		s.mux.Handle("/api/scene", api.NewSceneHandler(s.config.Scene))
		s.mux.Handle("/api/scene/ws", s.stream)
		s.mux.Handle("/api/viewport", api.NewViewportHandler(s.config.Scene, s.config.Store))
	}

	if s.config.Store != nil {
		s.mux.Handle("/api/sessions", api.NewSessionsHandler(s.config.Store))
	}

	if s.config.Tracker != nil {
		s.mux.Handle("/api/tracking", api.NewTrackingHandler(s.config.Tracker))
	}

	if s.config.Camera != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Camera))
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

// Publish forwards a render snapshot to WebSocket clients. It does nothing
// when no scene is configured.
func (s *Server) Publish(snap scene.Snapshot) {
	if s.stream != nil {
		s.stream.Publish(snap)
	}
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
	if s.config.Tracker != nil {
		response["tracking"] = s.config.Tracker.IsEnabled()
		response["running"] = s.config.Tracker.IsRunning()
	}
	if s.stream != nil {
		response["clients"] = s.stream.Clients()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}

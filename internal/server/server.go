// Package server provides the HTTP server for the PhysioSync exercise
// analysis system.
package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/umarshaikh/physiosync/internal/mocap"
	"github.com/umarshaikh/physiosync/internal/server/api"
	"github.com/umarshaikh/physiosync/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir     string
	RecordingsDir string
	TemplatesDir  string
	Store         *store.Store
	Recorder      *mocap.Recorder
	Camera        mocap.Camera
}

// Server represents the HTTP server for the PhysioSync application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
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
	s.mux.HandleFunc("/api/recordings", s.handleRecordings)

	analyzeHandler := api.NewAnalyzeHandler(s.config.Store, s.config.RecordingsDir, s.config.TemplatesDir)
	s.mux.Handle("/api/analyze", analyzeHandler)

	// Register template and session APIs if Store is configured
	if s.config.Store != nil {
		templateHandler := api.NewTemplateHandler(s.config.Store)
		pointsHandler := api.NewPointsHandler(s.config.Store)

		// Use a wrapper to route between templates and points handlers
		templateRouter := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Check if this is a points request: /api/templates/{id}/points
			if strings.HasSuffix(r.URL.Path, "/points") {
				pointsHandler.ServeHTTP(w, r)
				return
			}
			templateHandler.ServeHTTP(w, r)
		})

		s.mux.Handle("/api/templates", templateRouter)
		s.mux.Handle("/api/templates/", templateRouter)

		sessionHandler := api.NewSessionHandler(s.config.Store)
		s.mux.Handle("/api/sessions", sessionHandler)
		s.mux.Handle("/api/sessions/", sessionHandler)

		chartsHandler := NewChartsHandler(s.config.Store, s.config.RecordingsDir, s.config.TemplatesDir)
		s.mux.Handle("/api/charts/compare", chartsHandler)
	}

	// Register capture endpoints if Recorder is configured
	if s.config.Recorder != nil {
		s.mux.HandleFunc("/api/mocap/start", s.handleMocapStart)
		s.mux.HandleFunc("/api/mocap/status", s.handleMocapStatus)
		s.mux.HandleFunc("/api/mocap/stop", s.handleMocapStop)

		liveHandler := NewLiveHandler(s.config.Recorder)
		s.mux.Handle("/api/live", liveHandler)
	}

	// Register camera preview stream if Camera is configured
	if s.config.Camera != nil {
		streamHandler := NewStreamHandler(s.config.Camera)
		s.mux.Handle("/api/stream", streamHandler)
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

	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status": "ok",
		"uptime": uptime.String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

type recordingInfo struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	Modified string `json:"modified"`
}

// handleRecordings handles GET /api/recordings and lists the recorded
// CSV files, newest first.
func (s *Server) handleRecordings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	entries, err := os.ReadDir(s.config.RecordingsDir)
	if err != nil && !os.IsNotExist(err) {
		http.Error(w, "Failed to read recordings", http.StatusInternalServerError)
		return
	}

	recordings := make([]recordingInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".csv" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		recordings = append(recordings, recordingInfo{
			Name:     entry.Name(),
			Size:     info.Size(),
			Modified: info.ModTime().Format(time.RFC3339),
		})
	}

	sort.Slice(recordings, func(i, j int) bool {
		return recordings[i].Modified > recordings[j].Modified
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"recordings": recordings})
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}

package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/umarshaikh/physiosync/internal/mocap"
)

type mocapStartRequest struct {
	// Duration is the capture time in seconds.
	Duration float64 `json:"duration"`
}

// handleMocapStart handles POST /api/mocap/start and begins a capture
// session.
func (s *Server) handleMocapStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req mocapStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Duration <= 0 {
		writeJSONError(w, http.StatusBadRequest, "Duration must be positive")
		return
	}

	duration := time.Duration(req.Duration * float64(time.Second))
	if err := s.config.Recorder.Start(duration); err != nil {
		if errors.Is(err, mocap.ErrAlreadyRecording) {
			writeJSONError(w, http.StatusConflict, "Recording already in progress")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeStatus(w, http.StatusAccepted, s.config.Recorder.Status())
}

// handleMocapStatus handles GET /api/mocap/status.
func (s *Server) handleMocapStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeStatus(w, http.StatusOK, s.config.Recorder.Status())
}

// handleMocapStop handles POST /api/mocap/stop. It ends the running
// session and returns the final status including the recording file.
func (s *Server) handleMocapStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.config.Recorder.Stop()
	writeStatus(w, http.StatusOK, s.config.Recorder.Status())
}

func writeStatus(w http.ResponseWriter, code int, status mocap.Status) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(status)
}

func writeJSONError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

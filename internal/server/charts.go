package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/umarshaikh/physiosync/internal/engine"
	"github.com/umarshaikh/physiosync/internal/render"
	"github.com/umarshaikh/physiosync/internal/server/api"
	"github.com/umarshaikh/physiosync/internal/store"
)

// ChartsHandler renders the comparison page for a stored session.
type ChartsHandler struct {
	store         *store.Store
	recordingsDir string
	templatesDir  string
}

// NewChartsHandler creates a new ChartsHandler.
func NewChartsHandler(s *store.Store, recordingsDir, templatesDir string) *ChartsHandler {
	return &ChartsHandler{
		store:         s,
		recordingsDir: recordingsDir,
		templatesDir:  templatesDir,
	}
}

// ServeHTTP handles GET /api/charts/compare?session={id}. It reloads
// the session's trajectories, aligns them again and renders the chart
// page.
func (h *ChartsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		writeJSONError(w, http.StatusBadRequest, "Missing session parameter")
		return
	}

	session, err := h.store.Sessions().GetByID(sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "Failed to load session")
		return
	}

	patient, err := api.LoadRecording(h.recordingsDir, session.PatientFile)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, err.Error())
		return
	}

	reference, err := api.LoadReference(h.store, h.templatesDir, session.TemplateID, session.TemplateFile)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, err.Error())
		return
	}

	// Align the centered trajectories the same way the analysis did
	refCentered := reference.Center()
	patCentered := patient.Center()
	path, _, err := engine.Align(refCentered, patCentered, engine.DefaultConfig().Radius)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Failed to align trajectories")
		return
	}

	title := fmt.Sprintf("Score: %.2f (%s vs %s)", session.Score, session.PatientFile, referenceName(session))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.WriteComparison(w, title, refCentered, patCentered, path); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Failed to render charts")
		return
	}
}

func referenceName(s *store.Session) string {
	if s.TemplateFile != "" {
		return s.TemplateFile
	}
	return "template " + s.TemplateID
}

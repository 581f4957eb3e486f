package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/umarshaikh/physiosync/internal/engine"
	"github.com/umarshaikh/physiosync/internal/store"
)

// PointsHandler handles HTTP requests for template trajectory points.
type PointsHandler struct {
	store *store.Store
}

// NewPointsHandler creates a new PointsHandler with the given store.
func NewPointsHandler(s *store.Store) *PointsHandler {
	return &PointsHandler{store: s}
}

// ServeHTTP implements the http.Handler interface.
// Expected paths: /api/templates/{id}/points
func (h *PointsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Parse template ID from path: /api/templates/{id}/points
	path := strings.TrimPrefix(r.URL.Path, "/api/templates/")
	parts := strings.Split(path, "/")

	if len(parts) != 2 || parts[1] != "points" {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	templateID := parts[0]

	switch r.Method {
	case http.MethodGet:
		h.list(w, r, templateID)
	case http.MethodPost:
		h.upload(w, r, templateID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Request and response types

type uploadPointsRequest struct {
	Points []engine.Point3D `json:"points"`
}

type listPointsResponse struct {
	Points []engine.Point3D `json:"points"`
}

// list handles GET /api/templates/{id}/points
func (h *PointsHandler) list(w http.ResponseWriter, r *http.Request, templateID string) {
	// Verify template exists
	if _, err := h.store.Templates().GetByID(templateID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Template not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to verify template")
		return
	}

	points, err := h.store.Templates().GetPoints(templateID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list points")
		return
	}

	if points == nil {
		points = engine.Trajectory{}
	}
	writeJSON(w, http.StatusOK, listPointsResponse{Points: points})
}

// upload handles POST /api/templates/{id}/points and replaces the
// template's trajectory.
func (h *PointsHandler) upload(w http.ResponseWriter, r *http.Request, templateID string) {
	// Verify template exists
	if _, err := h.store.Templates().GetByID(templateID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Template not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to verify template")
		return
	}

	var req uploadPointsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	traj := engine.Trajectory(req.Points)
	if err := traj.Validate("points"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.Templates().SetPoints(templateID, traj); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save points")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"status": "ok",
		"points": len(traj),
	})
}

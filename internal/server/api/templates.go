// Package api provides HTTP API handlers for the PhysioSync exercise
// analysis system.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/umarshaikh/physiosync/internal/extract"
	"github.com/umarshaikh/physiosync/internal/store"
)

// TemplateHandler handles HTTP requests for exercise template resources.
type TemplateHandler struct {
	store *store.Store
}

// NewTemplateHandler creates a new TemplateHandler with the given store.
func NewTemplateHandler(s *store.Store) *TemplateHandler {
	return &TemplateHandler{store: s}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *TemplateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Parse the path to determine if this is a collection or item request
	// Expected paths: /api/templates or /api/templates/{id}
	path := strings.TrimPrefix(r.URL.Path, "/api/templates")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		// Collection endpoint: /api/templates
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	// Item endpoint: /api/templates/{id}
	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Request and response types

type createTemplateRequest struct {
	Name    string `json:"name"`
	ArmSide string `json:"arm_side"`
}

type updateTemplateRequest struct {
	Name    string `json:"name"`
	ArmSide string `json:"arm_side"`
}

type templateResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ArmSide   string `json:"arm_side"`
	Points    int    `json:"points"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type listTemplatesResponse struct {
	Templates []templateResponse `json:"templates"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// toResponse converts a store.Template to a templateResponse.
func toResponse(t *store.Template) templateResponse {
	return templateResponse{
		ID:        t.ID,
		Name:      t.Name,
		ArmSide:   t.ArmSide,
		Points:    t.Points,
		CreatedAt: t.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: t.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// validArmSide reports whether side is one of the accepted arm labels.
func validArmSide(side string) bool {
	return side == extract.SideLeft || side == extract.SideRight
}

// list handles GET /api/templates and returns all templates.
func (h *TemplateHandler) list(w http.ResponseWriter, r *http.Request) {
	templates, err := h.store.Templates().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list templates")
		return
	}

	response := listTemplatesResponse{
		Templates: make([]templateResponse, 0, len(templates)),
	}

	for _, t := range templates {
		response.Templates = append(response.Templates, toResponse(t))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/templates/{id} and returns a single template.
func (h *TemplateHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	template, err := h.store.Templates().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Template not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get template")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(template))
}

// create handles POST /api/templates and creates a new template.
func (h *TemplateHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Validate required fields
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}

	// Set default arm side if not provided
	armSide := req.ArmSide
	if armSide == "" {
		armSide = extract.SideRight
	}
	if !validArmSide(armSide) {
		writeError(w, http.StatusBadRequest, "Invalid arm side")
		return
	}

	template := &store.Template{
		ID:      uuid.New().String(),
		Name:    req.Name,
		ArmSide: armSide,
		Points:  0,
	}

	if err := h.store.Templates().Create(template); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create template")
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(template))
}

// update handles PUT /api/templates/{id} and updates an existing template.
func (h *TemplateHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	// First, get the existing template
	template, err := h.store.Templates().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Template not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get template")
		return
	}

	var req updateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Update fields if provided
	if req.Name != "" {
		template.Name = req.Name
	}
	if req.ArmSide != "" {
		if !validArmSide(req.ArmSide) {
			writeError(w, http.StatusBadRequest, "Invalid arm side")
			return
		}
		template.ArmSide = req.ArmSide
	}

	if err := h.store.Templates().Update(template); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update template")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(template))
}

// delete handles DELETE /api/templates/{id} and removes a template.
func (h *TemplateHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	err := h.store.Templates().Delete(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Template not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete template")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

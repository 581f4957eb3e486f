package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/umarshaikh/physiosync/internal/engine"
	"github.com/umarshaikh/physiosync/internal/extract"
	"github.com/umarshaikh/physiosync/internal/store"
)

// AnalyzeHandler runs the comparison pipeline for one patient recording
// against a reference template.
type AnalyzeHandler struct {
	store         *store.Store
	recordingsDir string
	templatesDir  string
}

// NewAnalyzeHandler creates a new AnalyzeHandler. The store may be nil,
// in which case results are returned but not persisted and template IDs
// cannot be resolved.
func NewAnalyzeHandler(s *store.Store, recordingsDir, templatesDir string) *AnalyzeHandler {
	return &AnalyzeHandler{
		store:         s,
		recordingsDir: recordingsDir,
		templatesDir:  templatesDir,
	}
}

type analyzeRequest struct {
	PatientFile  string   `json:"patient_file"`
	TemplateFile string   `json:"template_file"`
	TemplateID   string   `json:"template_id"`
	Sensitivity  *float64 `json:"sensitivity"`
	Radius       *int     `json:"radius"`
	ShapeLimit   *float64 `json:"shape_limit"`
}

type analyzeResponse struct {
	SessionID     string             `json:"session_id,omitempty"`
	PatientFile   string             `json:"patient_file"`
	TemplateFile  string             `json:"template_file,omitempty"`
	TemplateID    string             `json:"template_id,omitempty"`
	Score         float64            `json:"score"`
	GlobalRMSE    float64            `json:"global_rmse"`
	AxisRMSE      engine.AxisValues  `json:"axis_rmse"`
	ROMRatio      float64            `json:"rom_ratio"`
	ROMRatios     engine.AxisValues  `json:"rom_ratios"`
	ROMAxisGrades [3]int             `json:"rom_axis_grades"`
	AvgROMGrade   float64            `json:"avg_rom_grade"`
	ShapeGrade    int                `json:"shape_grade"`
	ROMStatus     engine.ROMStatus   `json:"rom_status"`
	ShapeStatus   engine.ShapeStatus `json:"shape_status"`
	Report        string             `json:"report_text"`
}

// ServeHTTP handles POST /api/analyze.
func (h *AnalyzeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.PatientFile == "" {
		writeError(w, http.StatusBadRequest, "patient_file is required")
		return
	}
	if (req.TemplateFile == "") == (req.TemplateID == "") {
		writeError(w, http.StatusBadRequest, "Exactly one of template_file or template_id is required")
		return
	}
	if req.TemplateID != "" && h.store == nil {
		writeError(w, http.StatusBadRequest, "Template storage is not configured")
		return
	}

	cfg := engine.DefaultConfig()
	if req.Sensitivity != nil {
		cfg.Sensitivity = *req.Sensitivity
	}
	if req.Radius != nil {
		cfg.Radius = *req.Radius
	}
	if req.ShapeLimit != nil {
		cfg.ShapeLimit = *req.ShapeLimit
	}

	patient, status, err := h.loadFile(h.recordingsDir, req.PatientFile)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}

	var reference engine.Trajectory
	if req.TemplateID != "" {
		reference, status, err = h.loadTemplate(req.TemplateID)
	} else {
		reference, status, err = h.loadFile(h.templatesDir, req.TemplateFile)
	}
	if err != nil {
		writeError(w, status, err.Error())
		return
	}

	result, err := engine.Compare(reference, patient, cfg)
	if err != nil {
		var inputErr *engine.InvalidInputError
		var cfgErr *engine.ConfigurationError
		if errors.As(err, &inputErr) || errors.As(err, &cfgErr) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Analysis failed")
		return
	}

	response := buildResponse(req, result)

	// Persist the session when storage is configured
	if h.store != nil {
		session := sessionFromResponse(response)
		if err := h.store.Sessions().Create(session); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save session")
			return
		}
		response.SessionID = session.ID
	}

	writeJSON(w, http.StatusOK, response)
}

// loadFile loads a CSV trajectory from dir by bare filename. A missing
// file maps to 404; an unusable one to 400.
func (h *AnalyzeHandler) loadFile(dir, name string) (engine.Trajectory, int, error) {
	if !safeName(name) {
		return nil, http.StatusBadRequest, fmt.Errorf("invalid file name %q", name)
	}

	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err != nil {
		return nil, http.StatusNotFound, fmt.Errorf("file %q not found", name)
	}

	traj, err := extract.FromFile(path)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	return traj, http.StatusOK, nil
}

// loadTemplate loads a stored template's trajectory by ID.
func (h *AnalyzeHandler) loadTemplate(id string) (engine.Trajectory, int, error) {
	if _, err := h.store.Templates().GetByID(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, http.StatusNotFound, fmt.Errorf("template %q not found", id)
		}
		return nil, http.StatusInternalServerError, err
	}

	traj, err := h.store.Templates().GetPoints(id)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	if len(traj) < 2 {
		return nil, http.StatusBadRequest, fmt.Errorf("template %q has no trajectory", id)
	}
	return traj, http.StatusOK, nil
}

// safeName rejects names that escape the data directory.
func safeName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, "/\\")
}

// buildResponse rounds the result for presentation: errors and ratios
// to 4 decimal places, the composite grade to 2.
func buildResponse(req analyzeRequest, result *engine.Result) *analyzeResponse {
	return &analyzeResponse{
		PatientFile:   req.PatientFile,
		TemplateFile:  req.TemplateFile,
		TemplateID:    req.TemplateID,
		Score:         result.Score,
		GlobalRMSE:    roundTo(result.GlobalRMSE, 4),
		AxisRMSE:      roundAxes(result.AxisRMSE, 4),
		ROMRatio:      roundTo(result.ROMRatio, 4),
		ROMRatios:     roundAxes(result.ROMRatios, 4),
		ROMAxisGrades: result.ROMAxisGrades,
		AvgROMGrade:   roundTo(result.AvgROMGrade, 2),
		ShapeGrade:    result.ShapeGrade,
		ROMStatus:     result.ROMStatus,
		ShapeStatus:   result.ShapeStatus,
		Report:        result.Report,
	}
}

func sessionFromResponse(r *analyzeResponse) *store.Session {
	return &store.Session{
		ID:           uuid.New().String(),
		TemplateID:   r.TemplateID,
		TemplateFile: r.TemplateFile,
		PatientFile:  r.PatientFile,
		Score:        r.Score,
		GlobalRMSE:   r.GlobalRMSE,
		RMSEX:        r.AxisRMSE.X,
		RMSEY:        r.AxisRMSE.Y,
		RMSEZ:        r.AxisRMSE.Z,
		ROMRatio:     r.ROMRatio,
		ROMRatioX:    r.ROMRatios.X,
		ROMRatioY:    r.ROMRatios.Y,
		ROMRatioZ:    r.ROMRatios.Z,
		ROMGradeX:    r.ROMAxisGrades[engine.AxisX],
		ROMGradeY:    r.ROMAxisGrades[engine.AxisY],
		ROMGradeZ:    r.ROMAxisGrades[engine.AxisZ],
		AvgROMGrade:  r.AvgROMGrade,
		ShapeGrade:   r.ShapeGrade,
		ROMStatus:    string(r.ROMStatus),
		ShapeStatus:  string(r.ShapeStatus),
		Report:       r.Report,
	}
}

// roundTo rounds v to the given number of decimal places.
func roundTo(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}

func roundAxes(v engine.AxisValues, places int) engine.AxisValues {
	return engine.AxisValues{
		X: roundTo(v.X, places),
		Y: roundTo(v.Y, places),
		Z: roundTo(v.Z, places),
	}
}

// LoadRecording loads a patient recording from the recordings
// directory by bare filename.
func LoadRecording(dir, name string) (engine.Trajectory, error) {
	if !safeName(name) {
		return nil, fmt.Errorf("invalid file name %q", name)
	}
	return extract.FromFile(filepath.Join(dir, name))
}

// LoadReference loads the reference trajectory of a stored session:
// from the template store when the session carries a template ID, from
// the templates directory otherwise.
func LoadReference(s *store.Store, templatesDir, templateID, templateFile string) (engine.Trajectory, error) {
	if templateID != "" {
		traj, err := s.Templates().GetPoints(templateID)
		if err != nil {
			return nil, err
		}
		if len(traj) < 2 {
			return nil, fmt.Errorf("template %q has no trajectory", templateID)
		}
		return traj, nil
	}
	return LoadRecording(templatesDir, templateFile)
}

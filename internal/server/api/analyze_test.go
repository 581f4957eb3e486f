package api

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/google/uuid"

	"github.com/umarshaikh/physiosync/internal/engine"
	"github.com/umarshaikh/physiosync/internal/store"
)

// writeWave writes a CSV recording of a smooth 3D wave to dir.
func writeWave(t *testing.T, dir, name string, n int, scale float64) {
	t.Helper()

	var buf bytes.Buffer
	buf.WriteString("x,y,z\n")
	for i := 0; i < n; i++ {
		phase := float64(i) / float64(n) * 2 * math.Pi
		buf.WriteString(strconv.FormatFloat(scale*math.Sin(phase), 'f', 6, 64))
		buf.WriteByte(',')
		buf.WriteString(strconv.FormatFloat(scale*math.Cos(phase), 'f', 6, 64))
		buf.WriteByte(',')
		buf.WriteString(strconv.FormatFloat(0.1*scale*math.Sin(2*phase), 'f', 6, 64))
		buf.WriteByte('\n')
	}

	if err := os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func postAnalyze(t *testing.T, h *AnalyzeHandler, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", bytes.NewReader(data))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAnalyzeHandler_IdenticalRecordings(t *testing.T) {
	s := newTestStore(t)
	recordings := t.TempDir()
	templates := t.TempDir()
	writeWave(t, recordings, "patient.csv", 40, 1.0)
	writeWave(t, templates, "template.csv", 40, 1.0)

	h := NewAnalyzeHandler(s, recordings, templates)

	rec := postAnalyze(t, h, map[string]string{
		"patient_file":  "patient.csv",
		"template_file": "template.csv",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("analyze returned %d: %s", rec.Code, rec.Body.String())
	}

	var resp analyzeResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Score != 100.0 {
		t.Errorf("score = %v, want 100 for identical recordings", resp.Score)
	}
	if resp.ROMStatus != engine.ROMExcellent {
		t.Errorf("rom status = %q, want %q", resp.ROMStatus, engine.ROMExcellent)
	}
	if resp.ShapeStatus != engine.ShapeGoodMatch {
		t.Errorf("shape status = %q, want %q", resp.ShapeStatus, engine.ShapeGoodMatch)
	}
	if resp.SessionID == "" {
		t.Error("analysis should persist a session")
	}
	if resp.Report == "" {
		t.Error("analysis should include the report text")
	}

	// The persisted session matches the response
	session, err := s.Sessions().GetByID(resp.SessionID)
	if err != nil {
		t.Fatalf("failed to load persisted session: %v", err)
	}
	if session.Score != resp.Score || session.PatientFile != "patient.csv" {
		t.Errorf("persisted session %+v does not match response", session)
	}
}

func TestAnalyzeHandler_StoredTemplate(t *testing.T) {
	s := newTestStore(t)
	recordings := t.TempDir()
	writeWave(t, recordings, "patient.csv", 30, 1.0)

	tmpl := &store.Template{ID: uuid.New().String(), Name: "wave", ArmSide: "Right"}
	if err := s.Templates().Create(tmpl); err != nil {
		t.Fatalf("failed to create template: %v", err)
	}

	traj := make(engine.Trajectory, 30)
	for i := range traj {
		phase := float64(i) / 30 * 2 * math.Pi
		traj[i] = engine.Point3D{X: math.Sin(phase), Y: math.Cos(phase), Z: 0.1 * math.Sin(2*phase)}
	}
	if err := s.Templates().SetPoints(tmpl.ID, traj); err != nil {
		t.Fatalf("failed to set points: %v", err)
	}

	h := NewAnalyzeHandler(s, recordings, t.TempDir())

	rec := postAnalyze(t, h, map[string]string{
		"patient_file": "patient.csv",
		"template_id":  tmpl.ID,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("analyze returned %d: %s", rec.Code, rec.Body.String())
	}

	var resp analyzeResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.TemplateID != tmpl.ID {
		t.Errorf("response template_id = %q, want %q", resp.TemplateID, tmpl.ID)
	}
	if resp.Score < 99 {
		t.Errorf("score = %v, want near 100 for matching template", resp.Score)
	}
}

func TestAnalyzeHandler_UnknownTemplate(t *testing.T) {
	s := newTestStore(t)
	recordings := t.TempDir()
	writeWave(t, recordings, "patient.csv", 30, 1.0)

	h := NewAnalyzeHandler(s, recordings, t.TempDir())

	rec := postAnalyze(t, h, map[string]string{
		"patient_file": "patient.csv",
		"template_id":  "no-such-template",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown template returned %d, want 404", rec.Code)
	}
}

func TestAnalyzeHandler_MissingPatientFile(t *testing.T) {
	h := NewAnalyzeHandler(newTestStore(t), t.TempDir(), t.TempDir())

	rec := postAnalyze(t, h, map[string]string{
		"patient_file":  "missing.csv",
		"template_file": "template.csv",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("got status %d, want 404 for missing recording", rec.Code)
	}
}

func TestAnalyzeHandler_RequestValidation(t *testing.T) {
	h := NewAnalyzeHandler(newTestStore(t), t.TempDir(), t.TempDir())

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing patient_file", map[string]interface{}{"template_file": "t.csv"}},
		{"no template", map[string]interface{}{"patient_file": "p.csv"}},
		{"both templates", map[string]interface{}{
			"patient_file": "p.csv", "template_file": "t.csv", "template_id": "id",
		}},
		{"path escape", map[string]interface{}{
			"patient_file": "../secret.csv", "template_file": "t.csv",
		}},
	}

	for _, tt := range tests {
		rec := postAnalyze(t, h, tt.body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: got status %d, want 400", tt.name, rec.Code)
		}
	}
}

func TestAnalyzeHandler_BadConfig(t *testing.T) {
	recordings := t.TempDir()
	templates := t.TempDir()
	writeWave(t, recordings, "patient.csv", 20, 1.0)
	writeWave(t, templates, "template.csv", 20, 1.0)

	h := NewAnalyzeHandler(newTestStore(t), recordings, templates)

	rec := postAnalyze(t, h, map[string]interface{}{
		"patient_file":  "patient.csv",
		"template_file": "template.csv",
		"radius":        -1,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("got status %d, want 400 for negative radius", rec.Code)
	}
}

func TestAnalyzeHandler_RestrictedMotion(t *testing.T) {
	recordings := t.TempDir()
	templates := t.TempDir()
	// Patient moves at 60% of the reference amplitude
	writeWave(t, recordings, "patient.csv", 40, 0.6)
	writeWave(t, templates, "template.csv", 40, 1.0)

	h := NewAnalyzeHandler(newTestStore(t), recordings, templates)

	rec := postAnalyze(t, h, map[string]string{
		"patient_file":  "patient.csv",
		"template_file": "template.csv",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("analyze returned %d: %s", rec.Code, rec.Body.String())
	}

	var resp analyzeResponse
	json.NewDecoder(rec.Body).Decode(&resp)

	if resp.ROMStatus != engine.ROMRestricted {
		t.Errorf("rom status = %q, want %q for undersized motion", resp.ROMStatus, engine.ROMRestricted)
	}
	if resp.ROMRatio >= 0.9 {
		t.Errorf("rom ratio = %v, want < 0.9", resp.ROMRatio)
	}
}

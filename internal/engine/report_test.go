package engine

import (
	"strings"
	"testing"
)

func TestClassifyROM_GradeChecksPrecedeRatioChecks(t *testing.T) {
	tests := []struct {
		name     string
		avgGrade float64
		ratio    float64
		want     ROMStatus
	}{
		{"critical failure wins over restricted ratio", 0.5, 0.3, ROMCriticalFailure},
		{"excellent wins over restricted ratio", 9.3, 0.5, ROMExcellent},
		{"excellent wins over excessive ratio", 10, 1.4, ROMExcellent},
		{"restricted", 7, 0.85, ROMRestricted},
		{"excessive", 7, 1.2, ROMExcessive},
		{"mild deviation", 8, 1.0, ROMMildDeviation},
		{"mild deviation at ratio bounds", 8, 0.90, ROMMildDeviation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyROM(tt.avgGrade, tt.ratio); got != tt.want {
				t.Errorf("classifyROM(%g, %g) = %s, want %s", tt.avgGrade, tt.ratio, got, tt.want)
			}
		})
	}
}

func TestClassifyShape_WorstAxis(t *testing.T) {
	tests := []struct {
		name     string
		grade    int
		axisRMSE [NumAxes]float64
		want     ShapeStatus
	}{
		{"passing grade", 6, [NumAxes]float64{9, 9, 9}, ShapeGoodMatch},
		{"x worst", 0, [NumAxes]float64{0.5, 0.2, 0.1}, ShapeIncorrectX},
		{"y worst", 0, [NumAxes]float64{0.1, 0.5, 0.2}, ShapeIncorrectY},
		{"z worst", 0, [NumAxes]float64{0.1, 0.2, 0.5}, ShapeIncorrectZ},
		{"tie goes to x", 0, [NumAxes]float64{0.5, 0.5, 0.5}, ShapeIncorrectX},
		{"tie between y and z goes to y", 0, [NumAxes]float64{0.1, 0.5, 0.5}, ShapeIncorrectY},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyShape(tt.grade, tt.axisRMSE); got != tt.want {
				t.Errorf("classifyShape(%d, %v) = %s, want %s", tt.grade, tt.axisRMSE, got, tt.want)
			}
		})
	}
}

func TestTherapistReport_Sections(t *testing.T) {
	ref := wave(30, 0)
	pat := wave(30, 0.4)

	result, err := Compare(ref, pat, DefaultConfig())
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	for _, want := range []string{
		"RANGE OF MOTION (ROM)",
		"SHAPE QUALITY (RMSE)",
		"Axis Breakdown:",
		"Axis Error Breakdown:",
		"STATUS:",
	} {
		if !strings.Contains(result.Report, want) {
			t.Errorf("report missing %q:\n%s", want, result.Report)
		}
	}
}

func TestTherapistReport_FailedShapeNamesWorstAxis(t *testing.T) {
	// Reference moves on X, patient moves far away on Y: the shape must
	// fail and the report must blame the vertical path.
	ref := Trajectory{{X: 0}, {X: 1}, {X: 2}}
	pat := Trajectory{{Y: 0}, {Y: 3}, {Y: 6}}

	result, err := Compare(ref, pat, DefaultConfig())
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	if result.ShapeGrade != 0 {
		t.Fatalf("expected shape grade 0, got %d", result.ShapeGrade)
	}
	if result.ShapeStatus != ShapeIncorrectY {
		t.Errorf("expected status %s, got %s", ShapeIncorrectY, result.ShapeStatus)
	}
	if !strings.Contains(result.Report, "MAIN ISSUE: Vertical Path (Y)") {
		t.Errorf("report does not name the worst axis:\n%s", result.Report)
	}
}

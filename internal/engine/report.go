package engine

import (
	"fmt"
	"strings"
)

// ROMStatus is the qualitative range-of-motion classification shown to
// the therapist.
type ROMStatus string

const (
	ROMCriticalFailure ROMStatus = "CRITICAL_FAILURE"
	ROMExcellent       ROMStatus = "EXCELLENT"
	ROMRestricted      ROMStatus = "RESTRICTED"
	ROMExcessive       ROMStatus = "EXCESSIVE"
	ROMMildDeviation   ROMStatus = "MILD_DEVIATION"
)

// ShapeStatus is the qualitative shape classification. An incorrect
// shape carries the axis with the largest aligned error.
type ShapeStatus string

const (
	ShapeGoodMatch  ShapeStatus = "GOOD_MATCH"
	ShapeIncorrectX ShapeStatus = "INCORRECT_SHAPE_X"
	ShapeIncorrectY ShapeStatus = "INCORRECT_SHAPE_Y"
	ShapeIncorrectZ ShapeStatus = "INCORRECT_SHAPE_Z"
)

// AxisValues carries one value per spatial axis in API responses.
type AxisValues struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func axisValuesFrom(v [NumAxes]float64) AxisValues {
	return AxisValues{X: v[AxisX], Y: v[AxisY], Z: v[AxisZ]}
}

// Result is the full outcome of one comparison: the patient-facing
// score plus the therapist-facing clinical breakdown. It is assembled
// fresh per comparison and holds no references into the inputs.
type Result struct {
	Score         float64     `json:"score"`
	GlobalRMSE    float64     `json:"global_rmse"`
	AxisRMSE      AxisValues  `json:"axis_rmse"`
	ROMRatio      float64     `json:"rom_ratio"`
	ROMRatios     AxisValues  `json:"rom_ratios"`
	ROMAxisGrades [3]int      `json:"rom_axis_grades"`
	AvgROMGrade   float64     `json:"avg_rom_grade"`
	ShapeGrade    int         `json:"shape_grade"`
	ROMStatus     ROMStatus   `json:"rom_status"`
	ShapeStatus   ShapeStatus `json:"shape_status"`
	Report        string      `json:"report_text"`
}

// classifyROM derives the ROM status label. Grade-based checks take
// precedence over ratio-based checks: a critically failed or excellent
// composite grade decides the status regardless of the mean ratio.
func classifyROM(avgGrade, meanRatio float64) ROMStatus {
	switch {
	case avgGrade < 1:
		return ROMCriticalFailure
	case avgGrade >= 9:
		return ROMExcellent
	case meanRatio < 0.90:
		return ROMRestricted
	case meanRatio > 1.10:
		return ROMExcessive
	default:
		return ROMMildDeviation
	}
}

// classifyShape derives the shape status label. A failed shape grade is
// attributed to the axis with the largest per-axis RMSE; ties go to the
// first axis in X, Y, Z order.
func classifyShape(grade int, axisRMSE [NumAxes]float64) ShapeStatus {
	if grade != 0 {
		return ShapeGoodMatch
	}

	worst := AxisX
	for axis := AxisY; axis < NumAxes; axis++ {
		if axisRMSE[axis] > axisRMSE[worst] {
			worst = axis
		}
	}

	switch worst {
	case AxisX:
		return ShapeIncorrectX
	case AxisY:
		return ShapeIncorrectY
	default:
		return ShapeIncorrectZ
	}
}

// assembleResult packages the computed metrics, grades and statuses
// into the structured record exposed to the presentation layer. It
// performs formatting and aggregation only; all numeric work happens
// upstream.
func assembleResult(shape shapeMetrics, rom romMetrics, score float64, shapeLimit float64) *Result {
	var axisGrades [NumAxes]int
	for axis := 0; axis < NumAxes; axis++ {
		axisGrades[axis] = ROMGrade(rom.Ratios[axis])
	}
	avgGrade := averageGrade(axisGrades)
	shapeGrade := ShapeGrade(shape.GlobalRMSE, shapeLimit)

	r := &Result{
		Score:         score,
		GlobalRMSE:    shape.GlobalRMSE,
		AxisRMSE:      axisValuesFrom(shape.AxisRMSE),
		ROMRatio:      rom.MeanRatio,
		ROMRatios:     axisValuesFrom(rom.Ratios),
		ROMAxisGrades: axisGrades,
		AvgROMGrade:   avgGrade,
		ShapeGrade:    shapeGrade,
		ROMStatus:     classifyROM(avgGrade, rom.MeanRatio),
		ShapeStatus:   classifyShape(shapeGrade, shape.AxisRMSE),
	}
	r.Report = therapistReport(r, shape.AxisRMSE, shapeLimit)
	return r
}

// therapistReport renders the plain-text analytics block shown on the
// therapist dashboard.
func therapistReport(r *Result, axisRMSE [NumAxes]float64, shapeLimit float64) string {
	var b strings.Builder

	fmt.Fprintf(&b, "RANGE OF MOTION (ROM)\n")
	fmt.Fprintf(&b, "  > Global Grade: %.1f / 10\n", r.AvgROMGrade)
	fmt.Fprintf(&b, "  > Avg Ratio:    %.1f%% of Reference\n", r.ROMRatio*100)
	fmt.Fprintf(&b, "  > Axis Breakdown:\n")
	fmt.Fprintf(&b, "    X: %.0f%% (Grade: %d)\n", r.ROMRatios.X*100, r.ROMAxisGrades[AxisX])
	fmt.Fprintf(&b, "    Y: %.0f%% (Grade: %d)\n", r.ROMRatios.Y*100, r.ROMAxisGrades[AxisY])
	fmt.Fprintf(&b, "    Z: %.0f%% (Grade: %d)\n", r.ROMRatios.Z*100, r.ROMAxisGrades[AxisZ])
	fmt.Fprintf(&b, "  > STATUS: %s\n", romStatusText(r.ROMStatus))

	fmt.Fprintf(&b, "\nSHAPE QUALITY (RMSE)\n")
	fmt.Fprintf(&b, "  > Grade:        %d / 10\n", r.ShapeGrade)
	fmt.Fprintf(&b, "  > Global Error: %.3f m\n", r.GlobalRMSE)
	fmt.Fprintf(&b, "  > Limit:        < %.3f m\n", shapeLimit)
	fmt.Fprintf(&b, "  > Axis Error Breakdown:\n")
	fmt.Fprintf(&b, "    X: %.3fm\n", axisRMSE[AxisX])
	fmt.Fprintf(&b, "    Y: %.3fm\n", axisRMSE[AxisY])
	fmt.Fprintf(&b, "    Z: %.3fm\n", axisRMSE[AxisZ])

	if r.ShapeGrade == 0 {
		fmt.Fprintf(&b, "  > STATUS: INCORRECT SHAPE (Mismatch)\n")
		switch r.ShapeStatus {
		case ShapeIncorrectX:
			fmt.Fprintf(&b, "    -> MAIN ISSUE: Horizontal Path (X)")
		case ShapeIncorrectY:
			fmt.Fprintf(&b, "    -> MAIN ISSUE: Vertical Path (Y)")
		default:
			fmt.Fprintf(&b, "    -> MAIN ISSUE: Depth Control (Z)")
		}
	} else {
		fmt.Fprintf(&b, "  > STATUS: GOOD SHAPE MATCH")
	}

	return b.String()
}

// romStatusText expands a ROM status into the dashboard wording.
func romStatusText(s ROMStatus) string {
	switch s {
	case ROMCriticalFailure:
		return "CRITICAL FAILURE (Wrong Motion)"
	case ROMExcellent:
		return "EXCELLENT ROM"
	case ROMRestricted:
		return "RESTRICTED (Too Small)"
	case ROMExcessive:
		return "EXCESSIVE (Too Large)"
	default:
		return "MILD DEVIATION"
	}
}

package engine

// The grading tables encode clinical judgment as literal thresholds.
// They are frozen configuration data: a threshold change must come with
// the matching boundary test update.

// romBand maps a closed-ish ratio interval to a grade. Bands are
// checked in order; the first match wins.
type romBand struct {
	lo, hi float64 // inclusive bounds
	grade  int
}

// romGradeBands covers every ratio inside the pass region [0.50, 1.50].
// Anything outside that region is an automatic grade 0 (wrong motion).
var romGradeBands = []romBand{
	{0.95, 1.05, 10}, // on target
	{0.90, 0.95, 9},  // slightly restricted
	{0.70, 0.90, 8},
	{0.50, 0.70, 7},
	{1.05, 1.10, 9}, // slightly excessive
	{1.10, 1.30, 8},
	{1.30, 1.50, 7},
}

// ROMGrade maps a single per-axis ROM ratio to its clinical grade in
// {0, 7, 8, 9, 10}. Total over all real inputs; same input always
// yields the same grade.
func ROMGrade(ratio float64) int {
	if ratio < 0.50 || ratio > 1.50 {
		return 0
	}
	for _, band := range romGradeBands {
		if ratio >= band.lo && ratio <= band.hi {
			return band.grade
		}
	}
	// Unreachable: the bands cover [0.50, 1.50].
	return 0
}

// shapeGradeSteps is the number of equal RMSE steps the allowed limit
// is divided into. Step 1 grades 10, step 5 grades 6.
const shapeGradeSteps = 5

// ShapeGrade maps the global RMSE to a clinical grade in {0, 6..10}
// given the allowed error limit in meters. RMSE at or above the limit
// is an automatic grade 0; otherwise each fifth of the limit costs one
// grade point, floored at 6. Step boundaries are inclusive on the low
// side: RMSE exactly equal to limit/5 still grades 10.
func ShapeGrade(rmse, limit float64) int {
	if rmse >= limit {
		return 0
	}

	step := limit / shapeGradeSteps
	for i := 1; i < shapeGradeSteps; i++ {
		if rmse <= step*float64(i) {
			return 11 - i
		}
	}
	return 6
}

// averageGrade returns the arithmetic mean of the per-axis ROM grades.
// The mean is taken over grades, not ratios.
func averageGrade(grades [NumAxes]int) float64 {
	var sum float64
	for _, g := range grades {
		sum += float64(g)
	}
	return sum / NumAxes
}

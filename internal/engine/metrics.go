package engine

import "math"

// shapeMetrics holds the alignment-derived error measurements.
type shapeMetrics struct {
	GlobalRMSE float64
	AxisRMSE   [NumAxes]float64
	PathLength int
}

// computeShapeMetrics derives shape error from an alignment.
//
// The global RMSE is D/sqrt(L) where D is the aggregate path distance
// and L the number of pairs: a root-mean-square of the combined 3-axis
// squared costs along the path. It is never recomputed from the points,
// so it stays numerically consistent with the path the aligner chose.
//
// The per-axis RMSE is recomputed from the centered points along the
// path; it is not derivable from the scalar D.
func computeShapeMetrics(reference, query Trajectory, path []PathPair, distance float64) shapeMetrics {
	length := len(path)

	var sqErr [NumAxes]float64
	for _, pair := range path {
		r := reference[pair.I]
		q := query[pair.J]
		dx := r.X - q.X
		dy := r.Y - q.Y
		dz := r.Z - q.Z
		sqErr[AxisX] += dx * dx
		sqErr[AxisY] += dy * dy
		sqErr[AxisZ] += dz * dz
	}

	var axisRMSE [NumAxes]float64
	for axis := 0; axis < NumAxes; axis++ {
		axisRMSE[axis] = math.Sqrt(sqErr[axis] / float64(length))
	}

	return shapeMetrics{
		GlobalRMSE: distance / math.Sqrt(float64(length)),
		AxisRMSE:   axisRMSE,
		PathLength: length,
	}
}

// scoreFromRMSE maps the global RMSE to the patient-facing 0-100 score
// via exponential decay: 100 * exp(-sensitivity * rmse), rounded to two
// decimal places. Zero error scores exactly 100; the score decreases
// strictly as RMSE grows and approaches but never reaches 0.
func scoreFromRMSE(globalRMSE, sensitivity float64) float64 {
	score := 100 * math.Exp(-sensitivity*globalRMSE)
	return math.Round(score*100) / 100
}

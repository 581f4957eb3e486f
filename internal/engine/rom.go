package engine

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// zeroRangeEpsilon replaces an exactly-zero reference range before
// division. The resulting ratio is a large finite value, signalling an
// effectively undefined ratio without faulting.
const zeroRangeEpsilon = 1e-6

// romMetrics holds the range-of-motion comparison between the raw
// (uncentered) trajectories. Range is translation-invariant, so the
// centering applied for alignment is irrelevant here.
type romMetrics struct {
	MeanRatio float64
	Ratios    [NumAxes]float64
	RefRange  [NumAxes]float64
	PatRange  [NumAxes]float64
}

// computeROMMetrics computes per-axis peak-to-peak ranges for both
// trajectories and the patient/reference ratio per axis. The scalar
// summary is the arithmetic mean of the three per-axis ratios.
//
// Exactly-zero ranges are substituted with the epsilon on both sides of
// the division. A zero reference range against real patient motion
// yields a huge (but finite) ratio; an axis neither trajectory moves on
// yields exactly 1.0, so a shared flat axis never drags the grade down.
func computeROMMetrics(reference, patient Trajectory) romMetrics {
	var m romMetrics

	for axis := 0; axis < NumAxes; axis++ {
		m.RefRange[axis] = peakToPeak(reference.axisValues(axis))
		m.PatRange[axis] = peakToPeak(patient.axisValues(axis))

		refRange := m.RefRange[axis]
		if refRange == 0 {
			refRange = zeroRangeEpsilon
		}
		patRange := m.PatRange[axis]
		if patRange == 0 {
			patRange = zeroRangeEpsilon
		}
		m.Ratios[axis] = patRange / refRange
	}

	m.MeanRatio = stat.Mean(m.Ratios[:], nil)
	return m
}

// peakToPeak returns max(values) - min(values).
func peakToPeak(values []float64) float64 {
	return floats.Max(values) - floats.Min(values)
}

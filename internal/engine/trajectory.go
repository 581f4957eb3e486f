// Package engine implements the trajectory comparison and grading engine
// for the PhysioSync system. It time-aligns a patient's recorded 3D wrist
// trajectory against an expert reference using banded dynamic time warping,
// derives shape and range-of-motion metrics, and maps them to clinical
// grades and status labels.
package engine

import (
	"fmt"
	"math"
)

// Axis indices into per-axis metric arrays.
const (
	AxisX = 0
	AxisY = 1
	AxisZ = 2
	// NumAxes is the dimensionality of every trajectory sample.
	NumAxes = 3
)

// Point3D represents a 3D point in space with x, y, z coordinates in meters.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Axis returns the coordinate for the given axis index.
func (p Point3D) Axis(axis int) float64 {
	switch axis {
	case AxisX:
		return p.X
	case AxisY:
		return p.Y
	default:
		return p.Z
	}
}

// Trajectory is an ordered sequence of 3D points, one per timestep.
// The engine never mutates a caller's trajectory; derived sequences
// are always fresh allocations.
type Trajectory []Point3D

// Validate checks that the trajectory is usable for comparison:
// at least 2 points and no NaN or infinite coordinates.
// The name identifies the trajectory in the returned error.
func (t Trajectory) Validate(name string) error {
	if len(t) < 2 {
		return &InvalidInputError{Name: name, Reason: "trajectory must have at least 2 points"}
	}
	for i, p := range t {
		if !isFinite(p.X) || !isFinite(p.Y) || !isFinite(p.Z) {
			return &InvalidInputError{Name: name, Reason: fmt.Sprintf("non-finite coordinate at sample %d", i)}
		}
	}
	return nil
}

// Center returns a new trajectory translated so its centroid is at the
// origin. Centering removes absolute position offset (different starting
// hand positions) while preserving shape and scale.
func (t Trajectory) Center() Trajectory {
	n := len(t)
	if n == 0 {
		return Trajectory{}
	}

	var sumX, sumY, sumZ float64
	for _, p := range t {
		sumX += p.X
		sumY += p.Y
		sumZ += p.Z
	}

	meanX := sumX / float64(n)
	meanY := sumY / float64(n)
	meanZ := sumZ / float64(n)

	centered := make(Trajectory, n)
	for i, p := range t {
		centered[i] = Point3D{
			X: p.X - meanX,
			Y: p.Y - meanY,
			Z: p.Z - meanZ,
		}
	}

	return centered
}

// axisValues extracts a single axis of the trajectory as a flat slice.
func (t Trajectory) axisValues(axis int) []float64 {
	values := make([]float64, len(t))
	for i, p := range t {
		values[i] = p.Axis(axis)
	}
	return values
}

// isFinite reports whether v is neither NaN nor infinite.
func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

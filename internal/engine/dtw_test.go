package engine

import (
	"math"
	"testing"
)

// wave builds a deterministic test trajectory with motion on all axes.
func wave(n int, phase float64) Trajectory {
	t := make(Trajectory, n)
	for i := 0; i < n; i++ {
		s := float64(i)/float64(n-1)*2*math.Pi + phase
		t[i] = Point3D{
			X: math.Sin(s),
			Y: math.Cos(s) * 0.5,
			Z: math.Sin(2*s) * 0.25,
		}
	}
	return t
}

// checkPathShape verifies the structural invariants of an alignment
// path: starts at (0,0), ends at (n-1,m-1), unit steps, monotonic.
func checkPathShape(t *testing.T, path []PathPair, n, m int) {
	t.Helper()

	if len(path) == 0 {
		t.Fatal("empty path")
	}
	if path[0].I != 0 || path[0].J != 0 {
		t.Errorf("path starts at (%d,%d), want (0,0)", path[0].I, path[0].J)
	}
	last := path[len(path)-1]
	if last.I != n-1 || last.J != m-1 {
		t.Errorf("path ends at (%d,%d), want (%d,%d)", last.I, last.J, n-1, m-1)
	}

	for k := 1; k < len(path); k++ {
		di := path[k].I - path[k-1].I
		dj := path[k].J - path[k-1].J
		if di < 0 || dj < 0 {
			t.Errorf("step %d: path not monotonic (%d,%d)->(%d,%d)", k, path[k-1].I, path[k-1].J, path[k].I, path[k].J)
		}
		if di > 1 || dj > 1 || (di == 0 && dj == 0) {
			t.Errorf("step %d: not a unit step (%d,%d)->(%d,%d)", k, path[k-1].I, path[k-1].J, path[k].I, path[k].J)
		}
	}
}

func TestAlignDTW_IdenticalTrajectories(t *testing.T) {
	traj := wave(25, 0)

	path, dist := alignDTW(traj, traj, 10)

	if dist != 0 {
		t.Errorf("expected distance 0 for identical trajectories, got %g", dist)
	}

	// With zero cost everywhere on the diagonal, the diagonal-first
	// tie-break must produce the pure diagonal path.
	if len(path) != len(traj) {
		t.Fatalf("expected diagonal path of length %d, got %d", len(traj), len(path))
	}
	for k, pair := range path {
		if pair.I != k || pair.J != k {
			t.Errorf("pair %d: got (%d,%d), want (%d,%d)", k, pair.I, pair.J, k, k)
		}
	}
}

func TestAlignDTW_PathInvariants(t *testing.T) {
	ref := wave(40, 0)
	query := wave(33, 0.3)
	radius := 10

	path, _ := alignDTW(ref, query, radius)
	checkPathShape(t, path, len(ref), len(query))

	for _, pair := range path {
		if d := pair.I - pair.J; d > radius || -d > radius {
			t.Errorf("pair (%d,%d) outside band radius %d", pair.I, pair.J, radius)
		}
	}
}

func TestAlignDTW_WidensBandForUnequalLengths(t *testing.T) {
	// Length difference 25 exceeds the configured radius; the aligner
	// must widen the effective band so a path still exists.
	ref := wave(30, 0)
	query := wave(5, 0)
	radius := 2

	path, dist := alignDTW(ref, query, radius)
	checkPathShape(t, path, len(ref), len(query))

	if math.IsInf(dist, 1) || math.IsNaN(dist) {
		t.Errorf("expected finite distance with widened band, got %g", dist)
	}

	effective := len(ref) - len(query)
	for _, pair := range path {
		if d := pair.I - pair.J; d > effective || -d > effective {
			t.Errorf("pair (%d,%d) outside widened band %d", pair.I, pair.J, effective)
		}
	}
}

func TestAlignDTW_AggregateDistance(t *testing.T) {
	// Hand-checked 2x2 case. Local squared costs:
	//   (0,0)=0  (0,1)=4
	//   (1,0)=1  (1,1)=1
	// Best path is the diagonal with cumulative cost 1, so D = 1.
	ref := Trajectory{{X: 0}, {X: 1}}
	query := Trajectory{{X: 0}, {X: 2}}

	path, dist := alignDTW(ref, query, 10)

	if math.Abs(dist-1.0) > 1e-12 {
		t.Errorf("expected aggregate distance 1.0, got %g", dist)
	}
	want := []PathPair{{0, 0}, {1, 1}}
	if len(path) != len(want) {
		t.Fatalf("expected path length %d, got %d", len(want), len(path))
	}
	for k := range want {
		if path[k] != want[k] {
			t.Errorf("pair %d: got (%d,%d), want (%d,%d)", k, path[k].I, path[k].J, want[k].I, want[k].J)
		}
	}
}

func TestAlignDTW_TimeShiftedTrajectories(t *testing.T) {
	// A query that traces the same shape at a different sampling rate
	// should align with far lower cost than a genuinely different shape.
	ref := wave(30, 0)
	sameShape := wave(45, 0)
	otherShape := wave(45, math.Pi)

	_, distSame := alignDTW(ref, sameShape, 15)
	_, distOther := alignDTW(ref, otherShape, 15)

	if distSame >= distOther {
		t.Errorf("expected same-shape distance (%g) below different-shape distance (%g)", distSame, distOther)
	}
}

func TestSquaredDistance(t *testing.T) {
	a := Point3D{X: 1, Y: 2, Z: 3}
	b := Point3D{X: 4, Y: 6, Z: 3}

	// 3-4-5 triangle in the XY plane.
	if d := squaredDistance(a, b); d != 25 {
		t.Errorf("expected squared distance 25, got %g", d)
	}
}

package engine

import "math"

// PathPair is one step of an alignment path: index i into the reference
// trajectory matched against index j of the patient trajectory.
type PathPair struct {
	I int
	J int
}

// alignDTW computes the lowest-cost monotonic alignment between two
// centered trajectories under a Sakoe-Chiba band of the given radius.
// The local cost of matching reference[i] to query[j] is the squared
// Euclidean distance across all three axes; the returned distance is the
// square root of the cumulative cost at the end cell.
//
// If the length difference exceeds the radius no in-band path can reach
// the end cell, so the effective radius is widened to |n-m|. This
// widening is transparent to callers.
//
// Tie-break between predecessors of equal cumulative cost is fixed:
// diagonal (i-1,j-1) first, then (i-1,j), then (i,j-1). The order must
// not change; path-dependent metrics rely on it being reproducible.
func alignDTW(reference, query Trajectory, radius int) ([]PathPair, float64) {
	n := len(reference)
	m := len(query)

	if diff := n - m; diff > radius {
		radius = diff
	} else if -diff > radius {
		radius = -diff
	}

	// Cumulative cost grid, unreachable cells stay at +Inf.
	cum := make([][]float64, n)
	for i := range cum {
		cum[i] = make([]float64, m)
		for j := range cum[i] {
			cum[i][j] = math.Inf(1)
		}
	}

	for i := 0; i < n; i++ {
		lo := i - radius
		if lo < 0 {
			lo = 0
		}
		hi := i + radius
		if hi > m-1 {
			hi = m - 1
		}

		for j := lo; j <= hi; j++ {
			cost := squaredDistance(reference[i], query[j])

			if i == 0 && j == 0 {
				cum[0][0] = cost
				continue
			}

			best := math.Inf(1)
			if i > 0 && j > 0 && cum[i-1][j-1] < best {
				best = cum[i-1][j-1]
			}
			if i > 0 && cum[i-1][j] < best {
				best = cum[i-1][j]
			}
			if j > 0 && cum[i][j-1] < best {
				best = cum[i][j-1]
			}

			cum[i][j] = cost + best
		}
	}

	path := backtrack(cum, n, m)
	return path, math.Sqrt(cum[n-1][m-1])
}

// backtrack recovers the optimal path from the end cell to (0,0),
// following at each step the minimal-cost predecessor with the fixed
// preference order diagonal, then up, then left.
func backtrack(cum [][]float64, n, m int) []PathPair {
	path := []PathPair{{n - 1, m - 1}}
	i, j := n-1, m-1

	for i > 0 || j > 0 {
		bestI, bestJ := i, j
		best := math.Inf(1)

		// Strict < keeps the earlier candidate on ties: diagonal wins
		// over up, up wins over left.
		if i > 0 && j > 0 && cum[i-1][j-1] < best {
			best = cum[i-1][j-1]
			bestI, bestJ = i-1, j-1
		}
		if i > 0 && cum[i-1][j] < best {
			best = cum[i-1][j]
			bestI, bestJ = i-1, j
		}
		if j > 0 && cum[i][j-1] < best {
			bestI, bestJ = i, j-1
		}

		i, j = bestI, bestJ
		path = append(path, PathPair{i, j})
	}

	// Reverse into forward order.
	for a, b := 0, len(path)-1; a < b; a, b = a+1, b-1 {
		path[a], path[b] = path[b], path[a]
	}

	return path
}

// squaredDistance is the squared Euclidean distance between two points
// across all three axes combined.
func squaredDistance(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return dx*dx + dy*dy + dz*dz
}

package tsp

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// BuildDistanceMatrix precomputes the pairwise Euclidean distances
// between all cities into a symmetric matrix for O(1) lookup during
// fitness evaluation. The matrix has a zero diagonal and is built once
// per run; callers treat it as read-only thereafter.
//
// It fails with an invalid-input error if the city list is empty or any
// coordinate is NaN or infinite.
func BuildDistanceMatrix(cities []City) (*mat.SymDense, error) {
	n := len(cities)
	if n == 0 {
		return nil, NewInvalidInputf("city list is empty").WithOperation("BuildDistanceMatrix")
	}
	for i, c := range cities {
		if math.IsNaN(c.X) || math.IsNaN(c.Y) || math.IsInf(c.X, 0) || math.IsInf(c.Y, 0) {
			return nil, NewInvalidInputf("city %d has non-finite coordinate (%g, %g)", i, c.X, c.Y).
				WithOperation("BuildDistanceMatrix")
		}
	}

	d := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d.SetSym(i, j, math.Hypot(cities[i].X-cities[j].X, cities[i].Y-cities[j].Y))
		}
	}
	return d, nil
}

package tsp

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Tour is an ordered sequence of city indices visiting every city
// exactly once. Every genetic operator must preserve this permutation
// property; Validate checks it.
type Tour []int

// Length returns the closed-loop length of the tour: the sum of the
// distances between consecutive cities plus the distance from the last
// city back to the first.
func (t Tour) Length(d *mat.SymDense) float64 {
	total := 0.0
	for i := 0; i < len(t); i++ {
		next := (i + 1) % len(t)
		total += d.At(t[i], t[next])
	}
	return total
}

// Fitness returns the inverse of the tour length, so that shorter tours
// score higher. A zero-length tour (single city, or all cities
// coincident) returns math.MaxFloat64 as a "perfect" sentinel rather
// than dividing by zero.
func (t Tour) Fitness(d *mat.SymDense) float64 {
	length := t.Length(d)
	if length == 0 {
		return math.MaxFloat64
	}
	return 1 / length
}

// Validate checks that the tour is a permutation of {0..n-1}. A failure
// after a genetic operator is a logic defect and is reported as an
// invariant-violation error.
func (t Tour) Validate(n int) error {
	if len(t) != n {
		return NewInvariantViolationf("tour length must be %d (got %d)", n, len(t))
	}
	seen := make([]bool, n)
	for i, c := range t {
		if c < 0 || c >= n {
			return NewInvariantViolationf("tour[%d]=%d out of range [0,%d)", i, c, n)
		}
		if seen[c] {
			return NewInvariantViolationf("duplicate city %d in tour", c)
		}
		seen[c] = true
	}
	return nil
}

// Clone returns an independent copy of the tour.
func (t Tour) Clone() Tour {
	c := make(Tour, len(t))
	copy(c, t)
	return c
}

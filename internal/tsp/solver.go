package tsp

import (
	"context"
)

// Solver defines the interface for TSP solving algorithms
type Solver interface {
	// Solve runs the search over the given cities
	Solve(ctx context.Context, cities []City) (*Result, error)

	// BestSolution returns the best solution found so far
	BestSolution() *Solution

	// Stop gracefully stops a running solve
	Stop()
}

// City is an immutable 2D coordinate. A city is identified by its
// index in the input slice; the slice is fixed for the lifetime of a run.
type City struct {
	X float64
	Y float64
}

// ProgressFunc is invoked once per generation with the generation index
// and the best tour distance recorded so far.
type ProgressFunc func(generation int, bestDistance float64)

// SolverConfig contains configuration for a solver run
type SolverConfig struct {
	// Number of tours per generation. Must be even: children are
	// produced in pairs and an odd size would silently truncate.
	PopulationSize int

	// Number of generations to evolve
	Generations int

	// Probability that a child is mutated, one trial per child
	MutationRate float64

	// Number of tournament draws per selection
	TournamentSize int

	// Random seed for reproducibility; 0 means time-seeded
	RandomSeed int64

	// Optional progress callback
	OnGeneration ProgressFunc
}

// Validate checks the configuration against the documented bounds.
// It does not apply defaults; callers that want defaults set them first.
func (c SolverConfig) Validate() error {
	if c.PopulationSize <= 0 {
		return NewInvalidConfigf("population size must be positive (got %d)", c.PopulationSize)
	}
	if c.PopulationSize%2 != 0 {
		return NewInvalidConfigf("population size must be even (got %d)", c.PopulationSize)
	}
	if c.Generations < 0 {
		return NewInvalidConfigf("generation count must be non-negative (got %d)", c.Generations)
	}
	if c.MutationRate < 0 || c.MutationRate > 1 {
		return NewInvalidConfigf("mutation rate must be in [0,1] (got %g)", c.MutationRate)
	}
	if c.TournamentSize <= 0 {
		return NewInvalidConfigf("tournament size must be positive (got %d)", c.TournamentSize)
	}
	return nil
}

// Solution is a tour together with its closed-loop distance
type Solution struct {
	Tour     Tour
	Distance float64
}

// Result contains the outcome of a solver run
type Result struct {
	BestSolution *Solution
	Generations  int
	Evaluations  int
}

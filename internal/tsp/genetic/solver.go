// Package genetic implements a genetic-algorithm TSP solver: tournament
// selection, order crossover and swap mutation over a population of
// candidate tours, with the best tour ever seen tracked separately from
// the evolving population.
package genetic

import (
	"context"
	"math/rand"
	"time"

	"github.com/ErickLaufer/Caixeiro-Viajante/internal/tsp"
)

const (
	// DefaultPopulationSize is used when the config leaves the
	// population size zero.
	DefaultPopulationSize = 100
	// DefaultTournamentSize is used when the config leaves the
	// tournament size zero.
	DefaultTournamentSize = 5
)

// GeneticSolver implements tsp.Solver with a generational genetic
// algorithm. The solver is purely sequential; the run is reproducible
// bit-for-bit when a non-zero seed is configured.
type GeneticSolver struct {
	// Configuration
	config tsp.SolverConfig

	// Random number generator, the only shared resource of a run
	rng *rand.Rand

	// Best solution found
	best *tsp.Solution

	// For cancellation
	cancel context.CancelFunc
}

// NewGeneticSolver creates a new solver for the given configuration.
// Zero values for population and tournament size receive defaults;
// everything else is validated strictly.
func NewGeneticSolver(config tsp.SolverConfig) (*GeneticSolver, error) {
	if config.PopulationSize == 0 {
		config.PopulationSize = DefaultPopulationSize
	}
	if config.TournamentSize == 0 {
		config.TournamentSize = DefaultTournamentSize
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(config.RandomSeed))
	if config.RandomSeed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &GeneticSolver{
		config: config,
		rng:    rng,
	}, nil
}

// Solve evolves a population of random tours for the configured number
// of generations and returns the shortest tour seen at any point.
// Cancellation is honored at generation boundaries only, never
// mid-generation.
func (gs *GeneticSolver) Solve(ctx context.Context, cities []tsp.City) (*tsp.Result, error) {
	ctx, gs.cancel = context.WithCancel(ctx)
	defer gs.cancel()

	dists, err := tsp.BuildDistanceMatrix(cities)
	if err != nil {
		return nil, err
	}
	n := len(cities)

	pop := NewPopulation(gs.config.PopulationSize, n, gs.rng)
	evaluations := gs.config.PopulationSize

	// Seed the best-so-far record from generation 0. The record is
	// elitism by memory: the population itself has no guaranteed
	// survival of its fittest member.
	b := bestOf(pop, dists)
	gs.best = &tsp.Solution{
		Tour:     pop[b].Clone(),
		Distance: pop[b].Length(dists),
	}

	for gen := 0; gen < gs.config.Generations; gen++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		next := make([]tsp.Tour, 0, gs.config.PopulationSize)
		for len(next) < gs.config.PopulationSize {
			parentA := tournamentSelect(pop, dists, gs.rng, gs.config.TournamentSize)
			parentB := tournamentSelect(pop, dists, gs.rng, gs.config.TournamentSize)

			// Parent order is swapped for the second child to
			// diversify the offspring of one pairing.
			childA := orderCrossover(parentA, parentB, gs.rng)
			childB := orderCrossover(parentB, parentA, gs.rng)

			if gs.rng.Float64() < gs.config.MutationRate {
				swapMutate(childA, gs.rng)
			}
			if gs.rng.Float64() < gs.config.MutationRate {
				swapMutate(childB, gs.rng)
			}

			if err := childA.Validate(n); err != nil {
				return nil, err
			}
			if err := childB.Validate(n); err != nil {
				return nil, err
			}

			next = append(next, childA, childB)
		}
		pop = next
		evaluations += gs.config.PopulationSize

		b := bestOf(pop, dists)
		if l := pop[b].Length(dists); l < gs.best.Distance {
			gs.best = &tsp.Solution{
				Tour:     pop[b].Clone(),
				Distance: l,
			}
		}

		if gs.config.OnGeneration != nil {
			gs.config.OnGeneration(gen, gs.best.Distance)
		}
	}

	return &tsp.Result{
		BestSolution: gs.best,
		Generations:  gs.config.Generations,
		Evaluations:  evaluations,
	}, nil
}

// BestSolution returns the best solution found so far
func (gs *GeneticSolver) BestSolution() *tsp.Solution {
	return gs.best
}

// Stop stops a running solve at the next generation boundary
func (gs *GeneticSolver) Stop() {
	if gs.cancel != nil {
		gs.cancel()
	}
}

package genetic

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/ErickLaufer/Caixeiro-Viajante/internal/tsp"
)

// NewPopulation produces size independent random permutations of
// {0..numCities-1}. Randomness goes through the injected generator so
// that a seeded run is reproducible.
func NewPopulation(size, numCities int, rng *rand.Rand) []tsp.Tour {
	pop := make([]tsp.Tour, size)
	for i := range pop {
		pop[i] = tsp.Tour(rng.Perm(numCities))
	}
	return pop
}

// bestOf returns the index of the shortest tour in the population,
// ties broken by first-encountered.
func bestOf(pop []tsp.Tour, d *mat.SymDense) int {
	best := 0
	bestLen := pop[0].Length(d)
	for i := 1; i < len(pop); i++ {
		if l := pop[i].Length(d); l < bestLen {
			best = i
			bestLen = l
		}
	}
	return best
}

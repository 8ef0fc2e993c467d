package genetic

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/ErickLaufer/Caixeiro-Viajante/internal/tsp"
)

// tournamentSelect draws k individuals uniformly at random with
// replacement and returns the one with the highest fitness. Ties are
// broken by first-encountered so that a fixed seed yields a fixed
// outcome.
func tournamentSelect(pop []tsp.Tour, d *mat.SymDense, rng *rand.Rand, k int) tsp.Tour {
	if k > len(pop) {
		k = len(pop)
	}
	best := pop[rng.Intn(len(pop))]
	bestFit := best.Fitness(d)
	for i := 1; i < k; i++ {
		cand := pop[rng.Intn(len(pop))]
		if f := cand.Fitness(d); f > bestFit {
			best = cand
			bestFit = f
		}
	}
	return best
}

// orderCrossover picks two cut points start <= end over the tour length
// and recombines the parents with orderCrossoverAt.
func orderCrossover(a, b tsp.Tour, rng *rand.Rand) tsp.Tour {
	n := len(a)
	start := rng.Intn(n + 1)
	end := rng.Intn(n + 1)
	if start > end {
		start, end = end, start
	}
	return orderCrossoverAt(a, b, start, end)
}

// orderCrossoverAt copies a[start:end] verbatim into the child at the
// same positions, then fills the remaining positions left to right with
// the cities of b in b's own order, skipping any city already placed.
// The child is always a valid permutation: the copied slice contributes
// each of its cities once, and the fill pass contributes every other
// city exactly once.
func orderCrossoverAt(a, b tsp.Tour, start, end int) tsp.Tour {
	n := len(a)
	child := make(tsp.Tour, n)
	used := make([]bool, n)
	for i := range child {
		child[i] = -1
	}
	for i := start; i < end; i++ {
		child[i] = a[i]
		used[a[i]] = true
	}
	pos := 0
	for _, city := range b {
		if used[city] {
			continue
		}
		for child[pos] != -1 {
			pos++
		}
		child[pos] = city
		pos++
	}
	return child
}

// swapMutate swaps the contents of two distinct positions in place.
// Tours of fewer than two cities are left unchanged.
func swapMutate(t tsp.Tour, rng *rand.Rand) {
	if len(t) < 2 {
		return
	}
	i := rng.Intn(len(t))
	j := rng.Intn(len(t) - 1)
	if j >= i {
		j++
	}
	t[i], t[j] = t[j], t[i]
}

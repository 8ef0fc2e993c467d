package genetic

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ErickLaufer/Caixeiro-Viajante/internal/tsp"
)

func gridCities(n int) []tsp.City {
	cities := make([]tsp.City, n)
	for i := range cities {
		cities[i] = tsp.City{X: float64(i % 5), Y: float64(i / 5)}
	}
	return cities
}

// Every tour produced by initialization must be a valid permutation,
// for all sizes and seeds.
func TestNewPopulationPermutationInvariant(t *testing.T) {
	for _, n := range []int{1, 2, 3, 10, 50} {
		for seed := int64(1); seed <= 5; seed++ {
			rng := rand.New(rand.NewSource(seed))
			pop := NewPopulation(20, n, rng)
			require.Len(t, pop, 20)
			for _, tour := range pop {
				require.NoError(t, tour.Validate(n))
			}
		}
	}
}

func TestOrderCrossoverAt(t *testing.T) {
	tests := []struct {
		name     string
		a, b     tsp.Tour
		start    int
		end      int
		expected tsp.Tour
	}{
		{
			name:     "middle slice",
			a:        tsp.Tour{0, 1, 2, 3, 4},
			b:        tsp.Tour{4, 3, 2, 1, 0},
			start:    1,
			end:      3,
			expected: tsp.Tour{4, 1, 2, 3, 0},
		},
		{
			name:  "empty slice is a pure reordering of b",
			a:     tsp.Tour{0, 1, 2, 3, 4},
			b:     tsp.Tour{4, 3, 2, 1, 0},
			start: 2,
			end:   2,
			// With nothing copied from a, the child is b verbatim.
			expected: tsp.Tour{4, 3, 2, 1, 0},
		},
		{
			name:     "full slice copies a verbatim",
			a:        tsp.Tour{3, 0, 4, 1, 2},
			b:        tsp.Tour{0, 1, 2, 3, 4},
			start:    0,
			end:      5,
			expected: tsp.Tour{3, 0, 4, 1, 2},
		},
		{
			name:     "slice at the end",
			a:        tsp.Tour{0, 1, 2, 3, 4},
			b:        tsp.Tour{2, 4, 0, 1, 3},
			start:    3,
			end:      5,
			expected: tsp.Tour{2, 0, 1, 3, 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			child := orderCrossoverAt(tt.a, tt.b, tt.start, tt.end)
			assert.Equal(t, tt.expected, child)
			assert.NoError(t, child.Validate(len(tt.a)))
		})
	}
}

// The crossover must never duplicate or drop a city, for any parents
// and any cut points.
func TestOrderCrossoverValidity(t *testing.T) {
	for _, n := range []int{1, 2, 5, 25} {
		rng := rand.New(rand.NewSource(7))
		for trial := 0; trial < 200; trial++ {
			a := tsp.Tour(rng.Perm(n))
			b := tsp.Tour(rng.Perm(n))
			child := orderCrossover(a, b, rng)
			require.NoError(t, child.Validate(n), "n=%d trial=%d parents %v / %v", n, trial, a, b)
		}
	}
}

func TestOrderCrossoverDoesNotAliasParents(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	a := tsp.Tour(rng.Perm(10))
	b := tsp.Tour(rng.Perm(10))
	aCopy := a.Clone()
	bCopy := b.Clone()

	_ = orderCrossover(a, b, rng)

	assert.Equal(t, aCopy, a)
	assert.Equal(t, bCopy, b)
}

func TestSwapMutate(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	for trial := 0; trial < 100; trial++ {
		tour := tsp.Tour(rng.Perm(12))
		before := tour.Clone()
		swapMutate(tour, rng)

		require.NoError(t, tour.Validate(12))

		// Exactly two positions differ after a swap of distinct
		// positions.
		changed := 0
		for i := range tour {
			if tour[i] != before[i] {
				changed++
			}
		}
		assert.Equal(t, 2, changed)
	}
}

func TestSwapMutateTinyTours(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	single := tsp.Tour{0}
	swapMutate(single, rng)
	assert.Equal(t, tsp.Tour{0}, single)

	pair := tsp.Tour{0, 1}
	swapMutate(pair, rng)
	assert.Equal(t, tsp.Tour{1, 0}, pair)
}

func TestTournamentSelect(t *testing.T) {
	cities := gridCities(6)
	d, err := tsp.BuildDistanceMatrix(cities)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(5))
	pop := NewPopulation(30, len(cities), rng)

	// With the tournament as large as the population, repeated draws
	// almost surely include the population's best; selection must then
	// return a tour at least as fit as most of the pool.
	selected := tournamentSelect(pop, d, rng, 30)
	require.NoError(t, selected.Validate(len(cities)))

	better := 0
	for _, tour := range pop {
		if tour.Length(d) < selected.Length(d) {
			better++
		}
	}
	assert.LessOrEqual(t, better, len(pop)/2)
}

func TestTournamentSelectClampsDrawCount(t *testing.T) {
	cities := gridCities(4)
	d, err := tsp.BuildDistanceMatrix(cities)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(9))
	pop := NewPopulation(2, len(cities), rng)

	// k larger than the population must not panic or bias the draw.
	selected := tournamentSelect(pop, d, rng, 100)
	require.NoError(t, selected.Validate(len(cities)))
}

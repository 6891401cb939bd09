package evolution

import (
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// selectIndex performs roulette-wheel selection: it draws r uniformly from
// [0, sum(weights)) and returns the first index whose cumulative weight exceeds r.
// Falls back to the last index when rounding leaves r at or above the total.
func selectIndex(rng *rand.Rand, weights []float64) int {
	if len(weights) == 0 {
		return -1
	}
	cum := make([]float64, len(weights))
	floats.CumSum(cum, weights)

	r := rng.Float64() * cum[len(cum)-1]
	for i, c := range cum {
		if c > r {
			return i
		}
	}
	return len(weights) - 1
}

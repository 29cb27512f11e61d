package weighted

import "math"

// Total sums the positive weights.
func Total(weights []float64) float64 {
	var sum float64
	for _, w := range weights {
		if w > 0 {
			sum += w
		}
	}
	return sum
}

// Walk returns the index of the first entry whose cumulative weight is >= roll.
// Non-positive weights never win, so roll=0 lands on the first positive entry
// and roll=Total lands on the last positive one. Returns -1 when the total is
// not positive or the roll lies past the total.
func Walk(weights []float64, roll float64) int {
	if math.IsNaN(roll) || math.IsInf(roll, 0) || roll < 0 {
		return -1
	}
	var cum float64
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		cum += w
		if roll <= cum {
			return i
		}
	}
	return -1
}

// Roll draws roll ∈ [0, total) from rng and walks weights.
func Roll(weights []float64, rng RandomSource) int {
	total := Total(weights)
	if total <= 0 {
		return -1
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	return Walk(weights, rng.Float64()*total)
}

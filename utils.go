package bayesopt

import "golang.org/x/exp/constraints"

//////
// Helper functions.
//////

// clamp projects v onto the closed interval [low, high].
//
// Returns:
// - low when v < low, high when v > high, v otherwise.
func clamp[T constraints.Ordered](v, low, high T) T {
	if v < low {
		return low
	}

	if v > high {
		return high
	}

	return v
}

// midpoints returns the per-dimension midpoints of a box.
func midpoints(bounds []Bound) []float64 {
	mid := make([]float64, len(bounds))

	for i, b := range bounds {
		mid[i] = b.Mid()
	}

	return mid
}

package bayesopt

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

//////
// Hyperparameter priors.
//////

// Priors holds the prior distributions over the surrogate's
// hyperparameters: one for the noise standard deviation, one for the
// signal standard deviation, and one shared across every length scale.
type Priors struct {
	// Noise is the prior over the observation noise standard deviation.
	Noise distuv.Uniform

	// Signal is the prior over the signal standard deviation.
	Signal distuv.Uniform

	// Length is the prior over each kernel length scale.
	Length distuv.Uniform
}

// DefaultPriors returns the fixed-form priors installed by NewPolicy:
// noise ~ U(0.01, 1), signal ~ U(0.01, 10), each length ~ U(0.01, 1).
func DefaultPriors(src rand.Source) Priors {
	return Priors{
		Noise:  distuv.Uniform{Min: 0.01, Max: 1.0, Src: src},
		Signal: distuv.Uniform{Min: 0.01, Max: 10.0, Src: src},
		Length: distuv.Uniform{Min: 0.01, Max: 1.0, Src: src},
	}
}

// Sample draws one hyperparameter configuration for a surrogate with the
// given input dimensionality.
func (p Priors) Sample(dims int) Hyperparameters {
	lengths := make([]float64, dims)

	for i := range lengths {
		lengths[i] = p.Length.Rand()
	}

	return Hyperparameters{
		Noise:   p.Noise.Rand(),
		Signal:  p.Signal.Rand(),
		Lengths: lengths,
	}
}

// Contains reports whether the configuration lies inside the priors'
// support.
func (p Priors) Contains(h Hyperparameters) bool {
	if h.Noise < p.Noise.Min || h.Noise > p.Noise.Max {
		return false
	}

	if h.Signal < p.Signal.Min || h.Signal > p.Signal.Max {
		return false
	}

	for _, ell := range h.Lengths {
		if ell < p.Length.Min || ell > p.Length.Max {
			return false
		}
	}

	return true
}

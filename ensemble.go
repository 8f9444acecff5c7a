package bayesopt

import "fmt"

//////
// Hyperparameter-marginalized index ensemble.
//////

// Ensemble combines one acquisition index per retained hyperparameter
// sample into a single averaged index. Its combined score at a point is
// the arithmetic mean of the member scores there, which approximates
// marginalizing the acquisition over hyperparameter uncertainty.
//
// An ensemble is immutable once built. Policy.AddData constructs a fresh
// one on every observation and swaps it in whole; ensembles are never
// patched incrementally.
type Ensemble struct {
	members []Index
}

// NewEnsemble builds an ensemble from an ordered list of member indices.
// At least one member is required.
func NewEnsemble(members []Index) (*Ensemble, error) {
	if len(members) == 0 {
		return nil, fmt.Errorf("ensemble requires at least one member index")
	}

	return &Ensemble{members: append([]Index(nil), members...)}, nil
}

// Size returns the number of member indices.
func (e *Ensemble) Size() int {
	return len(e.members)
}

// Index returns the combined index. With a single member the combined
// score equals that member's score exactly; averaging introduces no
// distortion.
func (e *Ensemble) Index() Index {
	members := e.members
	m := float64(len(members))

	return func(points [][]float64) []float64 {
		out := make([]float64, len(points))

		for _, member := range members {
			for i, score := range member(points) {
				out[i] += score
			}
		}

		for i := range out {
			out[i] /= m
		}

		return out
	}
}

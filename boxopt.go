package bayesopt

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/optimize"
)

//////
// Default box optimizer.
//////

// MultiStartSolver is the default BoxOptimizer: derivative-free
// Nelder-Mead restarted from the box midpoint plus a set of random points,
// with every evaluation clamped into the box. The best result across
// starts wins. Deterministic for a fixed rng seed.
type MultiStartSolver struct {
	rng *rand.Rand

	// Starts is the number of starting points. Zero selects
	// 5 + 5*sqrt(dims), which grows the search effort mildly with
	// dimensionality.
	Starts int
}

// NewMultiStartSolver creates a solver whose random starts are drawn from
// rng.
func NewMultiStartSolver(rng *rand.Rand) *MultiStartSolver {
	return &MultiStartSolver{rng: rng}
}

// Solve minimizes fn over the closed box and returns the best location and
// value found. The box midpoint is always evaluated, so a result exists
// even when every Nelder-Mead run fails to converge.
func (ms *MultiStartSolver) Solve(fn func(x []float64) float64, bounds []Bound) ([]float64, float64, error) {
	dims := len(bounds)
	if dims == 0 {
		return nil, 0, fmt.Errorf("solve: empty bounds")
	}

	// Nelder-Mead itself is unconstrained; the objective projects every
	// query into the box so the simplex cannot wander off. The projection
	// goes through a scratch buffer because optimize.Problem.Func must not
	// modify its argument.
	buf := make([]float64, dims)

	clamped := func(x []float64) float64 {
		for i := range x {
			buf[i] = clamp(x[i], bounds[i].Low, bounds[i].High)
		}

		return fn(buf)
	}

	nStarts := ms.Starts
	if nStarts == 0 {
		nStarts = 5 + int(5*math.Sqrt(float64(dims)))
	}

	starts := make([][]float64, nStarts)

	starts[0] = make([]float64, dims)
	for j, b := range bounds {
		starts[0][j] = b.Mid()
	}

	for i := 1; i < nStarts; i++ {
		starts[i] = make([]float64, dims)

		for j, b := range bounds {
			starts[i][j] = b.Low + ms.rng.Float64()*(b.High-b.Low)
		}
	}

	problem := optimize.Problem{Func: clamped}

	settings := &optimize.Settings{
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-8,
			Relative:   1e-8,
			Iterations: 100,
		},
	}

	bestX := append([]float64(nil), starts[0]...)
	bestVal := clamped(bestX)

	for _, start := range starts {
		result, err := optimize.Minimize(problem, start, settings, &optimize.NelderMead{})
		if err != nil || result == nil {
			continue
		}

		for i := range result.X {
			result.X[i] = clamp(result.X[i], bounds[i].Low, bounds[i].High)
		}

		// Re-evaluate at the clamped location: result.F belongs to the
		// unclamped final iterate.
		if v := fn(result.X); v < bestVal {
			bestVal = v
			bestX = append(bestX[:0], result.X...)
		}
	}

	return bestX, bestVal, nil
}

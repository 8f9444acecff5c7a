package bayesopt

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

//////
// Acquisition strategies and their registry.
//////

// zeroStd is the posterior standard deviation below which a prediction is
// treated as certain. IEEE division by a vanishing standard deviation
// produces ±Inf/NaN inside the improvement formulas, so each strategy
// defines an explicit limit instead: EI collapses to max(d, 0), PI to the
// 0/1 step.
const zeroStd = 1e-10

// Registry maps acquisition strategy names to constructors. It is an
// explicit value handed to NewPolicy rather than process-global state, so
// two policies can carry different strategy sets without interfering.
type Registry map[string]Constructor

// DefaultRegistry returns a registry holding the four built-in strategies:
// "gpei", "gppi", "gpucb" and "thompson".
func DefaultRegistry() Registry {
	return Registry{
		"gpei":     GPEI,
		"gppi":     GPPI,
		"gpucb":    GPUCB,
		"thompson": Thompson,
	}
}

// Register adds a named constructor, replacing any previous entry with the
// same name.
func (r Registry) Register(name string, ctor Constructor) {
	r[name] = ctor
}

// Build constructs the named strategy's index against the given surrogate.
// Returns ErrUnknownAcquisition when the name has no registered
// constructor.
func (r Registry) Build(name string, s Surrogate, params AcquisitionParams) (Index, error) {
	ctor, ok := r[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAcquisition, name)
	}

	return ctor(s, params)
}

// GPEI constructs the Expected Improvement index,
//
//	EI(x) = d*CDF(z) + s*PDF(z),  d = mean - fmax - xi,  z = d/s
//
// where fmax is the best observed objective value, snapshotted once at
// construction (0 with no data). Params.Xi (default 0) trades exploitation
// against exploration. EI is never negative; at zero posterior variance it
// collapses to the certain improvement max(d, 0).
func GPEI(s Surrogate, params AcquisitionParams) (Index, error) {
	fmax := bestObserved(s)
	xi := params.Xi

	index := func(points [][]float64) []float64 {
		mean, variance := s.Posterior(points)

		for i := range mean {
			sd := math.Sqrt(variance[i])
			d := mean[i] - fmax - xi

			if sd <= zeroStd {
				mean[i] = math.Max(d, 0)

				continue
			}

			z := d / sd

			mean[i] = d*distuv.UnitNormal.CDF(z) + sd*distuv.UnitNormal.Prob(z)
		}

		return mean
	}

	return index, nil
}

// GPPI constructs the Probability of Improvement index,
//
//	PI(x) = CDF((mean - fmax - xi) / s)
//
// with fmax snapshotted at construction. Params.Xi defaults to 0.05.
// Values always lie in [0, 1]; at zero posterior variance the index is the
// step function (1 where an improvement is certain, 0 otherwise).
func GPPI(s Surrogate, params AcquisitionParams) (Index, error) {
	fmax := bestObserved(s)

	xi := params.Xi
	if xi == 0 {
		xi = 0.05
	}

	index := func(points [][]float64) []float64 {
		mean, variance := s.Posterior(points)

		for i := range mean {
			sd := math.Sqrt(variance[i])
			d := mean[i] - fmax - xi

			if sd <= zeroStd {
				if d > 0 {
					mean[i] = 1
				} else {
					mean[i] = 0
				}

				continue
			}

			mean[i] = distuv.UnitNormal.CDF(d / sd)
		}

		return mean
	}

	return index, nil
}

// GPUCB constructs the Upper Confidence Bound index,
//
//	UCB(x) = mean + sqrt(beta_t * variance)
//	beta_t = a + b*ln(ndata+1)
//	a = xi*2*ln(pi^2 / (3*delta)),  b = xi*(4+dims)
//
// Params.Delta (default 0.1) is the confidence decay and Params.Xi
// (default 0.2) the overall scale; dims is read from the surrogate's
// kernel. The coefficients a and b are snapshotted at construction, but
// beta_t is recomputed from the surrogate's live NData on every scoring
// call, so the bound keeps tightening as observations accumulate even on a
// single constructed index.
func GPUCB(s Surrogate, params AcquisitionParams) (Index, error) {
	delta := params.Delta
	if delta == 0 {
		delta = 0.1
	}

	xi := params.Xi
	if xi == 0 {
		xi = 0.2
	}

	dims := s.Kernel().Dims()

	a := xi * 2 * math.Log(math.Pi*math.Pi/(3*delta))
	b := xi * (4 + float64(dims))

	index := func(points [][]float64) []float64 {
		mean, variance := s.Posterior(points)

		beta := a + b*math.Log(float64(s.NData())+1)

		for i := range mean {
			mean[i] += math.Sqrt(beta * variance[i])
		}

		return mean
	}

	return index, nil
}

// Thompson constructs a Thompson sampling index by delegating to the
// posterior sampler: one random realization of the surrogate's posterior
// function, approximated with Params.NFeatures (default 250) spectral
// features, is returned as the index directly.
func Thompson(s Surrogate, params AcquisitionParams) (Index, error) {
	if params.Sampler == nil {
		return nil, fmt.Errorf("thompson: no posterior sampler configured")
	}

	nfeatures := params.NFeatures
	if nfeatures == 0 {
		nfeatures = 250
	}

	return params.Sampler.Sample(s, nfeatures)
}

// bestObserved returns the best observed objective value, or 0 when the
// surrogate holds no data yet.
func bestObserved(s Surrogate) float64 {
	if s.NData() == 0 {
		return 0
	}

	_, fmax, err := s.Max()
	if err != nil {
		return 0
	}

	return fmax
}

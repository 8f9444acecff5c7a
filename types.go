package bayesopt

import "golang.org/x/exp/rand"

//////
// Core types and collaborator contracts.
//////

// Bound defines the closed interval searched along one dimension of the
// optimization domain. Every dimension must satisfy Low < High.
//
// Fields:
// - Low: The lower edge of the interval (inclusive)
// - High: The upper edge of the interval (inclusive)
//
// Usage:
//
//	// A two-dimensional box [0,1] x [-5,5]
//	bounds := []Bound{
//	    {Low: 0, High: 1},
//	    {Low: -5, High: 5},
//	}
//
// The domain is immutable once a Policy is constructed: the policy copies
// the bounds and never exposes the copy for mutation.
type Bound struct {
	// Low is the lower edge of the interval (inclusive).
	Low float64

	// High is the upper edge of the interval (inclusive).
	High float64
}

// Mid returns the midpoint of the interval, Low + (High-Low)/2.
func (b Bound) Mid() float64 {
	return b.Low + (b.High-b.Low)/2
}

// Index is a scoring function over a batch of candidate points. Each point
// is a vector of length d (the domain dimensionality); the returned slice
// holds one scalar score per point, in order.
//
// Index functions are pure: calling one does not mutate the surrogate it
// was built from. Higher scores indicate more promising points; the policy
// negates the index when handing it to a minimizing BoxOptimizer.
type Index func(points [][]float64) []float64

// Hyperparameters is one sampled surrogate configuration: a noise standard
// deviation, a signal standard deviation, and one length scale per input
// dimension. It is produced by a HyperparameterSampler and consumed by
// Surrogate.Copy; the policy passes it through without inspecting it.
type Hyperparameters struct {
	// Noise is the observation noise standard deviation.
	Noise float64

	// Signal is the signal standard deviation (kernel amplitude).
	Signal float64

	// Lengths holds one kernel length scale per input dimension.
	Lengths []float64
}

// Surrogate is the probabilistic model the policy scores candidates
// against. The canonical surrogate owned by a Policy is mutated only by
// AddData; Copy produces transient hyperparameter-substituted instances
// that share no mutable state with the original.
//
// The GP type in this package is the default implementation; any model
// exposing posterior sufficient statistics can stand in for it.
type Surrogate interface {
	// AddData appends one observation (x, y) to the model's dataset.
	// The dataset is append-only.
	AddData(x []float64, y float64)

	// NData returns the current number of observations.
	NData() int

	// Max returns the location and value of the best (highest) observed
	// objective value. It returns ErrNoData before any observation.
	Max() (x []float64, y float64, err error)

	// Posterior evaluates the model's posterior mean and variance at a
	// batch of candidate points. The returned slices have one entry per
	// point. Callers may reuse the variance slice as scratch space.
	Posterior(points [][]float64) (mean, variance []float64)

	// Data returns the observed inputs and outputs. The returned slices
	// must be treated as read-only.
	Data() (X [][]float64, Y []float64)

	// Noise returns the current observation noise standard deviation.
	Noise() float64

	// Kernel returns the model's covariance kernel.
	Kernel() Kernel

	// Copy returns an independent surrogate over the same dataset with the
	// given hyperparameters substituted. The copy shares no mutable state
	// with the receiver.
	Copy(h Hyperparameters) (Surrogate, error)
}

// HyperparameterSampler draws plausible surrogate configurations from the
// posterior over hyperparameters, conditioned on the surrogate's current
// dataset and the supplied priors.
//
// MetropolisSampler is the default implementation.
type HyperparameterSampler interface {
	// Sample returns an ordered sequence of n hyperparameter draws.
	Sample(s Surrogate, priors Priors, n int) ([]Hyperparameters, error)
}

// BoxOptimizer minimizes an objective over a closed box. The policy hands
// it the negated acquisition index, so the optimizer's minimum corresponds
// to the acquisition's maximum.
//
// MultiStartSolver is the default implementation.
type BoxOptimizer interface {
	// Solve minimizes fn over the box and returns the best location found
	// together with the objective value there.
	Solve(fn func(x []float64) float64, bounds []Bound) (x []float64, value float64, err error)
}

// PosteriorSampler draws one random realization of the surrogate's
// posterior function, approximated with nfeatures spectral features. Each
// call returns a new fixed realization; the realization itself is
// deterministic once drawn.
//
// FourierSampler is the default implementation, used by the thompson
// acquisition strategy.
type PosteriorSampler interface {
	Sample(s Surrogate, nfeatures int) (Index, error)
}

// AcquisitionParams carries the optional numeric parameters forwarded to
// acquisition constructors. A zero value selects the strategy's own
// default, so the zero AcquisitionParams is always valid.
type AcquisitionParams struct {
	// Xi is the exploration margin used by gpei (default 0.0), gppi
	// (default 0.05) and gpucb (default 0.2, where it scales the
	// confidence width).
	Xi float64

	// Delta is the confidence decay used by gpucb. Default 0.1.
	Delta float64

	// NFeatures is the number of spectral features used by thompson.
	// Default 250.
	NFeatures int

	// Sampler is the posterior sampler used by thompson. The policy fills
	// this in from its own configuration before building an index.
	Sampler PosteriorSampler
}

// Constructor builds an acquisition index from a fitted surrogate. All
// built-in constructors except thompson snapshot what they need from the
// surrogate at construction time; see Registry for the one documented
// exception (gpucb's live ndata read).
type Constructor func(s Surrogate, params AcquisitionParams) (Index, error)

// PolicyConfig controls how a Policy builds and rebuilds its acquisition
// index. Use DefaultPolicyConfig as a starting point.
type PolicyConfig struct {
	// Acquisition names the strategy used to score candidates. Must be a
	// key of Registry. Default "gpucb".
	Acquisition string

	// Kernel names the surrogate's covariance kernel. Default "Matern3".
	Kernel string

	// AcqParams holds extra parameters forwarded to every ensemble
	// member's constructor.
	AcqParams AcquisitionParams

	// SampleCount is the number of hyperparameter draws taken on each
	// AddData call. Default 100.
	SampleCount int

	// EnsembleSize is the number of trailing draws retained as ensemble
	// members. Must not exceed SampleCount. Default 1, which makes the
	// marginalization a single-sample approximation; see Ensemble.
	EnsembleSize int

	// Registry maps acquisition names to constructors. Nil selects
	// DefaultRegistry().
	Registry Registry

	// Sampler draws hyperparameter configurations. Nil selects a
	// MetropolisSampler seeded from Rand.
	Sampler HyperparameterSampler

	// Solver optimizes the index over the domain. Nil selects a
	// MultiStartSolver seeded from Rand.
	Solver BoxOptimizer

	// Posterior draws posterior function realizations for thompson. Nil
	// selects a FourierSampler seeded from Rand.
	Posterior PosteriorSampler

	// Rand seeds the default collaborators above. Nil falls back to a
	// time-seeded generator, making runs non-reproducible.
	Rand *rand.Rand
}

package bayesopt

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/exp/rand"
)

//////
// Policy façade.
//////

// Policy is a sequential Bayesian optimization policy over a bounded
// continuous domain. Given observations of an expensive black-box
// objective it decides, one call at a time, which point to evaluate next.
//
// Lifecycle:
//
//	policy, err := NewPolicy(bounds, DefaultPolicyConfig())
//	for i := 0; i < budget; i++ {
//	    x, err := policy.Next()
//	    y := objective(x)
//	    err = policy.AddData(x, y)
//	}
//	best, err := policy.Best()
//
// Each AddData call re-samples the surrogate's hyperparameters and
// rebuilds the acquisition index from scratch; the previous index is
// dropped ("latest wins", no history). Dataset append and index swap
// happen under one mutex, so Next never observes a torn
// new-dataset/old-index state.
//
// A Policy is safe for concurrent use, but the operations serialize on a
// single mutex: this is a synchronous decision loop, not a parallel one.
type Policy struct {
	// mu makes dataset-append plus index-swap one critical section and
	// serializes Next/Best against AddData.
	mu sync.Mutex

	// bounds is the immutable search domain.
	bounds []Bound

	// surrogate is the canonical model; mutated only by AddData.
	surrogate Surrogate

	// priors are the fixed-form hyperparameter priors.
	priors Priors

	// build constructs one acquisition index per ensemble member.
	build Constructor

	// params are forwarded to every member's constructor.
	params AcquisitionParams

	// sampler draws hyperparameter configurations on every AddData.
	sampler HyperparameterSampler

	// solver maximizes the index over the domain (by minimizing its
	// negation).
	solver BoxOptimizer

	// nsamples and nkeep are the draw count and retained ensemble size.
	nsamples, nkeep int

	// index is the current combined index; nil until the first AddData.
	index Index
}

// DefaultPolicyConfig returns the canonical configuration: gpucb
// acquisition on a Matérn 3/2 kernel, 100 hyperparameter draws per
// observation with the trailing 1 retained.
func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		Acquisition:  "gpucb",
		Kernel:       "Matern3",
		SampleCount:  100,
		EnsembleSize: 1,
	}
}

// NewPolicy creates a policy over the given domain. Zero-valued config
// fields fall back to DefaultPolicyConfig; nil collaborators fall back to
// the package defaults seeded from config.Rand.
//
// The surrogate starts with noise std 0.5, signal std 1.0 and one length
// scale of (high-low)/10 per dimension, and the fixed priors described on
// DefaultPriors.
//
// Fails with ErrUnknownAcquisition or ErrUnknownKernel for unrecognized
// names and ErrInvalidBounds for an empty or inverted domain; no surrogate
// is created on failure.
func NewPolicy(bounds []Bound, config PolicyConfig) (*Policy, error) {
	if config.Acquisition == "" {
		config.Acquisition = "gpucb"
	}

	if config.Kernel == "" {
		config.Kernel = "Matern3"
	}

	if config.SampleCount == 0 {
		config.SampleCount = 100
	}

	if config.EnsembleSize == 0 {
		config.EnsembleSize = 1
	}

	registry := config.Registry
	if registry == nil {
		registry = DefaultRegistry()
	}

	build, ok := registry[config.Acquisition]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAcquisition, config.Acquisition)
	}

	if len(bounds) == 0 {
		return nil, fmt.Errorf("%w: empty domain", ErrInvalidBounds)
	}

	for i, b := range bounds {
		if !(b.Low < b.High) {
			return nil, fmt.Errorf("%w: dimension %d has [%v, %v]", ErrInvalidBounds, i, b.Low, b.High)
		}
	}

	if config.EnsembleSize < 1 || config.EnsembleSize > config.SampleCount {
		return nil, fmt.Errorf("ensemble size must be in [1, %d], got %d",
			config.SampleCount, config.EnsembleSize)
	}

	lengths := make([]float64, len(bounds))
	for i, b := range bounds {
		lengths[i] = (b.High - b.Low) / 10
	}

	kernel, err := NewKernel(config.Kernel, 1.0, lengths)
	if err != nil {
		return nil, err
	}

	rng := config.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}

	sampler := config.Sampler
	if sampler == nil {
		sampler = NewMetropolisSampler(rng)
	}

	solver := config.Solver
	if solver == nil {
		solver = NewMultiStartSolver(rng)
	}

	posterior := config.Posterior
	if posterior == nil {
		posterior = NewFourierSampler(rng)
	}

	params := config.AcqParams
	if params.Sampler == nil {
		params.Sampler = posterior
	}

	return &Policy{
		bounds:    append([]Bound(nil), bounds...),
		surrogate: NewGP(kernel, 0.5),
		priors:    DefaultPriors(rng),
		build:     build,
		params:    params,
		sampler:   sampler,
		solver:    solver,
		nsamples:  config.SampleCount,
		nkeep:     config.EnsembleSize,
	}, nil
}

// AddData feeds one observation back into the policy: it appends (x, y) to
// the surrogate's dataset, redraws hyperparameter samples conditioned on
// the grown dataset, and rebuilds the combined acquisition index from the
// trailing EnsembleSize draws. Each retained draw scores through its own
// hyperparameter-substituted surrogate copy; the canonical surrogate's
// hyperparameters are never touched.
//
// Collaborator failures propagate unchanged and leave the previous index
// installed. A sampling failure after the append leaves the dataset grown
// but the index stale, mirroring the no-retry contract.
func (p *Policy) AddData(x []float64, y float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(x) != len(p.bounds) {
		return fmt.Errorf("add data: %w: point has %d dimensions, domain has %d",
			ErrDimensionMismatch, len(x), len(p.bounds))
	}

	p.surrogate.AddData(x, y)

	hypers, err := p.sampler.Sample(p.surrogate, p.priors, p.nsamples)
	if err != nil {
		return fmt.Errorf("add data: %w", err)
	}

	if len(hypers) < p.nkeep {
		return fmt.Errorf("add data: sampler returned %d draws, need at least %d", len(hypers), p.nkeep)
	}

	members := make([]Index, 0, p.nkeep)

	for _, h := range hypers[len(hypers)-p.nkeep:] {
		model, err := p.surrogate.Copy(h)
		if err != nil {
			return fmt.Errorf("add data: %w", err)
		}

		member, err := p.build(model, p.params)
		if err != nil {
			return fmt.Errorf("add data: %w", err)
		}

		members = append(members, member)
	}

	ensemble, err := NewEnsemble(members)
	if err != nil {
		return fmt.Errorf("add data: %w", err)
	}

	p.index = ensemble.Index()

	return nil
}

// Next returns the next point to evaluate. Before any observation it is
// the exact per-dimension midpoint of the domain, computed without
// touching the optimizer or the (still absent) index. Afterwards the box
// optimizer minimizes the negated combined index over the domain and the
// reported location is returned; the optimizer's objective value is
// discarded.
//
// Returns ErrNoIndex if the surrogate holds data but no index has been
// built; under the AddData contract this state is unreachable.
func (p *Policy) Next() ([]float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.surrogate.NData() == 0 {
		return midpoints(p.bounds), nil
	}

	if p.index == nil {
		return nil, ErrNoIndex
	}

	index := p.index

	negated := func(x []float64) float64 {
		return -index([][]float64{x})[0]
	}

	x, _, err := p.solver.Solve(negated, p.bounds)
	if err != nil {
		return nil, fmt.Errorf("next: %w", err)
	}

	return x, nil
}

// Best returns the location of the best observed objective value, as
// tracked by the surrogate. The surrogate's own no-data error (ErrNoData
// for the GP default) passes through before any observation.
func (p *Policy) Best() ([]float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	x, _, err := p.surrogate.Max()
	if err != nil {
		return nil, err
	}

	return x, nil
}

// Bounds returns a copy of the policy's domain.
func (p *Policy) Bounds() []Bound {
	return append([]Bound(nil), p.bounds...)
}

// NData returns the number of observations fed to the policy so far.
func (p *Policy) NData() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.surrogate.NData()
}

package bayesopt

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
)

//////
// Default hyperparameter sampler.
//////

// marginaler is the optional surrogate capability MetropolisSampler uses
// to weigh proposals. GP implements it; surrogates that do not are sampled
// from the prior alone.
type marginaler interface {
	LogMarginal() float64
}

// MetropolisSampler draws hyperparameter configurations from the posterior
// over hyperparameters with an independence Metropolis chain: proposals
// come from the priors, and each is accepted on the marginal-likelihood
// ratio against the current state. Uniform priors cancel out of the ratio,
// so only the likelihoods are compared.
//
// The likelihood of a proposal is evaluated on a hyperparameter-
// substituted copy of the surrogate; the canonical surrogate is never
// mutated. When the surrogate does not expose a log marginal likelihood
// the chain degenerates to plain prior sampling, which keeps the sampler
// usable with any Surrogate.
type MetropolisSampler struct {
	rng *rand.Rand
}

// NewMetropolisSampler creates a sampler driven by rng. The chain is
// deterministic for a fixed seed and dataset.
func NewMetropolisSampler(rng *rand.Rand) *MetropolisSampler {
	return &MetropolisSampler{rng: rng}
}

// Sample returns an ordered sequence of n hyperparameter draws conditioned
// on the surrogate's current dataset and the supplied priors. Draws are
// the states of the chain after each proposal, so consecutive entries may
// repeat when proposals are rejected. Copy failures propagate unchanged.
func (ms *MetropolisSampler) Sample(s Surrogate, priors Priors, n int) ([]Hyperparameters, error) {
	if n < 1 {
		return nil, fmt.Errorf("sample count must be at least 1, got %d", n)
	}

	dims := s.Kernel().Dims()

	current := priors.Sample(dims)

	currentLL, err := ms.logLikelihood(s, current)
	if err != nil {
		return nil, err
	}

	out := make([]Hyperparameters, 0, n)

	for i := 0; i < n; i++ {
		proposal := priors.Sample(dims)

		proposalLL, err := ms.logLikelihood(s, proposal)
		if err != nil {
			return nil, err
		}

		if proposalLL >= currentLL || ms.rng.Float64() < math.Exp(proposalLL-currentLL) {
			current = proposal
			currentLL = proposalLL
		}

		out = append(out, current)
	}

	return out, nil
}

// logLikelihood evaluates the data log likelihood under the proposed
// hyperparameters. A flat 0 is returned for surrogates without a marginal
// likelihood, which makes every proposal accepted.
func (ms *MetropolisSampler) logLikelihood(s Surrogate, h Hyperparameters) (float64, error) {
	c, err := s.Copy(h)
	if err != nil {
		return 0, fmt.Errorf("sampling hyperparameters: %w", err)
	}

	if m, ok := c.(marginaler); ok {
		return m.LogMarginal(), nil
	}

	return 0, nil
}

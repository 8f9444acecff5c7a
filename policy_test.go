package bayesopt

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/exp/rand"
)

// failingSampler always errors, simulating a broken collaborator.
type failingSampler struct{}

func (failingSampler) Sample(Surrogate, Priors, int) ([]Hyperparameters, error) {
	return nil, errors.New("sampler exploded")
}

func seededConfig(seed uint64) PolicyConfig {
	config := DefaultPolicyConfig()
	config.Rand = rand.New(rand.NewSource(seed))

	return config
}

func TestNewPolicyUnknownAcquisition(t *testing.T) {
	config := DefaultPolicyConfig()
	config.Acquisition = "nope"

	_, err := NewPolicy([]Bound{{Low: 0, High: 1}}, config)

	assert.ErrorIs(t, err, ErrUnknownAcquisition)
}

func TestNewPolicyUnknownKernel(t *testing.T) {
	config := DefaultPolicyConfig()
	config.Kernel = "nope"

	_, err := NewPolicy([]Bound{{Low: 0, High: 1}}, config)

	assert.ErrorIs(t, err, ErrUnknownKernel)
}

func TestNewPolicyInvalidBounds(t *testing.T) {
	_, err := NewPolicy(nil, DefaultPolicyConfig())
	assert.ErrorIs(t, err, ErrInvalidBounds)

	_, err = NewPolicy([]Bound{{Low: 1, High: 0}}, DefaultPolicyConfig())
	assert.ErrorIs(t, err, ErrInvalidBounds)

	_, err = NewPolicy([]Bound{{Low: 0.5, High: 0.5}}, DefaultPolicyConfig())
	assert.ErrorIs(t, err, ErrInvalidBounds)
}

func TestNewPolicyEnsembleLargerThanSamples(t *testing.T) {
	config := DefaultPolicyConfig()
	config.SampleCount = 10
	config.EnsembleSize = 11

	_, err := NewPolicy([]Bound{{Low: 0, High: 1}}, config)

	assert.Error(t, err)
}

func TestNextMidpointBeforeData(t *testing.T) {
	// An untouched policy proposes the exact geometric midpoint of the
	// box, per dimension, without invoking the optimizer.
	policy, err := NewPolicy([]Bound{
		{Low: 0, High: 1},
		{Low: -2, High: 4},
		{Low: 10, High: 30},
	}, seededConfig(1))
	require.NoError(t, err)

	x, err := policy.Next()
	require.NoError(t, err)

	assert.Equal(t, []float64{0.5, 1, 20}, x)
}

func TestBestBeforeData(t *testing.T) {
	policy, err := NewPolicy([]Bound{{Low: 0, High: 1}}, seededConfig(1))
	require.NoError(t, err)

	_, err = policy.Best()

	assert.ErrorIs(t, err, ErrNoData)
}

func TestAddDataDimensionMismatch(t *testing.T) {
	policy, err := NewPolicy([]Bound{{Low: 0, High: 1}}, seededConfig(1))
	require.NoError(t, err)

	err = policy.AddData([]float64{0.5, 0.5}, 1.0)

	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestAddDataGrowsDatasetInOrder(t *testing.T) {
	config := seededConfig(1)
	config.SampleCount = 10 // keep the test quick

	policy, err := NewPolicy([]Bound{{Low: 0, High: 1}}, config)
	require.NoError(t, err)

	observations := []struct {
		x []float64
		y float64
	}{
		{[]float64{0.1}, 0.3},
		{[]float64{0.9}, 0.7},
		{[]float64{0.4}, 0.5},
	}

	for i, obs := range observations {
		require.NoError(t, policy.AddData(obs.x, obs.y))

		assert.Equal(t, i+1, policy.NData())
	}

	// Best tracks the argmax over everything fed so far.
	best, err := policy.Best()
	require.NoError(t, err)

	assert.Equal(t, []float64{0.9}, best)

	// Idempotence: a second call without new data is identical.
	again, err := policy.Best()
	require.NoError(t, err)

	assert.Equal(t, best, again)
}

func TestCollaboratorFailurePropagates(t *testing.T) {
	config := seededConfig(1)
	config.Sampler = failingSampler{}

	policy, err := NewPolicy([]Bound{{Low: 0, High: 1}}, config)
	require.NoError(t, err)

	// The failure surfaces unchanged; the dataset is already grown
	// (append-then-sample, no rollback) but no index was built.
	err = policy.AddData([]float64{0.5}, 1.0)
	assert.ErrorContains(t, err, "sampler exploded")
	assert.Equal(t, 1, policy.NData())

	// Data present, index absent: the documented unreachable-by-contract
	// state reports ErrNoIndex rather than panicking.
	_, err = policy.Next()
	assert.ErrorIs(t, err, ErrNoIndex)
}

func TestPolicyEndToEndEI(t *testing.T) {
	config := seededConfig(7)
	config.Acquisition = "gpei"
	config.SampleCount = 20

	policy, err := NewPolicy([]Bound{{Low: 0, High: 1}}, config)
	require.NoError(t, err)

	require.NoError(t, policy.AddData([]float64{0.2}, 1.0))
	require.NoError(t, policy.AddData([]float64{0.8}, 0.5))

	best, err := policy.Best()
	require.NoError(t, err)

	assert.Equal(t, []float64{0.2}, best)

	x, err := policy.Next()
	require.NoError(t, err)

	require.Len(t, x, 1)
	assert.GreaterOrEqual(t, x[0], 0.0)
	assert.LessOrEqual(t, x[0], 1.0)
}

func TestPolicyEndToEndThompson(t *testing.T) {
	config := seededConfig(21)
	config.Acquisition = "thompson"
	config.SampleCount = 10
	config.AcqParams.NFeatures = 100

	policy, err := NewPolicy([]Bound{{Low: -1, High: 1}}, config)
	require.NoError(t, err)

	require.NoError(t, policy.AddData([]float64{-0.5}, 0.2))
	require.NoError(t, policy.AddData([]float64{0.5}, 0.8))

	x, err := policy.Next()
	require.NoError(t, err)

	require.Len(t, x, 1)
	assert.GreaterOrEqual(t, x[0], -1.0)
	assert.LessOrEqual(t, x[0], 1.0)
}

func TestPolicyDeterministicForSeed(t *testing.T) {
	run := func() []float64 {
		config := seededConfig(99)
		config.Acquisition = "gpucb"
		config.SampleCount = 10

		policy, err := NewPolicy([]Bound{{Low: 0, High: 1}}, config)
		require.NoError(t, err)

		require.NoError(t, policy.AddData([]float64{0.3}, 0.6))
		require.NoError(t, policy.AddData([]float64{0.7}, 0.4))

		x, err := policy.Next()
		require.NoError(t, err)

		return x
	}

	assert.Equal(t, run(), run())
}

func TestPolicyBoundsCopy(t *testing.T) {
	bounds := []Bound{{Low: 0, High: 1}}

	policy, err := NewPolicy(bounds, seededConfig(1))
	require.NoError(t, err)

	got := policy.Bounds()
	got[0].Low = -100

	// Neither the caller's slice nor a mutated copy reaches the policy.
	assert.Equal(t, []Bound{{Low: 0, High: 1}}, policy.Bounds())
}

func TestPolicyEnsembleRebuiltEachObservation(t *testing.T) {
	// Two observations with a stub sampler counting calls: AddData must
	// resample and rebuild every time, never patch incrementally.
	calls := 0

	config := seededConfig(5)
	config.SampleCount = 4
	config.Sampler = samplerFunc(func(s Surrogate, priors Priors, n int) ([]Hyperparameters, error) {
		calls++

		draws := make([]Hyperparameters, n)
		for i := range draws {
			draws[i] = Hyperparameters{Noise: 0.1, Signal: 1, Lengths: []float64{0.1}}
		}

		return draws, nil
	})

	policy, err := NewPolicy([]Bound{{Low: 0, High: 1}}, config)
	require.NoError(t, err)

	require.NoError(t, policy.AddData([]float64{0.2}, 1.0))
	require.NoError(t, policy.AddData([]float64{0.8}, 0.5))

	assert.Equal(t, 2, calls)
}

// samplerFunc adapts a function to the HyperparameterSampler interface.
type samplerFunc func(Surrogate, Priors, int) ([]Hyperparameters, error)

func (f samplerFunc) Sample(s Surrogate, priors Priors, n int) ([]Hyperparameters, error) {
	return f(s, priors, n)
}

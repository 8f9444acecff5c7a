package bayesopt

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/exp/rand"
)

func TestFourierSampleRejectsBadFeatureCount(t *testing.T) {
	sampler := NewFourierSampler(rand.New(rand.NewSource(1)))

	_, err := sampler.Sample(&stubSurrogate{dims: 1}, 0)

	assert.Error(t, err)
}

func TestFourierSampleFinite(t *testing.T) {
	gp := NewGP(NewSEKernel(1, []float64{0.2}), 0.1)
	gp.AddData([]float64{0.2}, 1.0)
	gp.AddData([]float64{0.8}, 0.5)

	sampler := NewFourierSampler(rand.New(rand.NewSource(1)))

	index, err := sampler.Sample(gp, 250)
	require.NoError(t, err)

	scores := index([][]float64{{0}, {0.25}, {0.5}, {0.75}, {1}})

	require.Len(t, scores, 5)

	for _, v := range scores {
		assert.False(t, math.IsNaN(v))
		assert.False(t, math.IsInf(v, 0))
	}
}

func TestFourierSampleDeterministicForSeed(t *testing.T) {
	build := func(seed uint64) []float64 {
		gp := NewGP(NewMatern3Kernel(1, []float64{0.2}), 0.1)
		gp.AddData([]float64{0.3}, 1.0)

		index, err := NewFourierSampler(rand.New(rand.NewSource(seed))).Sample(gp, 100)
		require.NoError(t, err)

		return index([][]float64{{0.1}, {0.5}, {0.9}})
	}

	assert.Equal(t, build(9), build(9))
}

func TestFourierSampleDrawsDistinctRealizations(t *testing.T) {
	// Consecutive samples from one sampler consume the generator, so two
	// draws are two different posterior realizations.
	gp := NewGP(NewSEKernel(1, []float64{0.2}), 0.1)
	gp.AddData([]float64{0.5}, 1.0)

	sampler := NewFourierSampler(rand.New(rand.NewSource(11)))

	first, err := sampler.Sample(gp, 100)
	require.NoError(t, err)

	second, err := sampler.Sample(gp, 100)
	require.NoError(t, err)

	points := [][]float64{{0.1}, {0.9}}

	assert.NotEqual(t, first(points), second(points))
}

func TestFourierSampleTracksData(t *testing.T) {
	// With tight noise the realization should pass near the observations:
	// the weight posterior concentrates on interpolating functions.
	gp := NewGP(NewSEKernel(1, []float64{0.3}), 0.01)
	gp.AddData([]float64{0.2}, 1.0)
	gp.AddData([]float64{0.8}, -0.5)

	sampler := NewFourierSampler(rand.New(rand.NewSource(13)))

	index, err := sampler.Sample(gp, 500)
	require.NoError(t, err)

	scores := index([][]float64{{0.2}, {0.8}})

	assert.InDelta(t, 1.0, scores[0], 0.2)
	assert.InDelta(t, -0.5, scores[1], 0.2)
}

func TestFourierSampleNoData(t *testing.T) {
	// Before any observation the weights come from the prior; the index
	// is still a usable finite function.
	gp := NewGP(NewMatern3Kernel(1, []float64{0.2}), 0.1)

	sampler := NewFourierSampler(rand.New(rand.NewSource(17)))

	index, err := sampler.Sample(gp, 50)
	require.NoError(t, err)

	for _, v := range index([][]float64{{0}, {0.5}, {1}}) {
		assert.False(t, math.IsNaN(v))
		assert.False(t, math.IsInf(v, 0))
	}
}

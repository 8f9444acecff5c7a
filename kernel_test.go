package bayesopt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/exp/rand"
)

func TestNewKernelUnknownName(t *testing.T) {
	_, err := NewKernel("nope", 1, []float64{0.1})

	assert.ErrorIs(t, err, ErrUnknownKernel)
}

func TestKernelBasics(t *testing.T) {
	for _, name := range []string{"SE", "Matern3", "Matern5"} {
		kernel, err := NewKernel(name, 2, []float64{0.5, 0.25})
		require.NoError(t, err)

		assert.Equal(t, 2, kernel.Dims(), name)
		assert.Equal(t, 2.0, kernel.Signal(), name)
		assert.Equal(t, []float64{0.5, 0.25}, kernel.Lengths(), name)

		// k(x, x) = sf^2 for every stationary kernel.
		x := []float64{0.3, -0.7}

		assert.InDelta(t, 4.0, kernel.Eval(x, x), 1e-12, name)

		// Symmetric, and decaying with distance.
		y := []float64{0.6, -0.5}
		z := []float64{2.0, 3.0}

		assert.InDelta(t, kernel.Eval(x, y), kernel.Eval(y, x), 1e-12, name)
		assert.Greater(t, kernel.Eval(x, y), kernel.Eval(x, z), name)
		assert.Greater(t, kernel.Eval(x, x), kernel.Eval(x, y), name)
	}
}

func TestKernelWithSubstitutesHyperparameters(t *testing.T) {
	kernel := NewMatern3Kernel(1, []float64{0.1})

	swapped := kernel.With(3, []float64{0.5})

	// New values on the result, original untouched.
	assert.Equal(t, 3.0, swapped.Signal())
	assert.Equal(t, []float64{0.5}, swapped.Lengths())
	assert.Equal(t, 1.0, kernel.Signal())
	assert.Equal(t, []float64{0.1}, kernel.Lengths())

	// Same family: the substituted kernel still evaluates as Matérn 3/2.
	_, ok := swapped.(*Matern3Kernel)

	assert.True(t, ok)
}

func TestKernelSampleSpectralShape(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for _, name := range []string{"SE", "Matern3", "Matern5"} {
		kernel, err := NewKernel(name, 1, []float64{0.5, 0.25, 0.125})
		require.NoError(t, err)

		w := kernel.SampleSpectral(rng)

		assert.Len(t, w, 3, name)
	}
}

func TestKernelSpectralScalesWithLength(t *testing.T) {
	// Shorter length scales mean wigglier functions, so spectral draws
	// must spread proportionally wider. Compare empirical spreads.
	spread := func(ell float64) float64 {
		rng := rand.New(rand.NewSource(2))
		kernel := NewSEKernel(1, []float64{ell})

		var sum float64

		for i := 0; i < 2000; i++ {
			w := kernel.SampleSpectral(rng)[0]

			sum += w * w
		}

		return sum / 2000
	}

	assert.Greater(t, spread(0.1), 10*spread(1.0))
}

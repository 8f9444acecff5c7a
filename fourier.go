package bayesopt

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

//////
// Spectral posterior sampler for Thompson sampling.
//////

// FourierSampler draws a single random realization of the surrogate's
// posterior function using random Fourier features. The kernel is
// approximated by nfeatures cosine features
//
//	phi_i(x) = sf * sqrt(2/m) * cos(w_i . x + b_i)
//
// with frequencies w_i drawn from the kernel's spectral density and phases
// b_i ~ U(0, 2pi). Conditioning the feature weights on the observed data
// is Bayesian linear regression, so one weight draw from the Gaussian
// weight posterior yields one fixed function realization. The returned
// Index is deterministic once drawn; randomness lives entirely in the
// Sample call.
type FourierSampler struct {
	rng *rand.Rand
}

// NewFourierSampler creates a sampler driven by rng.
func NewFourierSampler(rng *rand.Rand) *FourierSampler {
	return &FourierSampler{rng: rng}
}

// Sample returns one posterior function realization as an Index. With no
// observations the weights are drawn from their prior, which gives a
// random function with the kernel's covariance structure.
func (fs *FourierSampler) Sample(s Surrogate, nfeatures int) (Index, error) {
	if nfeatures < 1 {
		return nil, fmt.Errorf("fourier sample: nfeatures must be at least 1, got %d", nfeatures)
	}

	kernel := s.Kernel()
	dims := kernel.Dims()
	scale := kernel.Signal() * math.Sqrt(2/float64(nfeatures))
	noise := s.Noise()

	freqs := mat.NewDense(nfeatures, dims, nil)
	phases := make([]float64, nfeatures)

	for i := 0; i < nfeatures; i++ {
		freqs.SetRow(i, kernel.SampleSpectral(fs.rng))

		phases[i] = 2 * math.Pi * fs.rng.Float64()
	}

	features := func(x []float64) *mat.VecDense {
		xv := mat.NewVecDense(dims, x)

		phi := mat.NewVecDense(nfeatures, nil)
		phi.MulVec(freqs, xv)

		for i := 0; i < nfeatures; i++ {
			phi.SetVec(i, scale*math.Cos(phi.AtVec(i)+phases[i]))
		}

		return phi
	}

	theta, err := fs.drawWeights(s, features, nfeatures, noise)
	if err != nil {
		return nil, err
	}

	index := func(points [][]float64) []float64 {
		out := make([]float64, len(points))

		for i, p := range points {
			out[i] = mat.Dot(features(p), theta)
		}

		return out
	}

	return index, nil
}

// drawWeights samples the feature weights from their posterior given the
// surrogate's dataset: theta ~ N(A^-1 Phi' y, sn^2 A^-1) with
// A = Phi'Phi + sn^2 I. With no data the weights come from the standard
// normal prior.
func (fs *FourierSampler) drawWeights(
	s Surrogate,
	features func(x []float64) *mat.VecDense,
	nfeatures int,
	noise float64,
) (*mat.VecDense, error) {
	X, y := s.Data()

	z := mat.NewVecDense(nfeatures, nil)
	for i := 0; i < nfeatures; i++ {
		z.SetVec(i, fs.rng.NormFloat64())
	}

	if len(X) == 0 {
		return z, nil
	}

	phi := mat.NewDense(len(X), nfeatures, nil)
	for i, xi := range X {
		phi.SetRow(i, features(xi).RawVector().Data)
	}

	gram := mat.NewSymDense(nfeatures, nil)
	gram.SymOuterK(1, phi.T())

	chol, ok := factorizeWithJitter(gram, noise*noise)
	if !ok {
		return nil, fmt.Errorf("fourier sample: weight posterior is not positive definite")
	}

	// Posterior mean: A^-1 Phi' y.
	phiTy := mat.NewVecDense(nfeatures, nil)
	phiTy.MulVec(phi.T(), mat.NewVecDense(len(y), y))

	theta := mat.NewVecDense(nfeatures, nil)
	if err := chol.SolveVecTo(theta, phiTy); err != nil {
		return nil, fmt.Errorf("fourier sample: %w", err)
	}

	// Posterior draw: mean + sn * L^-T z, with A = L L'.
	var l mat.TriDense
	chol.LTo(&l)

	var u mat.VecDense
	if err := u.SolveVec(l.T(), z); err != nil {
		return nil, fmt.Errorf("fourier sample: %w", err)
	}

	theta.AddScaledVec(theta, noise, &u)

	return theta, nil
}

// factorizeWithJitter factorizes a + bump*I, escalating the bump through
// jitterSteps until the Cholesky succeeds.
func factorizeWithJitter(a *mat.SymDense, bump float64) (*mat.Cholesky, bool) {
	n := a.SymmetricDim()

	var chol mat.Cholesky

	for _, jitter := range jitterSteps {
		k := mat.NewSymDense(n, nil)
		k.CopySym(a)

		for i := 0; i < n; i++ {
			k.SetSym(i, i, k.At(i, i)+bump+jitter)
		}

		if chol.Factorize(k) {
			return &chol, true
		}
	}

	return nil, false
}

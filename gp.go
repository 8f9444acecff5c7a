package bayesopt

import (
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/mat"
)

//////
// Default GP surrogate.
//////

// jitterSteps are the diagonal nudges tried, in order, when the kernel
// Gram matrix turns out numerically non positive definite.
var jitterSteps = []float64{0, 1e-10, 1e-8, 1e-6, 1e-4, 1e-2}

// GP is the default Surrogate: exact Gaussian Process regression with a
// configurable covariance kernel and homoscedastic observation noise.
//
// The posterior at a candidate point x* given observations (X, y) is
//
//	mean(x*) = k*' (K + sn^2 I)^-1 y
//	var(x*)  = k(x*,x*) - k*' (K + sn^2 I)^-1 k*
//
// computed through a Cholesky factorization of the Gram matrix. With no
// observations the prior (0, sf^2) is returned.
//
// Thread safety:
// - All fields are protected by an RWMutex
// - AddData takes the write lock; queries take the read lock
// - Safe for concurrent readers
//
// Memory usage grows linearly with the number of observations; posterior
// queries cost O(n^2) per candidate point after an O(n^3) factorization.
type GP struct {
	// mu protects access to all fields.
	mu sync.RWMutex

	// x holds the observed input points, one slice per observation.
	x [][]float64

	// y holds the observed objective values, same length as x.
	y []float64

	// kernel is the covariance function.
	kernel Kernel

	// noise is the observation noise standard deviation.
	noise float64
}

// NewGP creates a GP surrogate with the given kernel and observation noise
// standard deviation. The dataset starts empty.
func NewGP(kernel Kernel, noise float64) *GP {
	return &GP{
		kernel: kernel,
		noise:  noise,
	}
}

// AddData appends one observation to the dataset. The input slice is deep
// copied so later caller-side mutation cannot corrupt the model.
func (gp *GP) AddData(x []float64, y float64) {
	gp.mu.Lock()
	defer gp.mu.Unlock()

	point := make([]float64, len(x))
	copy(point, x)

	gp.x = append(gp.x, point)
	gp.y = append(gp.y, y)
}

// NData returns the number of observations.
func (gp *GP) NData() int {
	gp.mu.RLock()
	defer gp.mu.RUnlock()

	return len(gp.x)
}

// Max returns the location and value of the highest observed objective
// value. Returns ErrNoData before any observation.
func (gp *GP) Max() ([]float64, float64, error) {
	gp.mu.RLock()
	defer gp.mu.RUnlock()

	if len(gp.x) == 0 {
		return nil, 0, ErrNoData
	}

	best := 0

	for i := 1; i < len(gp.y); i++ {
		if gp.y[i] > gp.y[best] {
			best = i
		}
	}

	x := make([]float64, len(gp.x[best]))
	copy(x, gp.x[best])

	return x, gp.y[best], nil
}

// Data returns the observed inputs and outputs. The returned slices are
// the model's own storage and must be treated as read-only.
func (gp *GP) Data() ([][]float64, []float64) {
	gp.mu.RLock()
	defer gp.mu.RUnlock()

	return gp.x, gp.y
}

// Noise returns the observation noise standard deviation.
func (gp *GP) Noise() float64 {
	gp.mu.RLock()
	defer gp.mu.RUnlock()

	return gp.noise
}

// Kernel returns the covariance kernel.
func (gp *GP) Kernel() Kernel {
	gp.mu.RLock()
	defer gp.mu.RUnlock()

	return gp.kernel
}

// Posterior evaluates the posterior mean and variance at a batch of
// candidate points. Variances are clamped at zero: a tiny negative value
// can fall out of the subtraction in exact arithmetic-free floating point,
// and downstream acquisition math takes square roots.
//
// If the Gram matrix cannot be factorized even with the largest jitter
// step, the prior (0, sf^2) is returned for every point; with the noise
// floor enforced by Policy's priors this does not happen in practice.
func (gp *GP) Posterior(points [][]float64) (mean, variance []float64) {
	gp.mu.RLock()
	defer gp.mu.RUnlock()

	mean = make([]float64, len(points))
	variance = make([]float64, len(points))

	sf := gp.kernel.Signal()

	if len(gp.x) == 0 {
		for i := range points {
			variance[i] = sf * sf
		}

		return mean, variance
	}

	chol, alpha, ok := gp.factor()
	if !ok {
		for i := range points {
			variance[i] = sf * sf
		}

		return mean, variance
	}

	n := len(gp.x)
	kstar := mat.NewVecDense(n, nil)
	w := mat.NewVecDense(n, nil)

	for i, p := range points {
		for j, xj := range gp.x {
			kstar.SetVec(j, gp.kernel.Eval(p, xj))
		}

		mean[i] = mat.Dot(kstar, alpha)

		if err := chol.SolveVecTo(w, kstar); err != nil {
			variance[i] = sf * sf

			continue
		}

		v := gp.kernel.Eval(p, p) - mat.Dot(kstar, w)
		if v < 0 {
			v = 0
		}

		variance[i] = v
	}

	return mean, variance
}

// LogMarginal returns the log marginal likelihood of the observed data
// under the current hyperparameters,
//
//	-1/2 y' K^-1 y - 1/2 log|K| - n/2 log(2 pi)
//
// with K the noise-augmented Gram matrix. Used by MetropolisSampler to
// weigh hyperparameter proposals. Returns -Inf when the Gram matrix cannot
// be factorized, which rejects the proposal.
func (gp *GP) LogMarginal() float64 {
	gp.mu.RLock()
	defer gp.mu.RUnlock()

	n := len(gp.x)
	if n == 0 {
		return 0
	}

	chol, alpha, ok := gp.factor()
	if !ok {
		return math.Inf(-1)
	}

	yv := mat.NewVecDense(n, gp.y)

	return -0.5*mat.Dot(yv, alpha) - 0.5*chol.LogDet() - float64(n)/2*math.Log(2*math.Pi)
}

// Copy returns an independent GP over a copy of the dataset with the given
// hyperparameters substituted. The receiver is never mutated. Returns an
// error when the hyperparameters are non-positive or the length scale
// count does not match the kernel dimensionality.
func (gp *GP) Copy(h Hyperparameters) (Surrogate, error) {
	gp.mu.RLock()
	defer gp.mu.RUnlock()

	if h.Noise <= 0 || h.Signal <= 0 {
		return nil, fmt.Errorf("gp copy: noise and signal must be positive, got %v and %v", h.Noise, h.Signal)
	}

	if len(h.Lengths) != gp.kernel.Dims() {
		return nil, fmt.Errorf("gp copy: %w: %d length scales for %d dimensions",
			ErrDimensionMismatch, len(h.Lengths), gp.kernel.Dims())
	}

	for _, ell := range h.Lengths {
		if ell <= 0 {
			return nil, fmt.Errorf("gp copy: length scales must be positive, got %v", ell)
		}
	}

	out := &GP{
		kernel: gp.kernel.With(h.Signal, h.Lengths),
		noise:  h.Noise,
		x:      make([][]float64, len(gp.x)),
		y:      append([]float64(nil), gp.y...),
	}

	for i, xi := range gp.x {
		out.x[i] = append([]float64(nil), xi...)
	}

	return out, nil
}

// factor builds the Cholesky factorization of K + sn^2 I and the weight
// vector alpha = K^-1 y, escalating through jitterSteps until the
// factorization succeeds. Caller must hold at least the read lock.
func (gp *GP) factor() (*mat.Cholesky, *mat.VecDense, bool) {
	n := len(gp.x)

	gram := mat.NewSymDense(n, nil)

	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			gram.SetSym(i, j, gp.kernel.Eval(gp.x[i], gp.x[j]))
		}
	}

	var chol mat.Cholesky

	for _, jitter := range jitterSteps {
		k := mat.NewSymDense(n, nil)
		k.CopySym(gram)

		bump := gp.noise*gp.noise + jitter
		for i := 0; i < n; i++ {
			k.SetSym(i, i, k.At(i, i)+bump)
		}

		if chol.Factorize(k) {
			alpha := mat.NewVecDense(n, nil)

			if err := chol.SolveVecTo(alpha, mat.NewVecDense(n, gp.y)); err != nil {
				continue
			}

			return &chol, alpha, true
		}
	}

	return nil, nil, false
}

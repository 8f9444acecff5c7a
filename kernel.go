package bayesopt

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

//////
// Covariance kernels for the GP surrogate.
//////

// Kernel is the covariance function of a GP surrogate. All built-in
// kernels carry a signal standard deviation (amplitude) and one length
// scale per input dimension.
//
// SampleSpectral exists for the spectral (random-feature) posterior
// sampler: it draws one frequency vector from the kernel's spectral
// density, which is what makes Thompson sampling work for any kernel
// family without the sampler knowing the family.
type Kernel interface {
	// Eval computes the covariance between two points. Panics if the
	// points do not match the kernel's dimensionality.
	Eval(x1, x2 []float64) float64

	// Dims returns the input dimensionality.
	Dims() int

	// Signal returns the signal standard deviation.
	Signal() float64

	// Lengths returns the per-dimension length scales. Read-only.
	Lengths() []float64

	// With returns a new kernel of the same family with the given
	// hyperparameters substituted. The receiver is not modified.
	With(signal float64, lengths []float64) Kernel

	// SampleSpectral draws one frequency vector from the kernel's
	// spectral density using rng.
	SampleSpectral(rng *rand.Rand) []float64
}

// KernelFactory builds a kernel from a signal standard deviation and
// per-dimension length scales.
type KernelFactory func(signal float64, lengths []float64) Kernel

// kernelFactories maps kernel names to factories. Closed set; NewKernel is
// the only consumer.
var kernelFactories = map[string]KernelFactory{
	"SE":      NewSEKernel,
	"Matern3": NewMatern3Kernel,
	"Matern5": NewMatern5Kernel,
}

// NewKernel builds the named kernel. Supported names are "SE", "Matern3"
// (the default used by Policy) and "Matern5". Returns ErrUnknownKernel for
// anything else.
func NewKernel(name string, signal float64, lengths []float64) (Kernel, error) {
	factory, ok := kernelFactories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKernel, name)
	}

	return factory(signal, lengths), nil
}

// kernelBase holds the hyperparameters shared by every kernel family.
type kernelBase struct {
	signal  float64
	lengths []float64
}

func (k kernelBase) Dims() int { return len(k.lengths) }

func (k kernelBase) Signal() float64 { return k.signal }

func (k kernelBase) Lengths() []float64 { return k.lengths }

// scaledDist returns the Euclidean distance between x1 and x2 after
// dividing each coordinate difference by its length scale.
func (k kernelBase) scaledDist(x1, x2 []float64) float64 {
	if len(x1) != len(k.lengths) || len(x2) != len(k.lengths) {
		panic("kernel: input vectors must match the kernel dimensionality")
	}

	var sum float64

	for i := range x1 {
		diff := (x1[i] - x2[i]) / k.lengths[i]

		sum += diff * diff
	}

	return math.Sqrt(sum)
}

// SEKernel is the squared exponential (RBF) kernel,
// k(x1,x2) = sf^2 * exp(-r^2/2) with r the length-scaled distance.
// Sample paths are infinitely smooth.
type SEKernel struct {
	kernelBase
}

// NewSEKernel creates a squared exponential kernel.
func NewSEKernel(signal float64, lengths []float64) Kernel {
	return &SEKernel{kernelBase{signal: signal, lengths: append([]float64(nil), lengths...)}}
}

// Eval computes the SE covariance between x1 and x2.
func (k *SEKernel) Eval(x1, x2 []float64) float64 {
	r := k.scaledDist(x1, x2)

	return k.signal * k.signal * math.Exp(-r*r/2)
}

// With returns a new SE kernel with the given hyperparameters.
func (k *SEKernel) With(signal float64, lengths []float64) Kernel {
	return NewSEKernel(signal, lengths)
}

// SampleSpectral draws a frequency from the SE spectral density, which is
// Gaussian with per-dimension standard deviation 1/length.
func (k *SEKernel) SampleSpectral(rng *rand.Rand) []float64 {
	w := make([]float64, len(k.lengths))

	for i, ell := range k.lengths {
		w[i] = rng.NormFloat64() / ell
	}

	return w
}

// Matern3Kernel is the Matérn 3/2 kernel,
// k(x1,x2) = sf^2 * (1 + sqrt(3)r) * exp(-sqrt(3)r).
// Sample paths are once differentiable; this is the Policy default.
type Matern3Kernel struct {
	kernelBase
}

// NewMatern3Kernel creates a Matérn 3/2 kernel.
func NewMatern3Kernel(signal float64, lengths []float64) Kernel {
	return &Matern3Kernel{kernelBase{signal: signal, lengths: append([]float64(nil), lengths...)}}
}

// Eval computes the Matérn 3/2 covariance between x1 and x2.
func (k *Matern3Kernel) Eval(x1, x2 []float64) float64 {
	r := k.scaledDist(x1, x2) * math.Sqrt(3)

	return k.signal * k.signal * (1 + r) * math.Exp(-r)
}

// With returns a new Matérn 3/2 kernel with the given hyperparameters.
func (k *Matern3Kernel) With(signal float64, lengths []float64) Kernel {
	return NewMatern3Kernel(signal, lengths)
}

// SampleSpectral draws a frequency from the Matérn 3/2 spectral density:
// per-dimension Student-t with 3 degrees of freedom, scaled by the length
// scale.
func (k *Matern3Kernel) SampleSpectral(rng *rand.Rand) []float64 {
	return maternSpectral(rng, k.lengths, 3)
}

// Matern5Kernel is the Matérn 5/2 kernel,
// k(x1,x2) = sf^2 * (1 + sqrt(5)r + 5r^2/3) * exp(-sqrt(5)r).
// Sample paths are twice differentiable.
type Matern5Kernel struct {
	kernelBase
}

// NewMatern5Kernel creates a Matérn 5/2 kernel.
func NewMatern5Kernel(signal float64, lengths []float64) Kernel {
	return &Matern5Kernel{kernelBase{signal: signal, lengths: append([]float64(nil), lengths...)}}
}

// Eval computes the Matérn 5/2 covariance between x1 and x2.
func (k *Matern5Kernel) Eval(x1, x2 []float64) float64 {
	r := k.scaledDist(x1, x2) * math.Sqrt(5)

	return k.signal * k.signal * (1 + r + r*r/3) * math.Exp(-r)
}

// With returns a new Matérn 5/2 kernel with the given hyperparameters.
func (k *Matern5Kernel) With(signal float64, lengths []float64) Kernel {
	return NewMatern5Kernel(signal, lengths)
}

// SampleSpectral draws a frequency from the Matérn 5/2 spectral density
// (Student-t with 5 degrees of freedom per dimension).
func (k *Matern5Kernel) SampleSpectral(rng *rand.Rand) []float64 {
	return maternSpectral(rng, k.lengths, 5)
}

// maternSpectral draws one frequency vector for a Matérn kernel with
// 2*nu = dof degrees of freedom. The Matérn spectral density is a
// multivariate Student-t; sampling each dimension independently from a
// univariate t and dividing by the length scale reproduces it for the
// product-form (ARD) kernels used here.
func maternSpectral(rng *rand.Rand, lengths []float64, dof float64) []float64 {
	t := distuv.StudentsT{
		Mu:    0,
		Sigma: 1,
		Nu:    dof,
		Src:   rng,
	}

	w := make([]float64, len(lengths))

	for i, ell := range lengths {
		w[i] = t.Rand() / ell
	}

	return w
}

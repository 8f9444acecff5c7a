package bayesopt

import "errors"

//////
// Error taxonomy.
//////

var (
	// ErrUnknownAcquisition is returned by NewPolicy and Registry.Build when
	// the requested acquisition strategy name has not been registered.
	// Construction fails before any surrogate is created.
	ErrUnknownAcquisition = errors.New("unknown acquisition function")

	// ErrUnknownKernel is returned by NewKernel when the requested kernel
	// name has not been registered.
	ErrUnknownKernel = errors.New("unknown kernel")

	// ErrNoIndex is returned by Policy.Next when the surrogate holds data
	// but no acquisition index has been built. Under normal use this cannot
	// happen: AddData always rebuilds the index before Next can observe a
	// non-empty dataset.
	ErrNoIndex = errors.New("no acquisition index has been built")

	// ErrNoData is returned by surrogate queries that require at least one
	// observation, such as GP.Max.
	ErrNoData = errors.New("no observations")

	// ErrInvalidBounds is returned by NewPolicy when a dimension's lower
	// bound is not strictly below its upper bound.
	ErrInvalidBounds = errors.New("invalid bounds: low must be less than high")

	// ErrDimensionMismatch is returned when a point's dimensionality does
	// not match the domain or the surrogate's dataset.
	ErrDimensionMismatch = errors.New("dimension mismatch")
)

package geometry

import "errors"

var (
	// ErrInvalidRadius is returned when a fiber or sphere radius is not > 0.
	ErrInvalidRadius = errors.New("geometry: radius must be > 0")

	// ErrInvalidSymmetry is returned when a symmetry value is < 1.
	ErrInvalidSymmetry = errors.New("geometry: symmetry must be >= 1")

	// ErrInvalidSampling is returned when a fiber sampling value is < 1.
	ErrInvalidSampling = errors.New("geometry: sampling must be >= 1")

	// ErrEmptyAnchors is returned when a fiber has no anchor points.
	ErrEmptyAnchors = errors.New("geometry: fiber needs at least one anchor")

	// ErrAnchorDimension is returned when a point is not a 3-vector.
	ErrAnchorDimension = errors.New("geometry: points must have 3 components")

	// ErrNonFinite is returned when a coordinate or parameter is NaN or Inf.
	ErrNonFinite = errors.New("geometry: value is NaN or Inf")

	// ErrDimensionMismatch is returned when world or bundle vectors disagree
	// with the declared dimensionality.
	ErrDimensionMismatch = errors.New("geometry: dimension mismatch")

	// ErrInvalidWorld is returned for non-positive resolution or spacing entries.
	ErrInvalidWorld = errors.New("geometry: resolution and spacing must be > 0")

	// ErrInvalidFiberCount is returned when a bundle meta asks for fewer than one fiber.
	ErrInvalidFiberCount = errors.New("geometry: fiber count must be >= 1")

	// ErrInvalidLimits is returned when a limits pair has lower > upper.
	ErrInvalidLimits = errors.New("geometry: limits lower bound exceeds upper bound")

	// ErrEmptyBundle is returned when a bundle or cluster has nothing in it.
	ErrEmptyBundle = errors.New("geometry: bundle needs at least one member")

	// ErrReferenceMismatch is returned when a bundle object has differing
	// numbers of file references and weights.
	ErrReferenceMismatch = errors.New("geometry: file references and weights differ in length")

	// ErrEmptyOutputPath is returned when no output directory was given.
	ErrEmptyOutputPath = errors.New("geometry: output path is empty")
)

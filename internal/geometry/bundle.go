package geometry

import (
	"fmt"

	"github.com/dmrisim/simfactory/internal/serialize"
)

// BundleMeta holds the generation parameters shared by the fibers of a
// bundle or cluster.
type BundleMeta struct {
	dimensions int
	fiberCount int
	symmetry   int
	center     Vec3
	limits     [][2]float64
}

// CreateBundleMeta validates and returns bundle metadata. limits holds one
// (lower, upper) pair per dimension.
func CreateBundleMeta(dimensions, fiberCount, symmetry int, center Vec3, limits [][2]float64) (BundleMeta, error) {
	if dimensions < 1 || len(limits) != dimensions {
		return BundleMeta{}, fmt.Errorf("bundle meta: %d dimensions, %d limit pairs: %w",
			dimensions, len(limits), ErrDimensionMismatch)
	}
	if fiberCount < 1 {
		return BundleMeta{}, fmt.Errorf("bundle meta fiber count %d: %w", fiberCount, ErrInvalidFiberCount)
	}
	if symmetry < 1 {
		return BundleMeta{}, fmt.Errorf("bundle meta symmetry %d: %w", symmetry, ErrInvalidSymmetry)
	}
	if !center.finite() {
		return BundleMeta{}, fmt.Errorf("bundle meta center: %w", ErrNonFinite)
	}
	own := make([][2]float64, len(limits))
	for i, l := range limits {
		if !isFinite(l[0]) || !isFinite(l[1]) {
			return BundleMeta{}, fmt.Errorf("bundle meta limits %d: %w", i, ErrNonFinite)
		}
		if l[0] > l[1] {
			return BundleMeta{}, fmt.Errorf("bundle meta limits %d [%v, %v]: %w", i, l[0], l[1], ErrInvalidLimits)
		}
		own[i] = l
	}
	return BundleMeta{
		dimensions: dimensions,
		fiberCount: fiberCount,
		symmetry:   symmetry,
		center:     center,
		limits:     own,
	}, nil
}

// CreateClusterMeta returns the metadata shared by the bundles of a cluster.
// It has the same shape and validation as bundle metadata.
func CreateClusterMeta(dimensions, fiberCount, symmetry int, center Vec3, limits [][2]float64) (BundleMeta, error) {
	return CreateBundleMeta(dimensions, fiberCount, symmetry, center, limits)
}

// DefaultBundleMeta is a single-fiber, unit-box meta in 3D centered on the origin.
func DefaultBundleMeta() BundleMeta {
	return BundleMeta{
		dimensions: 3,
		fiberCount: 1,
		symmetry:   1,
		limits:     [][2]float64{{0, 1}, {0, 1}, {0, 1}},
	}
}

func (m BundleMeta) Dimensions() int { return m.dimensions }
func (m BundleMeta) FiberCount() int { return m.fiberCount }
func (m BundleMeta) Symmetry() int   { return m.symmetry }
func (m BundleMeta) Center() Vec3    { return m.center }

// Limits returns a copy of the per-axis limit pairs.
func (m BundleMeta) Limits() [][2]float64 {
	out := make([][2]float64, len(m.limits))
	copy(out, m.limits)
	return out
}

func (m BundleMeta) limitRows() [][]float64 {
	out := make([][]float64, len(m.limits))
	for i, l := range m.limits {
		out[i] = []float64{l[0], l[1]}
	}
	return out
}

// Bundle is a group of fibers sharing metadata. Each bundle placed in a
// Handler is written to its own spline file.
type Bundle struct {
	meta   BundleMeta
	fibers []Fiber
}

// CreateBundle returns a bundle holding fibers in the given order. Every
// fiber must come from CreateFiber or a transform of one.
func CreateBundle(meta BundleMeta, fibers []Fiber) (Bundle, error) {
	if len(fibers) == 0 {
		return Bundle{}, fmt.Errorf("bundle: %w", ErrEmptyBundle)
	}
	for i, f := range fibers {
		if f.AnchorCount() == 0 {
			return Bundle{}, fmt.Errorf("bundle fiber %d: %w", i, ErrEmptyAnchors)
		}
	}
	own := make([]Fiber, len(fibers))
	copy(own, fibers)
	return Bundle{meta: meta, fibers: own}, nil
}

func (b Bundle) Meta() BundleMeta { return b.meta }

// Center returns the bundle center from its metadata.
func (b Bundle) Center() Vec3 { return b.meta.center }

// FiberCount returns the number of fibers held by the bundle, not the
// generation target stored in the metadata.
func (b Bundle) FiberCount() int { return len(b.fibers) }

// Fibers returns a copy of the fiber list.
func (b Bundle) Fibers() []Fiber {
	out := make([]Fiber, len(b.fibers))
	copy(out, b.fibers)
	return out
}

func (b Bundle) withMeta(meta BundleMeta) Bundle {
	return Bundle{meta: meta, fibers: b.fibers}
}

// Serialize renders the spline payload of the bundle.
func (b Bundle) Serialize(indent int) string {
	fibers := make([]serialize.Serializable, len(b.fibers))
	for i, f := range b.fibers {
		fibers[i] = f
	}
	return serialize.NewObject().
		Int("dimensions", b.meta.dimensions).
		Int("n_fibers", b.meta.fiberCount).
		Int("symmetry", b.meta.symmetry).
		Floats("center", b.meta.center.Slice()).
		Rows("limits", b.meta.limitRows()).
		List("fibers", fibers).
		Serialize(indent)
}

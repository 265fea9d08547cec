package geometry

import (
	"fmt"
	"math"

	"github.com/dmrisim/simfactory/internal/serialize"
)

// Fiber is a spline through an ordered list of anchor points expressed in
// normalized bounding-box coordinates.
type Fiber struct {
	radius   float64
	symmetry int
	sampling int
	anchors  []Vec3
}

// CreateFiber validates its parameters and returns an immutable Fiber.
// Sampling is the number of points used to resample the spline.
func CreateFiber(radius float64, symmetry, sampling int, anchors []Vec3) (Fiber, error) {
	if !isFinite(radius) {
		return Fiber{}, fmt.Errorf("fiber radius: %w", ErrNonFinite)
	}
	if radius <= 0 {
		return Fiber{}, fmt.Errorf("fiber radius %v: %w", radius, ErrInvalidRadius)
	}
	if symmetry < 1 {
		return Fiber{}, fmt.Errorf("fiber symmetry %d: %w", symmetry, ErrInvalidSymmetry)
	}
	if sampling < 1 {
		return Fiber{}, fmt.Errorf("fiber sampling %d: %w", sampling, ErrInvalidSampling)
	}
	if len(anchors) == 0 {
		return Fiber{}, ErrEmptyAnchors
	}
	for i, a := range anchors {
		if !a.finite() {
			return Fiber{}, fmt.Errorf("anchor %d: %w", i, ErrNonFinite)
		}
	}
	return newFiber(radius, symmetry, sampling, anchors), nil
}

// CreateFiberFromPoints is CreateFiber for anchors given as raw slices.
// Every point must have exactly three components.
func CreateFiberFromPoints(radius float64, symmetry, sampling int, points [][]float64) (Fiber, error) {
	anchors, err := VecsFromSlices(points)
	if err != nil {
		return Fiber{}, fmt.Errorf("fiber anchors: %w", err)
	}
	return CreateFiber(radius, symmetry, sampling, anchors)
}

func newFiber(radius float64, symmetry, sampling int, anchors []Vec3) Fiber {
	own := make([]Vec3, len(anchors))
	copy(own, anchors)
	return Fiber{radius: radius, symmetry: symmetry, sampling: sampling, anchors: own}
}

// withAnchors returns a copy of f with new anchors.
func (f Fiber) withAnchors(anchors []Vec3) Fiber {
	return Fiber{radius: f.radius, symmetry: f.symmetry, sampling: f.sampling, anchors: anchors}
}

func (f Fiber) Radius() float64 { return f.radius }
func (f Fiber) Symmetry() int   { return f.symmetry }
func (f Fiber) Sampling() int   { return f.sampling }

// AnchorCount returns the number of anchor points.
func (f Fiber) AnchorCount() int { return len(f.anchors) }

// Anchors returns a copy of the anchor points.
func (f Fiber) Anchors() []Vec3 {
	out := make([]Vec3, len(f.anchors))
	copy(out, f.anchors)
	return out
}

// Serialize renders the fiber as a spline object.
func (f Fiber) Serialize(indent int) string {
	return serialize.NewObject().
		Float("radius", f.radius).
		Int("symmetry", f.symmetry).
		Int("sampling", f.sampling).
		Rows("anchors", rows(f.anchors)).
		Serialize(indent)
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

package geometry

import (
	"fmt"
	"math"
	"strings"
)

// Plane is a coordinate plane in which a rotation takes place. The axis
// orthogonal to the plane is left unchanged.
type Plane int

const (
	PlaneXY Plane = iota
	PlaneYZ
	PlaneXZ
)

func (p Plane) String() string {
	switch p {
	case PlaneXY:
		return "XY"
	case PlaneYZ:
		return "YZ"
	case PlaneXZ:
		return "XZ"
	default:
		return fmt.Sprintf("Plane(%d)", int(p))
	}
}

// ParsePlane maps "XY", "YZ" or "XZ" (case-insensitive) to a Plane.
func ParsePlane(s string) (Plane, error) {
	switch strings.ToUpper(s) {
	case "XY":
		return PlaneXY, nil
	case "YZ":
		return PlaneYZ, nil
	case "XZ":
		return PlaneXZ, nil
	}
	return 0, fmt.Errorf("unknown plane %q (valid: XY, YZ, XZ)", s)
}

// Rotation is a rigid rotation of 3D space.
type Rotation struct {
	m Mat3
}

// NewRotation returns the rotation by angle radians within plane. It panics
// on a plane other than PlaneXY, PlaneYZ or PlaneXZ; use ParsePlane for
// untrusted input.
func NewRotation(plane Plane, angle float64) Rotation {
	c, s := math.Cos(angle), math.Sin(angle)
	m := Identity()
	switch plane {
	case PlaneXY:
		m[0][0], m[0][1] = c, -s
		m[1][0], m[1][1] = s, c
	case PlaneYZ:
		m[1][1], m[1][2] = c, -s
		m[2][1], m[2][2] = s, c
	case PlaneXZ:
		m[0][0], m[0][2] = c, -s
		m[2][0], m[2][2] = s, c
	default:
		panic(fmt.Sprintf("geometry: rotation in unknown %s", plane))
	}
	return Rotation{m: m}
}

// RotationFromMatrix wraps an explicit rotation matrix.
func RotationFromMatrix(m Mat3) Rotation {
	return Rotation{m: m}
}

// Then returns the rotation applying r first, then next.
func (r Rotation) Then(next Rotation) Rotation {
	return Rotation{m: next.m.Mul(r.m)}
}

// Inverse returns the inverse rotation.
func (r Rotation) Inverse() Rotation {
	return Rotation{m: r.m.Transpose()}
}

func (r Rotation) Matrix() Mat3 { return r.m }

// Apply rotates p about pivot: pivot + R·(p - pivot).
func (r Rotation) Apply(p, pivot Vec3) Vec3 {
	return pivot.Add(r.m.MulVec(p.Sub(pivot)))
}

func (r Rotation) applyAll(points []Vec3, pivot, shift Vec3) []Vec3 {
	if len(points) == 0 {
		return nil
	}
	out := make([]Vec3, len(points))
	for i, p := range points {
		out[i] = r.Apply(p, pivot).Add(shift)
	}
	return out
}

func translateAll(points []Vec3, t Vec3) []Vec3 {
	if len(points) == 0 {
		return nil
	}
	out := make([]Vec3, len(points))
	for i, p := range points {
		out[i] = p.Add(t)
	}
	return out
}

// RotateFiber rotates every anchor of f about pivot, then adds shift.
// The bounding box corners, if any, receive the same transform. The input
// fiber is not modified.
func RotateFiber(f Fiber, bbox []Vec3, r Rotation, pivot, shift Vec3) ([]Vec3, Fiber) {
	return r.applyAll(bbox, pivot, shift), f.withAnchors(r.applyAll(f.anchors, pivot, shift))
}

// RotateBundle applies RotateFiber with the same transform to every fiber.
func RotateBundle(b Bundle, bbox []Vec3, r Rotation, pivot, shift Vec3) ([]Vec3, Bundle) {
	fibers := make([]Fiber, len(b.fibers))
	for i, f := range b.fibers {
		_, fibers[i] = RotateFiber(f, nil, r, pivot, shift)
	}
	return r.applyAll(bbox, pivot, shift), Bundle{meta: b.meta, fibers: fibers}
}

// TranslateFiber adds t to every anchor and bounding box corner.
func TranslateFiber(f Fiber, bbox []Vec3, t Vec3) ([]Vec3, Fiber) {
	return translateAll(bbox, t), f.withAnchors(translateAll(f.anchors, t))
}

// TranslateBundle applies TranslateFiber to every fiber of b.
func TranslateBundle(b Bundle, bbox []Vec3, t Vec3) ([]Vec3, Bundle) {
	fibers := make([]Fiber, len(b.fibers))
	for i, f := range b.fibers {
		_, fibers[i] = TranslateFiber(f, nil, t)
	}
	return translateAll(bbox, t), Bundle{meta: b.meta, fibers: fibers}
}

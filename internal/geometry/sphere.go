package geometry

import (
	"fmt"

	"github.com/dmrisim/simfactory/internal/serialize"
)

// Sphere is a spherical structure placed in world coordinates.
type Sphere struct {
	radius float64
	center Vec3
}

// CreateSphere validates and returns a sphere.
func CreateSphere(radius float64, center Vec3) (Sphere, error) {
	if !isFinite(radius) || !center.finite() {
		return Sphere{}, fmt.Errorf("sphere: %w", ErrNonFinite)
	}
	if radius <= 0 {
		return Sphere{}, fmt.Errorf("sphere radius %v: %w", radius, ErrInvalidRadius)
	}
	return Sphere{radius: radius, center: center}, nil
}

func (s Sphere) Radius() float64 { return s.radius }
func (s Sphere) Center() Vec3    { return s.center }

func (Sphere) structure() {}

// Serialize renders the sphere as an inline structure entry.
func (s Sphere) Serialize(indent int) string {
	return serialize.NewObject().
		Float("radius", s.radius).
		Floats("center", s.center.Slice()).
		Serialize(indent)
}

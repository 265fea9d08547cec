package geometry

import (
	"fmt"

	"github.com/dmrisim/simfactory/internal/serialize"
)

// MaxDimensions is the largest supported world dimensionality.
const MaxDimensions = 3

// World describes the voxel grid of the simulation.
type World struct {
	resolution []int
	spacing    []float64
}

// CreateWorld validates that resolution and spacing both have dimension
// entries, all strictly positive.
func CreateWorld(dimension int, resolution []int, spacing []float64) (World, error) {
	if dimension < 1 || dimension > MaxDimensions {
		return World{}, fmt.Errorf("world dimension %d: %w", dimension, ErrDimensionMismatch)
	}
	if len(resolution) != dimension || len(spacing) != dimension {
		return World{}, fmt.Errorf("world: dimension %d, resolution %d, spacing %d: %w",
			dimension, len(resolution), len(spacing), ErrDimensionMismatch)
	}
	for i := range resolution {
		if !isFinite(spacing[i]) {
			return World{}, fmt.Errorf("world spacing: %w", ErrNonFinite)
		}
		if resolution[i] <= 0 || spacing[i] <= 0 {
			return World{}, fmt.Errorf("world axis %d: %w", i, ErrInvalidWorld)
		}
	}
	w := World{
		resolution: make([]int, dimension),
		spacing:    make([]float64, dimension),
	}
	copy(w.resolution, resolution)
	copy(w.spacing, spacing)
	return w, nil
}

// Dimensions is derived from the resolution length.
func (w World) Dimensions() int { return len(w.resolution) }

// Resolution returns a copy of the per-axis voxel counts.
func (w World) Resolution() []int {
	out := make([]int, len(w.resolution))
	copy(out, w.resolution)
	return out
}

// Spacing returns a copy of the per-axis voxel sizes.
func (w World) Spacing() []float64 {
	out := make([]float64, len(w.spacing))
	copy(out, w.spacing)
	return out
}

func (w World) Serialize(indent int) string {
	return serialize.NewObject().
		Int("dimensions", w.Dimensions()).
		Ints("resolution", w.resolution).
		Floats("spacing", w.spacing).
		Serialize(indent)
}

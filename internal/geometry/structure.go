package geometry

import (
	"fmt"

	"github.com/dmrisim/simfactory/internal/serialize"
)

// Structure is an entry of the geometry document's structure list.
// It is implemented by BundleObject and Sphere only.
type Structure interface {
	serialize.Serializable
	structure()
}

// BundleObject is a structure entry referencing spline files stored next to
// the geometry document.
type BundleObject struct {
	name     string
	fileRefs []string
	weights  []float64
	center   Vec3
}

// CreateBundleObject returns a structure entry for the given spline ids.
// fileRefs and weights are paired by position.
func CreateBundleObject(name string, fileRefs []string, weights []float64, center Vec3) (BundleObject, error) {
	if len(fileRefs) == 0 {
		return BundleObject{}, fmt.Errorf("bundle object: %w", ErrEmptyBundle)
	}
	if len(fileRefs) != len(weights) {
		return BundleObject{}, fmt.Errorf("bundle object: %d refs, %d weights: %w",
			len(fileRefs), len(weights), ErrReferenceMismatch)
	}
	if !center.finite() {
		return BundleObject{}, fmt.Errorf("bundle object center: %w", ErrNonFinite)
	}
	obj := BundleObject{
		name:     name,
		fileRefs: make([]string, len(fileRefs)),
		weights:  make([]float64, len(weights)),
		center:   center,
	}
	copy(obj.fileRefs, fileRefs)
	copy(obj.weights, weights)
	return obj, nil
}

func (BundleObject) structure() {}

func (o BundleObject) Serialize(indent int) string {
	return serialize.NewObject().
		String("name", o.name).
		Strings("bundles", o.fileRefs).
		Floats("weights", o.weights).
		Floats("center", o.center.Slice()).
		Serialize(indent)
}

// Package scene reads YAML scene documents and compiles them into geometry
// and simulation handlers.
//
// A scene names its fibers and bundles so later entries can derive from
// earlier ones with a rotation or translation. Bundles marked standalone
// are placed in the world in order, followed by clusters and spheres.
package scene

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidScene     = errors.New("scene: invalid scene")
	ErrUnknownReference = errors.New("scene: unknown reference")
	ErrDuplicateID      = errors.New("scene: duplicate id")
	ErrNoSimulation     = errors.New("scene: no simulation block")
	ErrUnknownBuiltin   = errors.New("scene: unknown builtin scene")
)

// Scene is the top-level scene document.
type Scene struct {
	// Name is the default output naming.
	Name       string                 `yaml:"name"`
	World      WorldSpec              `yaml:"world"`
	Anchors    map[string][][]float64 `yaml:"anchors,omitempty"`
	Fibers     []FiberSpec            `yaml:"fibers"`
	Bundles    []BundleSpec           `yaml:"bundles"`
	Clusters   []ClusterSpec          `yaml:"clusters,omitempty"`
	Spheres    []SphereSpec           `yaml:"spheres,omitempty"`
	Simulation *SimulationSpec        `yaml:"simulation,omitempty"`
}

type WorldSpec struct {
	Resolution []int     `yaml:"resolution"`
	Spacing    []float64 `yaml:"spacing"`
}

// FiberSpec defines a fiber either from anchors (a named set or inline
// points) or from an earlier fiber with a transform.
type FiberSpec struct {
	ID        string      `yaml:"id"`
	Radius    float64     `yaml:"radius,omitempty"`
	Symmetry  int         `yaml:"symmetry,omitempty"`
	Sampling  int         `yaml:"sampling,omitempty"`
	Anchors   string      `yaml:"anchors,omitempty"`
	Points    [][]float64 `yaml:"points,omitempty"`
	From      string      `yaml:"from,omitempty"`
	Rotate    *RotateSpec `yaml:"rotate,omitempty"`
	Translate []float64   `yaml:"translate,omitempty"`
}

// RotateSpec rotates by Degrees within Plane about Pivot, then adds Shift.
type RotateSpec struct {
	Plane   string    `yaml:"plane"`
	Degrees float64   `yaml:"degrees"`
	Pivot   []float64 `yaml:"pivot,omitempty"`
	Shift   []float64 `yaml:"shift,omitempty"`
}

type MetaSpec struct {
	Dimensions int         `yaml:"dimensions"`
	FiberCount int         `yaml:"n_fibers"`
	Symmetry   int         `yaml:"symmetry"`
	Center     []float64   `yaml:"center"`
	Limits     [][]float64 `yaml:"limits"`
}

// BundleSpec groups fibers, or derives from an earlier bundle with a
// transform. A nil Meta keeps the source bundle's meta, or the default
// single-fiber unit box meta for a new bundle.
type BundleSpec struct {
	ID         string      `yaml:"id"`
	Meta       *MetaSpec   `yaml:"meta,omitempty"`
	Fibers     []string    `yaml:"fibers,omitempty"`
	From       string      `yaml:"from,omitempty"`
	Rotate     *RotateSpec `yaml:"rotate,omitempty"`
	Translate  []float64   `yaml:"translate,omitempty"`
	Standalone bool        `yaml:"standalone,omitempty"`
}

type ClusterSpec struct {
	Meta        MetaSpec  `yaml:"meta"`
	Bundles     []string  `yaml:"bundles"`
	WorldCenter []float64 `yaml:"world_center"`
}

type SphereSpec struct {
	Radius float64   `yaml:"radius"`
	Center []float64 `yaml:"center"`
}

// Parse decodes a scene. Unknown keys are rejected.
func Parse(data []byte) (*Scene, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	s := &Scene{}
	if err := dec.Decode(s); err != nil {
		return nil, fmt.Errorf("parsing scene: %w", err)
	}
	if len(s.World.Resolution) == 0 {
		return nil, fmt.Errorf("world.resolution is required: %w", ErrInvalidScene)
	}
	return s, nil
}

// LoadFile reads and parses the scene at path.
func LoadFile(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene: %w", err)
	}
	return Parse(data)
}

// Marshal renders s back to YAML.
func (s *Scene) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

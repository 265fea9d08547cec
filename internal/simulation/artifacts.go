package simulation

import (
	"fmt"
	"strings"

	"github.com/dmrisim/simfactory/internal/serialize"
)

// DefaultEddyTau is the eddy current time constant in milliseconds.
const DefaultEddyTau = 70.0

// Artifact is one simulated acquisition imperfection. The set of
// implementations is closed and models hold them by value.
type Artifact interface {
	// Kind is the document tag that switches the artifact on.
	Kind() string
	validate() error
}

// Noise adds whole-image noise of the given distribution.
type Noise struct {
	Type     NoiseType
	Variance float64
}

// Motion moves the subject between volumes. A nil Volumes selects random
// volumes.
type Motion struct {
	Random      bool
	Volumes     []int
	Rotation    [3]float64
	Translation [3]float64
}

// Distortion enables off-resonance distortions. Its parameters are not
// settled, so factories refuse it unless experimental artifacts are allowed.
type Distortion struct{}

// EddyCurrent induces an eddy current field of Strength mT/m decaying with Tau ms.
type EddyCurrent struct {
	Strength float64
	Tau      float64
}

// Ghosting shifts k-space lines by KSpaceOffset.
type Ghosting struct {
	KSpaceOffset float64
}

// Spikes adds Count random spikes with amplitude Scale relative to the
// signal maximum.
type Spikes struct {
	Count int
	Scale float64
}

// Aliasing shrinks the field of view by FOVShrinkPercent.
type Aliasing struct {
	FOVShrinkPercent float64
}

// GibbsRinging enables ringing at sharp edges.
type GibbsRinging struct{}

func (Noise) Kind() string        { return "addnoise" }
func (Motion) Kind() string       { return "doAddMotion" }
func (Distortion) Kind() string   { return "doAddDistortions" }
func (EddyCurrent) Kind() string  { return "addeddycurrents" }
func (Ghosting) Kind() string     { return "addghosts" }
func (Spikes) Kind() string       { return "addspikes" }
func (Aliasing) Kind() string     { return "addaliasing" }
func (GibbsRinging) Kind() string { return "addringing" }

func (n Noise) validate() error {
	if n.Type != NoiseComplexGaussian && n.Type != NoiseRician {
		return fmt.Errorf("noise %q: %w", n.Type, ErrUnknownNoiseType)
	}
	if !finite(n.Variance) || n.Variance < 0 {
		return fmt.Errorf("noise variance %v: %w", n.Variance, ErrInvalidParameter)
	}
	return nil
}

func (m Motion) validate() error {
	for _, v := range append(m.Rotation[:], m.Translation[:]...) {
		if !finite(v) {
			return fmt.Errorf("motion: %w", ErrInvalidParameter)
		}
	}
	for _, i := range m.Volumes {
		if i < 0 {
			return fmt.Errorf("motion volume %d: %w", i, ErrInvalidParameter)
		}
	}
	return nil
}

func (Distortion) validate() error { return nil }

func (e EddyCurrent) validate() error {
	if !finite(e.Strength) || !finite(e.Tau) || e.Tau <= 0 {
		return fmt.Errorf("eddy current: %w", ErrInvalidParameter)
	}
	return nil
}

func (g Ghosting) validate() error {
	if !finite(g.KSpaceOffset) {
		return fmt.Errorf("ghosting: %w", ErrInvalidParameter)
	}
	return nil
}

func (s Spikes) validate() error {
	if s.Count < 0 || !finite(s.Scale) {
		return fmt.Errorf("spikes: %w", ErrInvalidParameter)
	}
	return nil
}

func (a Aliasing) validate() error {
	if !finite(a.FOVShrinkPercent) || a.FOVShrinkPercent < 0 || a.FOVShrinkPercent > 100 {
		return fmt.Errorf("aliasing %v%%: %w", a.FOVShrinkPercent, ErrInvalidParameter)
	}
	return nil
}

func (GibbsRinging) validate() error { return nil }

// ArtifactModel is an ordered set of artifacts, at most one of each kind.
type ArtifactModel struct {
	artifacts []Artifact
}

// NewArtifactModel validates each artifact and rejects repeated kinds.
// Distortion is refused with ErrNotProductionReady; use a Factory with
// WithExperimentalArtifacts to enable it.
func NewArtifactModel(artifacts ...Artifact) (ArtifactModel, error) {
	return newArtifactModel(false, artifacts...)
}

func newArtifactModel(allowExperimental bool, artifacts ...Artifact) (ArtifactModel, error) {
	seen := make(map[string]bool, len(artifacts))
	for i, a := range artifacts {
		switch a.(type) {
		case Noise, Motion, Distortion, EddyCurrent, Ghosting, Spikes, Aliasing, GibbsRinging:
		case nil:
			return ArtifactModel{}, fmt.Errorf("artifact %d is nil: %w", i, ErrInvalidParameter)
		default:
			return ArtifactModel{}, fmt.Errorf("artifact %d: unsupported %T, pass the value: %w", i, a, ErrInvalidParameter)
		}
		if a.Kind() == (Distortion{}).Kind() && !allowExperimental {
			return ArtifactModel{}, fmt.Errorf("%s: %w", a.Kind(), ErrNotProductionReady)
		}
		if seen[a.Kind()] {
			return ArtifactModel{}, fmt.Errorf("artifact %s given twice: %w", a.Kind(), ErrInvalidParameter)
		}
		seen[a.Kind()] = true
		if err := a.validate(); err != nil {
			return ArtifactModel{}, err
		}
	}
	return ArtifactModel{artifacts: append([]Artifact(nil), artifacts...)}, nil
}

// Artifacts returns the artifacts in insertion order.
func (m ArtifactModel) Artifacts() []Artifact {
	return append([]Artifact(nil), m.artifacts...)
}

func (m ArtifactModel) Len() int { return len(m.artifacts) }

func (m ArtifactModel) element() *serialize.Element {
	e := serialize.NewElement("artifacts")
	for _, a := range m.artifacts {
		e.Add(artifactElements(a)...)
	}
	return e
}

// artifactElements renders the switch tag of a followed by its parameters.
func artifactElements(a Artifact) []*serialize.Element {
	on := serialize.Leaf(a.Kind(), serialize.Bool(true))
	switch v := a.(type) {
	case Noise:
		return []*serialize.Element{on,
			serialize.Leaf("noisetype", string(v.Type)),
			serialize.Leaf("noisevariance", serialize.Float(v.Variance)),
		}
	case Motion:
		volumes := "random"
		if v.Volumes != nil {
			parts := make([]string, len(v.Volumes))
			for i, n := range v.Volumes {
				parts[i] = serialize.Int(n)
			}
			volumes = strings.Join(parts, " ")
		}
		out := []*serialize.Element{on,
			serialize.Leaf("randomMotion", serialize.Bool(v.Random)),
			serialize.Leaf("motionvolumes", volumes),
		}
		for i, r := range v.Rotation {
			out = append(out, serialize.Leaf("rotation"+serialize.Int(i), serialize.Float(r)))
		}
		for i, t := range v.Translation {
			out = append(out, serialize.Leaf("translation"+serialize.Int(i), serialize.Float(t)))
		}
		return out
	case EddyCurrent:
		return []*serialize.Element{on,
			serialize.Leaf("eddyStrength", serialize.Float(v.Strength)),
			serialize.Leaf("eddyTau", serialize.Float(v.Tau)),
		}
	case Ghosting:
		return []*serialize.Element{on, serialize.Leaf("kspaceLineOffset", serialize.Float(v.KSpaceOffset))}
	case Spikes:
		return []*serialize.Element{on,
			serialize.Leaf("spikesnum", serialize.Int(v.Count)),
			serialize.Leaf("spikesscale", serialize.Float(v.Scale)),
		}
	case Aliasing:
		return []*serialize.Element{on, serialize.Leaf("aliasingfactor", serialize.Float(v.FOVShrinkPercent))}
	case Distortion, GibbsRinging:
		return []*serialize.Element{on}
	}
	panic(fmt.Sprintf("simulation: unhandled artifact %T", a))
}

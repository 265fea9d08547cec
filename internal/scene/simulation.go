package scene

import (
	"fmt"
	"math"

	"github.com/dmrisim/simfactory/internal/geometry"
	"github.com/dmrisim/simfactory/internal/simulation"
)

// SimulationSpec is the acquisition side of a scene.
type SimulationSpec struct {
	Compartments []CompartmentSpec `yaml:"compartments"`
	Acquisition  AcquisitionSpec   `yaml:"acquisition"`
	Gradient     GradientSpec      `yaml:"gradient"`
	Artifacts    ArtifactsSpec     `yaml:"artifacts,omitempty"`
}

// CompartmentSpec uses D for stick and ball models and D1..D3 for tensors.
// Type is a compartment name or identifier.
type CompartmentSpec struct {
	Model string  `yaml:"model"`
	Type  string  `yaml:"type"`
	D     float64 `yaml:"d,omitempty"`
	D1    float64 `yaml:"d1,omitempty"`
	D2    float64 `yaml:"d2,omitempty"`
	D3    float64 `yaml:"d3,omitempty"`
	T1    float64 `yaml:"t1"`
	T2    float64 `yaml:"t2"`
}

// AcquisitionSpec leaves optional fields nil to take the profile defaults.
type AcquisitionSpec struct {
	EchoTime       float64  `yaml:"echo_time"`
	RepetitionTime float64  `yaml:"repetition_time"`
	Coils          int      `yaml:"coils"`
	DwellTime      *float64 `yaml:"dwell_time,omitempty"`
	PartialFourier *float64 `yaml:"partial_fourier,omitempty"`
	SignalScale    *float64 `yaml:"signal_scale,omitempty"`
	ReversePhase   bool     `yaml:"reverse_phase,omitempty"`
	InhomogenTime  *float64 `yaml:"inhomogen_time,omitempty"`
	AxonRadius     *float64 `yaml:"axon_radius,omitempty"`
}

// GradientSpec gives either explicit b-values and b-vectors, or shells whose
// directions are optimized by the factory sampler.
type GradientSpec struct {
	Type        string      `yaml:"type,omitempty"`
	NB0         int         `yaml:"n_b0,omitempty"`
	BVals       []float64   `yaml:"bvals,omitempty"`
	BVecs       [][]float64 `yaml:"bvecs,omitempty"`
	Shells      []ShellSpec `yaml:"shells,omitempty"`
	MaxIter     int         `yaml:"max_iter,omitempty"`
	Tensor      [][]float64 `yaml:"tensor,omitempty"`
	Eigenvalues []float64   `yaml:"eigenvalues,omitempty"`
	BDelta      float64     `yaml:"b_delta,omitempty"`
	BEta        float64     `yaml:"b_eta,omitempty"`
}

type ShellSpec struct {
	BValue float64 `yaml:"bvalue"`
	Points int     `yaml:"points"`
}

// ArtifactsSpec enables at most one artifact of each kind. They are added
// to the model in field order.
type ArtifactsSpec struct {
	Noise        *NoiseSpec    `yaml:"noise,omitempty"`
	Motion       *MotionSpec   `yaml:"motion,omitempty"`
	EddyCurrent  *EddySpec     `yaml:"eddy_current,omitempty"`
	Ghosting     *GhostingSpec `yaml:"ghosting,omitempty"`
	Spikes       *SpikesSpec   `yaml:"spikes,omitempty"`
	Aliasing     *AliasingSpec `yaml:"aliasing,omitempty"`
	GibbsRinging bool          `yaml:"gibbs_ringing,omitempty"`
	Distortion   bool          `yaml:"distortion,omitempty"`
}

type NoiseSpec struct {
	Type     string  `yaml:"type"`
	Variance float64 `yaml:"variance"`
}

type MotionSpec struct {
	Random      bool      `yaml:"random,omitempty"`
	Volumes     []int     `yaml:"volumes,omitempty"`
	Rotation    []float64 `yaml:"rotation,omitempty"`
	Translation []float64 `yaml:"translation,omitempty"`
}

type EddySpec struct {
	Strength float64 `yaml:"strength"`
	Tau      float64 `yaml:"tau,omitempty"`
}

type GhostingSpec struct {
	KSpaceOffset float64 `yaml:"k_space_offset"`
}

type SpikesSpec struct {
	Count int     `yaml:"count"`
	Scale float64 `yaml:"scale"`
}

type AliasingSpec struct {
	FOVShrinkPercent float64 `yaml:"fov_shrink_percent"`
}

// BuildSimulation compiles the simulation block against the world of geo.
func (s *Scene) BuildSimulation(f *simulation.Factory, geo *geometry.Handler) (*simulation.Handler, error) {
	spec := s.Simulation
	if spec == nil {
		return nil, ErrNoSimulation
	}

	compartments := make([]simulation.Compartment, 0, len(spec.Compartments))
	for i, cs := range spec.Compartments {
		c, err := buildCompartment(f, cs)
		if err != nil {
			return nil, fmt.Errorf("compartment %d: %w", i, err)
		}
		compartments = append(compartments, c)
	}
	h, err := f.GetSimulationHandler(geo.Resolution(), geo.Spacing(), compartments)
	if err != nil {
		return nil, err
	}

	gradient, err := buildGradient(f, spec.Gradient)
	if err != nil {
		return nil, fmt.Errorf("gradient: %w", err)
	}
	artifacts, err := buildArtifacts(f, spec.Artifacts)
	if err != nil {
		return nil, fmt.Errorf("artifacts: %w", err)
	}

	h.SetAcquisitionProfile(buildAcquisition(f, spec.Acquisition)).
		SetGradientProfile(gradient).
		SetArtifactModel(artifacts)
	return h, nil
}

func buildCompartment(f *simulation.Factory, cs CompartmentSpec) (simulation.Compartment, error) {
	t, err := simulation.ParseCompartmentType(cs.Type)
	if err != nil {
		return simulation.Compartment{}, err
	}
	switch simulation.CompartmentModel(cs.Model) {
	case simulation.ModelStick:
		return f.GenerateFiberStickCompartment(cs.D, cs.T1, cs.T2, t)
	case simulation.ModelTensor:
		return f.GenerateFiberTensorCompartment(cs.D1, cs.D2, cs.D3, cs.T1, cs.T2, t)
	case simulation.ModelBall:
		return f.GenerateExtraBallCompartment(cs.D, cs.T1, cs.T2, t)
	}
	return simulation.Compartment{}, fmt.Errorf("model %q (valid: stick, tensor, ball): %w", cs.Model, ErrInvalidScene)
}

func buildAcquisition(f *simulation.Factory, a AcquisitionSpec) simulation.AcquisitionProfile {
	var opts []simulation.AcquisitionOption
	if a.DwellTime != nil {
		opts = append(opts, simulation.WithDwellTime(*a.DwellTime))
	}
	if a.PartialFourier != nil {
		opts = append(opts, simulation.WithPartialFourier(*a.PartialFourier))
	}
	if a.SignalScale != nil {
		opts = append(opts, simulation.WithSignalScale(*a.SignalScale))
	}
	if a.ReversePhase {
		opts = append(opts, simulation.WithReversePhase(true))
	}
	if a.InhomogenTime != nil {
		opts = append(opts, simulation.WithInhomogenTime(*a.InhomogenTime))
	}
	if a.AxonRadius != nil {
		opts = append(opts, simulation.WithAxonRadius(*a.AxonRadius))
	}
	return f.GenerateAcquisitionProfile(a.EchoTime, a.RepetitionTime, a.Coils, opts...)
}

func buildGradient(f *simulation.Factory, g GradientSpec) (simulation.GradientProfile, error) {
	gType := simulation.StejskalTanner
	if g.Type != "" {
		t, err := simulation.ParseAcquisitionType(g.Type)
		if err != nil {
			return simulation.GradientProfile{}, err
		}
		gType = t
	}

	var params simulation.AcquisitionParams
	if g.Tensor != nil {
		if len(g.Tensor) != 3 {
			return simulation.GradientProfile{}, fmt.Errorf("tensor needs 3 rows: %w", ErrInvalidScene)
		}
		for i, row := range g.Tensor {
			v, err := vec3("tensor row", row)
			if err != nil {
				return simulation.GradientProfile{}, err
			}
			params.Tensor[i] = v
		}
	}
	if g.Eigenvalues != nil {
		v, err := vec3("eigenvalues", g.Eigenvalues)
		if err != nil {
			return simulation.GradientProfile{}, err
		}
		params.Eigenvalues = v
	}
	params.BDelta, params.BEta = g.BDelta, g.BEta

	bvals, bvecs, err := gradientTable(f, g)
	if err != nil {
		return simulation.GradientProfile{}, err
	}
	return f.GenerateGradientProfile(bvals, bvecs, g.NB0, gType, params)
}

// gradientTable returns the explicit table, or one optimized direction per
// shell point with the shell's b-value.
func gradientTable(f *simulation.Factory, g GradientSpec) ([]float64, [][3]float64, error) {
	if len(g.Shells) == 0 {
		bvecs := make([][3]float64, len(g.BVecs))
		for i, v := range g.BVecs {
			vec, err := vec3(fmt.Sprintf("bvecs[%d]", i), v)
			if err != nil {
				return nil, nil, err
			}
			bvecs[i] = vec
		}
		return g.BVals, bvecs, nil
	}
	if len(g.BVals) > 0 || len(g.BVecs) > 0 {
		return nil, nil, fmt.Errorf("shells and an explicit table are exclusive: %w", ErrInvalidScene)
	}

	points := make([]int, len(g.Shells))
	for i, sh := range g.Shells {
		points[i] = sh.Points
	}
	dirs, err := f.GenerateGradientVectors(points, g.MaxIter)
	if err != nil {
		return nil, nil, err
	}
	bvals := make([]float64, 0, len(dirs))
	for _, sh := range g.Shells {
		for j := 0; j < sh.Points; j++ {
			bvals = append(bvals, sh.BValue)
		}
	}
	return bvals, dirs, nil
}

func buildArtifacts(f *simulation.Factory, a ArtifactsSpec) (simulation.ArtifactModel, error) {
	var list []simulation.Artifact
	if a.Noise != nil {
		t, err := simulation.ParseNoiseType(a.Noise.Type)
		if err != nil {
			return simulation.ArtifactModel{}, err
		}
		list = append(list, f.GenerateNoiseModel(t, a.Noise.Variance))
	}
	if a.Motion != nil {
		rot, err := optionalVec3("motion.rotation", a.Motion.Rotation, [3]float64{})
		if err != nil {
			return simulation.ArtifactModel{}, err
		}
		trans, err := optionalVec3("motion.translation", a.Motion.Translation, [3]float64{})
		if err != nil {
			return simulation.ArtifactModel{}, err
		}
		list = append(list, f.GenerateMotionModel(a.Motion.Random, a.Motion.Volumes, rot, trans))
	}
	if a.EddyCurrent != nil {
		list = append(list, f.GenerateEddyCurrentModel(a.EddyCurrent.Strength, a.EddyCurrent.Tau))
	}
	if a.Ghosting != nil {
		list = append(list, f.GenerateGhostingModel(a.Ghosting.KSpaceOffset))
	}
	if a.Spikes != nil {
		list = append(list, f.GenerateSignalSpikesModel(a.Spikes.Count, a.Spikes.Scale))
	}
	if a.Aliasing != nil {
		list = append(list, f.GenerateAliasingModel(a.Aliasing.FOVShrinkPercent))
	}
	if a.GibbsRinging {
		list = append(list, f.GenerateGibbsRingingModel())
	}
	if a.Distortion {
		d, err := f.GenerateDistortionModel()
		if err != nil {
			return simulation.ArtifactModel{}, err
		}
		list = append(list, d)
	}
	return f.GenerateArtifactModel(list...)
}

func vec3(field string, v []float64) ([3]float64, error) {
	if len(v) != 3 {
		return [3]float64{}, fmt.Errorf("%s has %d components, want 3: %w", field, len(v), ErrInvalidScene)
	}
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return [3]float64{}, fmt.Errorf("%s: %w", field, ErrInvalidScene)
		}
	}
	return [3]float64{v[0], v[1], v[2]}, nil
}

func optionalVec3(field string, v []float64, def [3]float64) ([3]float64, error) {
	if v == nil {
		return def, nil
	}
	return vec3(field, v)
}

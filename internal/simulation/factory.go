package simulation

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dmrisim/simfactory/internal/constants"
	"github.com/dmrisim/simfactory/internal/logging"
	"github.com/dmrisim/simfactory/internal/qspace"
)

// DefaultMaxIter bounds the gradient direction optimizer.
const DefaultMaxIter = constants.DefaultMaxIter

// Factory builds validated simulation components. Apart from its options
// it holds no state, so one Factory may serve any number of handlers.
type Factory struct {
	sampler           qspace.Sampler
	maxIter           int
	allowExperimental bool
	logger            *slog.Logger
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithSampler replaces the multishell direction sampler.
func WithSampler(s qspace.Sampler) FactoryOption {
	return func(f *Factory) { f.sampler = s }
}

// WithMaxIter sets the default optimizer iteration cap.
func WithMaxIter(n int) FactoryOption {
	return func(f *Factory) { f.maxIter = n }
}

// WithExperimentalArtifacts lets artifact models without a settled
// parameterization through.
func WithExperimentalArtifacts(allow bool) FactoryOption {
	return func(f *Factory) { f.allowExperimental = allow }
}

// WithLogger sets the logger used for optimizer diagnostics.
func WithLogger(l *slog.Logger) FactoryOption {
	return func(f *Factory) { f.logger = l }
}

// NewFactory returns a factory using the repulsion sampler and DefaultMaxIter.
func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{
		sampler: qspace.Repulsion{},
		maxIter: DefaultMaxIter,
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = logging.Discard()
	}
	return f
}

// GetSimulationHandler returns a handler sized like the geometry world and
// preloaded with compartments.
func (f *Factory) GetSimulationHandler(resolution []int, spacing []float64, compartments []Compartment) (*Handler, error) {
	h, err := NewHandler(resolution, spacing)
	if err != nil {
		return nil, err
	}
	for _, c := range compartments {
		if err := h.AddCompartment(c); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// GenerateAcquisitionProfile returns a profile with dwell time 1, partial
// Fourier 1, signal scale 100, no phase reversal, inhomogeneity time 50 and
// automatic axon radius unless opts override them.
func (f *Factory) GenerateAcquisitionProfile(echoTime, repetitionTime float64, nChannels int, opts ...AcquisitionOption) AcquisitionProfile {
	return NewAcquisitionProfile(echoTime, repetitionTime, nChannels, opts...)
}

// GenerateGradientVectors returns optimized unit directions for each shell,
// grouped in shell order. All shells are weighted as one group. A maxIter
// of zero or less uses the factory default. Sampler errors are returned
// unmodified.
func (f *Factory) GenerateGradientVectors(pointsPerShell []int, maxIter int) ([][3]float64, error) {
	if maxIter <= 0 {
		maxIter = f.maxIter
	}
	shells := len(pointsPerShell)
	group := make([]int, shells)
	for i := range group {
		group[i] = i
	}
	start := time.Now()
	weights, err := f.sampler.ComputeWeights(shells, pointsPerShell, [][]int{group}, []float64{1})
	if err != nil {
		return nil, err
	}
	dirs, err := f.sampler.Optimize(shells, pointsPerShell, weights, maxIter)
	if err != nil {
		return nil, err
	}
	f.logger.Debug("gradient directions optimized",
		"shells", shells, "points", len(dirs), "max_iter", maxIter, "elapsed", time.Since(start))
	return dirs, nil
}

// GenerateGradientProfile pads bvals and bvecs with nB0 b0 volumes and
// binds the variant registered for gType, built from params.
func (f *Factory) GenerateGradientProfile(bvals []float64, bvecs [][3]float64, nB0 int, gType AcquisitionType, params AcquisitionParams) (GradientProfile, error) {
	variant, err := NewAcquisitionVariant(gType, params)
	if err != nil {
		return GradientProfile{}, err
	}
	return NewGradientProfile(bvals, bvecs, nB0, variant)
}

// GenerateArtifactModel wraps artifacts, in order, as one model.
// Distortion is refused with ErrNotProductionReady unless the factory
// allows experimental artifacts.
func (f *Factory) GenerateArtifactModel(artifacts ...Artifact) (ArtifactModel, error) {
	return newArtifactModel(f.allowExperimental, artifacts...)
}

func (f *Factory) GenerateNoiseModel(noiseType NoiseType, variance float64) Noise {
	return Noise{Type: noiseType, Variance: variance}
}

// GenerateMotionModel moves the volumes listed in volumes, or random ones
// when volumes is nil.
func (f *Factory) GenerateMotionModel(random bool, volumes []int, rotation, translation [3]float64) Motion {
	return Motion{
		Random:      random,
		Volumes:     append([]int(nil), volumes...),
		Rotation:    rotation,
		Translation: translation,
	}
}

// GenerateDistortionModel fails with ErrNotProductionReady unless the
// factory allows experimental artifacts.
func (f *Factory) GenerateDistortionModel() (Distortion, error) {
	if !f.allowExperimental {
		return Distortion{}, fmt.Errorf("distortion: %w", ErrNotProductionReady)
	}
	f.logger.Warn("distortion artifact enabled without a settled parameterization")
	return Distortion{}, nil
}

// GenerateEddyCurrentModel uses DefaultEddyTau when tau is zero.
func (f *Factory) GenerateEddyCurrentModel(strength, tau float64) EddyCurrent {
	if tau == 0 {
		tau = DefaultEddyTau
	}
	return EddyCurrent{Strength: strength, Tau: tau}
}

func (f *Factory) GenerateGhostingModel(kSpaceOffset float64) Ghosting {
	return Ghosting{KSpaceOffset: kSpaceOffset}
}

func (f *Factory) GenerateSignalSpikesModel(count int, scale float64) Spikes {
	return Spikes{Count: count, Scale: scale}
}

func (f *Factory) GenerateAliasingModel(fovShrinkPercent float64) Aliasing {
	return Aliasing{FOVShrinkPercent: fovShrinkPercent}
}

func (f *Factory) GenerateGibbsRingingModel() GibbsRinging {
	return GibbsRinging{}
}

// GenerateFiberStickCompartment fails with *InvalidCompartmentAssignmentError
// unless t is IntraAxonal or InterAxonal.
func (f *Factory) GenerateFiberStickCompartment(diffusivity, t1, t2 float64, t CompartmentType) (Compartment, error) {
	return NewStickCompartment(diffusivity, t1, t2, t)
}

// GenerateFiberTensorCompartment fails with *InvalidCompartmentAssignmentError
// unless t is IntraAxonal or InterAxonal.
func (f *Factory) GenerateFiberTensorCompartment(d1, d2, d3, t1, t2 float64, t CompartmentType) (Compartment, error) {
	return NewTensorCompartment(d1, d2, d3, t1, t2, t)
}

// GenerateExtraBallCompartment fails with *InvalidCompartmentAssignmentError
// unless t is ExtraAxonal1 or ExtraAxonal2.
func (f *Factory) GenerateExtraBallCompartment(diffusivity, t1, t2 float64, t CompartmentType) (Compartment, error) {
	return NewBallCompartment(diffusivity, t1, t2, t)
}

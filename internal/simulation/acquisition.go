package simulation

// Acquisition profile defaults, applied by NewAcquisitionProfile before options.
const (
	DefaultDwellTime      = 1.0
	DefaultPartialFourier = 1.0
	DefaultSignalScale    = 100.0
	DefaultInhomogenTime  = 50.0
	DefaultAxonRadius     = 0.0
)

// AcquisitionProfile holds the scan timing and hardware parameters of the
// simulated sequence. Times are in milliseconds.
type AcquisitionProfile struct {
	EchoTime       float64
	RepetitionTime float64
	Coils          int
	DwellTime      float64
	PartialFourier float64
	SignalScale    float64
	ReversePhase   bool
	InhomogenTime  float64
	// AxonRadius of zero lets the simulator determine it.
	AxonRadius float64
}

// AcquisitionOption overrides one defaulted field of an AcquisitionProfile.
type AcquisitionOption func(*AcquisitionProfile)

// WithDwellTime sets the time to acquire one k-space sample.
func WithDwellTime(ms float64) AcquisitionOption {
	return func(p *AcquisitionProfile) { p.DwellTime = ms }
}

// WithPartialFourier sets the partial Fourier ratio.
func WithPartialFourier(ratio float64) AcquisitionOption {
	return func(p *AcquisitionProfile) { p.PartialFourier = ratio }
}

// WithSignalScale sets the factor applied to the output signal.
func WithSignalScale(scale float64) AcquisitionOption {
	return func(p *AcquisitionProfile) { p.SignalScale = scale }
}

// WithReversePhase acquires PA instead of AP.
func WithReversePhase(reverse bool) AcquisitionOption {
	return func(p *AcquisitionProfile) { p.ReversePhase = reverse }
}

// WithInhomogenTime sets the gradient inhomogeneity time.
func WithInhomogenTime(ms float64) AcquisitionOption {
	return func(p *AcquisitionProfile) { p.InhomogenTime = ms }
}

// WithAxonRadius sets the axon radius of the simulated medium.
func WithAxonRadius(r float64) AcquisitionOption {
	return func(p *AcquisitionProfile) { p.AxonRadius = r }
}

// NewAcquisitionProfile returns a profile with every field set, defaults
// first and then opts in order.
func NewAcquisitionProfile(echoTime, repetitionTime float64, coils int, opts ...AcquisitionOption) AcquisitionProfile {
	p := AcquisitionProfile{
		EchoTime:       echoTime,
		RepetitionTime: repetitionTime,
		Coils:          coils,
		DwellTime:      DefaultDwellTime,
		PartialFourier: DefaultPartialFourier,
		SignalScale:    DefaultSignalScale,
		InhomogenTime:  DefaultInhomogenTime,
		AxonRadius:     DefaultAxonRadius,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

func (p AcquisitionProfile) validate() error {
	for _, v := range []float64{p.EchoTime, p.RepetitionTime, p.DwellTime, p.PartialFourier, p.SignalScale, p.InhomogenTime, p.AxonRadius} {
		if !finite(v) {
			return ErrInvalidParameter
		}
	}
	if p.Coils < 1 {
		return ErrInvalidParameter
	}
	return nil
}

package simulation

import (
	"fmt"
	"math"

	"github.com/dmrisim/simfactory/internal/serialize"
)

// AcquisitionVariant is the acquisition-type specific part of a gradient
// profile. Each AcquisitionType maps to exactly one implementation.
type AcquisitionVariant interface {
	Type() AcquisitionType
	element() *serialize.Element
}

// AcquisitionParams carries the constructor arguments of every variant.
// Each constructor reads only the fields it owns.
type AcquisitionParams struct {
	// Tensor is the normalized b-tensor shape for TENSOR_VALUED_BY_TENSOR.
	Tensor [3][3]float64
	// Eigenvalues of the b-tensor shape for TENSOR_VALUED_BY_EIGS.
	Eigenvalues [3]float64
	// BDelta and BEta parameterize the shape for TENSOR_VALUED_BY_PARAMS.
	BDelta float64
	BEta   float64
}

type variantConstructor func(AcquisitionParams) (AcquisitionVariant, error)

var acquisitionRegistry = map[AcquisitionType]variantConstructor{}

// register binds a constructor to an acquisition type. It panics on a nil
// constructor or a second registration so a broken table fails at startup.
func register(t AcquisitionType, ctor variantConstructor) {
	if ctor == nil {
		panic(fmt.Sprintf("simulation: nil constructor for %s", t))
	}
	if _, dup := acquisitionRegistry[t]; dup {
		panic(fmt.Sprintf("simulation: %s registered twice", t))
	}
	acquisitionRegistry[t] = ctor
}

func init() {
	register(StejskalTanner, func(AcquisitionParams) (AcquisitionVariant, error) {
		return StejskalTannerVariant{}, nil
	})
	register(TensorValuedByTensor, func(p AcquisitionParams) (AcquisitionVariant, error) {
		return NewTensorValuedByTensor(p.Tensor)
	})
	register(TensorValuedByEigs, func(p AcquisitionParams) (AcquisitionVariant, error) {
		return NewTensorValuedByEigs(p.Eigenvalues)
	})
	register(TensorValuedByParams, func(p AcquisitionParams) (AcquisitionVariant, error) {
		return NewTensorValuedByParams(p.BDelta, p.BEta)
	})
}

// NewAcquisitionVariant dispatches to the constructor registered for t.
func NewAcquisitionVariant(t AcquisitionType, params AcquisitionParams) (AcquisitionVariant, error) {
	ctor, ok := acquisitionRegistry[t]
	if !ok {
		return nil, fmt.Errorf("%q: %w", t, ErrUnknownAcquisitionType)
	}
	return ctor(params)
}

// StejskalTannerVariant is the linear pulsed-gradient encoding.
type StejskalTannerVariant struct{}

func (StejskalTannerVariant) Type() AcquisitionType { return StejskalTanner }

func (v StejskalTannerVariant) element() *serialize.Element {
	return serialize.NewElement("acquisition", serialize.Leaf("type", string(v.Type())))
}

// TensorValuedByTensorVariant encodes with an explicit b-tensor shape.
type TensorValuedByTensorVariant struct {
	Tensor [3][3]float64
}

// NewTensorValuedByTensor requires a finite symmetric tensor.
func NewTensorValuedByTensor(t [3][3]float64) (TensorValuedByTensorVariant, error) {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if !finite(t[i][j]) {
				return TensorValuedByTensorVariant{}, fmt.Errorf("b-tensor: %w", ErrInvalidParameter)
			}
			if math.Abs(t[i][j]-t[j][i]) > 1e-9 {
				return TensorValuedByTensorVariant{}, fmt.Errorf("b-tensor is not symmetric: %w", ErrInvalidParameter)
			}
		}
	}
	return TensorValuedByTensorVariant{Tensor: t}, nil
}

func (TensorValuedByTensorVariant) Type() AcquisitionType { return TensorValuedByTensor }

func (v TensorValuedByTensorVariant) element() *serialize.Element {
	tensor := serialize.NewElement("btensor")
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			tensor.Add(serialize.Leaf(serialize.Int(3*i+j), serialize.Float(v.Tensor[i][j])))
		}
	}
	return serialize.NewElement("acquisition", serialize.Leaf("type", string(v.Type())), tensor)
}

// TensorValuedByEigsVariant encodes with the eigenvalues of the b-tensor shape.
type TensorValuedByEigsVariant struct {
	Eigenvalues [3]float64
}

// NewTensorValuedByEigs requires finite, non-negative eigenvalues.
func NewTensorValuedByEigs(eigs [3]float64) (TensorValuedByEigsVariant, error) {
	for _, e := range eigs {
		if !finite(e) || e < 0 {
			return TensorValuedByEigsVariant{}, fmt.Errorf("b-tensor eigenvalue %v: %w", e, ErrInvalidParameter)
		}
	}
	return TensorValuedByEigsVariant{Eigenvalues: eigs}, nil
}

func (TensorValuedByEigsVariant) Type() AcquisitionType { return TensorValuedByEigs }

func (v TensorValuedByEigsVariant) element() *serialize.Element {
	eigs := serialize.NewElement("eigenvalues")
	for i, e := range v.Eigenvalues {
		eigs.Add(serialize.Leaf(serialize.Int(i), serialize.Float(e)))
	}
	return serialize.NewElement("acquisition", serialize.Leaf("type", string(v.Type())), eigs)
}

// TensorValuedByParamsVariant encodes with the b-tensor anisotropy (BDelta)
// and asymmetry (BEta).
type TensorValuedByParamsVariant struct {
	BDelta float64
	BEta   float64
}

// NewTensorValuedByParams requires BDelta in [-0.5, 1] and BEta in [0, 1].
func NewTensorValuedByParams(bDelta, bEta float64) (TensorValuedByParamsVariant, error) {
	if !finite(bDelta) || bDelta < -0.5 || bDelta > 1 {
		return TensorValuedByParamsVariant{}, fmt.Errorf("b_delta %v: %w", bDelta, ErrInvalidParameter)
	}
	if !finite(bEta) || bEta < 0 || bEta > 1 {
		return TensorValuedByParamsVariant{}, fmt.Errorf("b_eta %v: %w", bEta, ErrInvalidParameter)
	}
	return TensorValuedByParamsVariant{BDelta: bDelta, BEta: bEta}, nil
}

func (TensorValuedByParamsVariant) Type() AcquisitionType { return TensorValuedByParams }

func (v TensorValuedByParamsVariant) element() *serialize.Element {
	return serialize.NewElement("acquisition",
		serialize.Leaf("type", string(v.Type())),
		serialize.Leaf("bDelta", serialize.Float(v.BDelta)),
		serialize.Leaf("bEta", serialize.Float(v.BEta)),
	)
}

// GradientProfile is the b-value/b-vector sequence of an acquisition, b0
// volumes first, plus its acquisition variant. The two sequences always
// have equal length.
type GradientProfile struct {
	bvals   []float64
	bvecs   [][3]float64
	variant AcquisitionVariant
}

// NewGradientProfile prepends nB0 zero b-values and zero vectors to the
// supplied sequences, which must have equal length.
func NewGradientProfile(bvals []float64, bvecs [][3]float64, nB0 int, variant AcquisitionVariant) (GradientProfile, error) {
	if len(bvals) != len(bvecs) {
		return GradientProfile{}, fmt.Errorf("%d b-values, %d b-vectors: %w", len(bvals), len(bvecs), ErrGradientLengthMismatch)
	}
	if nB0 < 0 {
		return GradientProfile{}, fmt.Errorf("n_b0 %d: %w", nB0, ErrInvalidParameter)
	}
	if variant == nil {
		return GradientProfile{}, fmt.Errorf("nil acquisition variant: %w", ErrInvalidParameter)
	}
	g := GradientProfile{
		bvals:   make([]float64, nB0, nB0+len(bvals)),
		bvecs:   make([][3]float64, nB0, nB0+len(bvecs)),
		variant: variant,
	}
	for i, b := range bvals {
		if !finite(b) || b < 0 {
			return GradientProfile{}, fmt.Errorf("b-value %d (%v): %w", i, b, ErrInvalidParameter)
		}
		for _, c := range bvecs[i] {
			if !finite(c) {
				return GradientProfile{}, fmt.Errorf("b-vector %d: %w", i, ErrInvalidParameter)
			}
		}
	}
	g.bvals = append(g.bvals, bvals...)
	g.bvecs = append(g.bvecs, bvecs...)
	return g, nil
}

// Len is the number of volumes, b0 included.
func (g GradientProfile) Len() int { return len(g.bvals) }

// BValues returns a copy of the padded b-values.
func (g GradientProfile) BValues() []float64 {
	return append([]float64(nil), g.bvals...)
}

// BVectors returns a copy of the padded b-vectors.
func (g GradientProfile) BVectors() [][3]float64 {
	return append([][3]float64(nil), g.bvecs...)
}

func (g GradientProfile) Variant() AcquisitionVariant { return g.variant }

// B0Count is the number of volumes with a zero b-value.
func (g GradientProfile) B0Count() int {
	n := 0
	for _, b := range g.bvals {
		if b == 0 {
			n++
		}
	}
	return n
}

// MaxBValue is the largest b-value, zero for an all-b0 profile.
func (g GradientProfile) MaxBValue() float64 {
	m := 0.0
	for _, b := range g.bvals {
		m = math.Max(m, b)
	}
	return m
}

// ScaledDirections returns each b-vector normalized and scaled by
// sqrt(b/bmax), so a single maximum b-value encodes every shell. b0 volumes
// and zero-length vectors map to the zero vector.
func (g GradientProfile) ScaledDirections() [][3]float64 {
	bmax := g.MaxBValue()
	out := make([][3]float64, len(g.bvecs))
	for i, v := range g.bvecs {
		n := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
		if g.bvals[i] == 0 || n == 0 || bmax == 0 {
			continue
		}
		k := math.Sqrt(g.bvals[i]/bmax) / n
		out[i] = [3]float64{v[0] * k, v[1] * k, v[2] * k}
	}
	return out
}

package simulation

import (
	"fmt"
	"strconv"
	"strings"
)

// CompartmentType identifies a simulated tissue compartment.
type CompartmentType int

const (
	IntraAxonal CompartmentType = iota + 1
	InterAxonal
	ExtraAxonal1
	ExtraAxonal2
)

var compartmentNames = map[CompartmentType]string{
	IntraAxonal:  "INTRA_AXONAL",
	InterAxonal:  "INTER_AXONAL",
	ExtraAxonal1: "EXTRA_AXONAL_1",
	ExtraAxonal2: "EXTRA_AXONAL_2",
}

func (c CompartmentType) String() string {
	if name, ok := compartmentNames[c]; ok {
		return name
	}
	return fmt.Sprintf("CompartmentType(%d)", int(c))
}

// ID is the identifier written to the parameter document ("1" to "4").
func (c CompartmentType) ID() string {
	return strconv.Itoa(int(c))
}

// Valid reports whether c is one of the four compartment types.
func (c CompartmentType) Valid() bool {
	_, ok := compartmentNames[c]
	return ok
}

// IsAxonal reports whether c may hold a fiber (stick or tensor) model.
func (c CompartmentType) IsAxonal() bool {
	return c == IntraAxonal || c == InterAxonal
}

// IsExtraAxonal reports whether c may hold a ball model.
func (c CompartmentType) IsExtraAxonal() bool {
	return c == ExtraAxonal1 || c == ExtraAxonal2
}

// ParseCompartmentType accepts either the name (INTRA_AXONAL) or the
// identifier ("1").
func ParseCompartmentType(s string) (CompartmentType, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for c, name := range compartmentNames {
		if s == name || s == c.ID() {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%q: %w", s, ErrUnknownCompartmentType)
}

// AcquisitionType selects the diffusion encoding of a gradient profile.
type AcquisitionType string

const (
	StejskalTanner       AcquisitionType = "STEJSKAL_TANNER"
	TensorValuedByTensor AcquisitionType = "TENSOR_VALUED_BY_TENSOR"
	TensorValuedByEigs   AcquisitionType = "TENSOR_VALUED_BY_EIGS"
	TensorValuedByParams AcquisitionType = "TENSOR_VALUED_BY_PARAMS"
)

// ParseAcquisitionType accepts a registered acquisition type name, case-insensitive.
func ParseAcquisitionType(s string) (AcquisitionType, error) {
	t := AcquisitionType(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := acquisitionRegistry[t]; !ok {
		return "", fmt.Errorf("%q: %w", s, ErrUnknownAcquisitionType)
	}
	return t, nil
}

// NoiseType is the whole-image noise distribution.
type NoiseType string

const (
	NoiseComplexGaussian NoiseType = "gaussian"
	NoiseRician          NoiseType = "rician"
)

// ParseNoiseType accepts "gaussian", "complex_gaussian" or "rician".
func ParseNoiseType(s string) (NoiseType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gaussian", "complex_gaussian":
		return NoiseComplexGaussian, nil
	case "rician":
		return NoiseRician, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownNoiseType)
}

package simulation

import (
	"fmt"
	"math"
)

// CompartmentModel is the diffusion model of a compartment.
type CompartmentModel string

const (
	ModelStick  CompartmentModel = "stick"
	ModelTensor CompartmentModel = "tensor"
	ModelBall   CompartmentModel = "ball"
)

// Fiber reports whether the model describes a fiber (oriented) compartment.
func (m CompartmentModel) Fiber() bool {
	return m == ModelStick || m == ModelTensor
}

// Kind is "fiber" or "non-fiber".
func (m CompartmentModel) Kind() string {
	if m.Fiber() {
		return "fiber"
	}
	return "non-fiber"
}

// Compartment is one tissue compartment model. Diffusivities are in mm²/s
// and relaxation times in milliseconds. Stick and ball use D; tensor uses
// D1, D2 and D3.
type Compartment struct {
	Model CompartmentModel
	Type  CompartmentType
	D     float64
	D1    float64
	D2    float64
	D3    float64
	T1    float64
	T2    float64
}

// NewStickCompartment returns a stick model for an intra or inter axonal compartment.
func NewStickCompartment(diffusivity, t1, t2 float64, t CompartmentType) (Compartment, error) {
	c := Compartment{Model: ModelStick, Type: t, D: diffusivity, T1: t1, T2: t2}
	if err := c.Validate(); err != nil {
		return Compartment{}, err
	}
	return c, nil
}

// NewTensorCompartment returns a tensor model for an intra or inter axonal compartment.
func NewTensorCompartment(d1, d2, d3, t1, t2 float64, t CompartmentType) (Compartment, error) {
	c := Compartment{Model: ModelTensor, Type: t, D1: d1, D2: d2, D3: d3, T1: t1, T2: t2}
	if err := c.Validate(); err != nil {
		return Compartment{}, err
	}
	return c, nil
}

// NewBallCompartment returns a ball model for an extra axonal compartment.
func NewBallCompartment(diffusivity, t1, t2 float64, t CompartmentType) (Compartment, error) {
	c := Compartment{Model: ModelBall, Type: t, D: diffusivity, T1: t1, T2: t2}
	if err := c.Validate(); err != nil {
		return Compartment{}, err
	}
	return c, nil
}

// Validate checks the model against the compartment type and that every
// parameter is finite.
func (c Compartment) Validate() error {
	switch c.Model {
	case ModelStick, ModelTensor:
		if !c.Type.IsAxonal() {
			return &InvalidCompartmentAssignmentError{Model: c.Model, Type: c.Type}
		}
	case ModelBall:
		if !c.Type.IsExtraAxonal() {
			return &InvalidCompartmentAssignmentError{Model: c.Model, Type: c.Type}
		}
	default:
		return fmt.Errorf("model %q: %w", c.Model, ErrInvalidParameter)
	}
	for _, v := range []float64{c.D, c.D1, c.D2, c.D3, c.T1, c.T2} {
		if !finite(v) {
			return fmt.Errorf("%s compartment %s: %w", c.Model, c.Type, ErrInvalidParameter)
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

package simulation

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCompartmentAssignment is the sentinel matched by
	// InvalidCompartmentAssignmentError.
	ErrInvalidCompartmentAssignment = errors.New("simulation: compartment type not allowed for model")

	// ErrGradientLengthMismatch is returned when b-values and b-vectors differ in length.
	ErrGradientLengthMismatch = errors.New("simulation: b-values and b-vectors differ in length")

	// ErrUnknownAcquisitionType is returned for an acquisition type with no registered constructor.
	ErrUnknownAcquisitionType = errors.New("simulation: unknown acquisition type")

	// ErrUnknownCompartmentType is returned when parsing an unknown compartment identifier.
	ErrUnknownCompartmentType = errors.New("simulation: unknown compartment type")

	// ErrUnknownNoiseType is returned when parsing an unknown noise identifier.
	ErrUnknownNoiseType = errors.New("simulation: unknown noise type")

	// ErrInvalidParameter is returned for NaN/Inf values, negative counts
	// and malformed variant parameters.
	ErrInvalidParameter = errors.New("simulation: invalid parameter")

	// ErrNotProductionReady is returned when an artifact model with no
	// settled parameterization (distortions) is used without opting in.
	ErrNotProductionReady = errors.New("simulation: artifact model is not production ready")

	// ErrIncomplete is returned when a handler lacks a component required
	// to write the parameter document.
	ErrIncomplete = errors.New("simulation: handler is incomplete")

	// ErrDuplicateCompartment is returned when two compartments share a type.
	ErrDuplicateCompartment = errors.New("simulation: compartment type already assigned")
)

// InvalidCompartmentAssignmentError reports a compartment type that the
// requested model cannot occupy.
type InvalidCompartmentAssignmentError struct {
	Model CompartmentModel
	Type  CompartmentType
}

func (e *InvalidCompartmentAssignmentError) Error() string {
	return fmt.Sprintf("simulation: %s compartment cannot be assigned to %s", e.Model, e.Type)
}

func (e *InvalidCompartmentAssignmentError) Unwrap() error {
	return ErrInvalidCompartmentAssignment
}

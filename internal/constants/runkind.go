package constants

// RunKind identifies what a generation run produced.
type RunKind string

const (
	// RunGeometry wrote a geometry document and spline files.
	RunGeometry RunKind = "geometry"

	// RunSimulation wrote a simulation parameter document and gradient tables.
	RunSimulation RunKind = "simulation"
)

// Valid returns true if the kind is a recognized value.
func (k RunKind) Valid() bool {
	switch k {
	case RunGeometry, RunSimulation:
		return true
	}
	return false
}

// String returns the string representation of the kind.
func (k RunKind) String() string {
	return string(k)
}

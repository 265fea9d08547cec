// Package simulation builds the acquisition side of a diffusion MRI
// simulation: acquisition profiles, gradient profiles, artifact models and
// tissue compartments, and writes them as a Fiberfox-style parameter
// document.
//
// Factory is the entry point. Constructors validate their inputs against
// three closed enumerations (CompartmentType, AcquisitionType, NoiseType)
// and return typed errors instead of aborting:
//
//	f := simulation.NewFactory()
//	stick, err := f.GenerateFiberStickCompartment(0.0019, 900, 80, simulation.IntraAxonal)
//	ball, err := f.GenerateExtraBallCompartment(0.003, 4000, 2000, simulation.ExtraAxonal1)
//	g, err := f.GenerateGradientProfile(bvals, bvecs, 2, simulation.StejskalTanner, simulation.AcquisitionParams{})
//
//	h, err := f.GetSimulationHandler(geo.Resolution(), geo.Spacing(), []simulation.Compartment{stick, ball})
//	h.SetAcquisitionProfile(f.GenerateAcquisitionProfile(100, 5000, 1))
//	h.SetGradientProfile(g)
//	out, err := h.GenerateXMLConfigurationFile("run", dir)
package simulation

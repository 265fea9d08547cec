// Package geometry builds the synthetic tissue geometry of a simulated
// diffusion MRI world: fibers, bundles, clusters and spheres placed in a
// voxel world.
//
// Primitives are immutable values created by the Create* constructors, which
// validate their inputs. Rigid transforms (RotateFiber, TranslateFiber and
// their bundle counterparts) return new values and never touch their input,
// so a fiber can be reused to build rotated or shifted variants.
//
// A Handler collects bundles, clusters and spheres for one world and writes
// the geometry document plus one spline file per bundle:
//
//	h, _ := geometry.NewHandler([]int{10, 10, 10}, []float64{2, 2, 2})
//	h.AddBundle(bundle).AddSphere(sphere)
//	out, err := h.GenerateConfigurationFiles("test_factory", dir)
package geometry

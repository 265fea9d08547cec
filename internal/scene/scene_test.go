package scene_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmrisim/simfactory/internal/scene"
	"github.com/dmrisim/simfactory/internal/simulation"
)

func TestBuiltinNames(t *testing.T) {
	require.Equal(t, []string{"multi-clusters", "single-bundle"}, scene.BuiltinNames())

	_, err := scene.Builtin("nope")
	require.ErrorIs(t, err, scene.ErrUnknownBuiltin)
}

func TestBuiltin_SingleBundle(t *testing.T) {
	s, err := scene.Builtin("single-bundle")
	require.NoError(t, err)
	require.Equal(t, "single_bundle", s.Name)

	geo, err := s.BuildGeometry()
	require.NoError(t, err)
	require.Equal(t, 1, geo.BundleCount())
	require.Equal(t, 1, geo.SphereCount())
	require.Equal(t, []int{10, 10, 10}, geo.Resolution())

	b := geo.Bundle(0)
	require.Equal(t, 2, b.FiberCount())
	require.Equal(t, 100000, b.Meta().FiberCount())

	fibers := b.Fibers()
	require.Equal(t, 17, fibers[1].AnchorCount())
	first := fibers[1].Anchors()[0]
	require.InDelta(t, 0.5, first[0], 1e-12)
	require.InDelta(t, 0.5-0.8*0.8660254037844386, first[1], 1e-12)
	require.InDelta(t, 0.1, first[2], 1e-12)

	dir := t.TempDir()
	out, err := geo.GenerateConfigurationFiles(s.Name, dir)
	require.NoError(t, err)
	require.Len(t, out.SplineFiles, 1)
	require.Equal(t, filepath.Join(dir, "single_bundle_f_0.vspl"), out.SplineFiles[0])
}

func TestBuiltin_MultiClusters(t *testing.T) {
	s, err := scene.Builtin("multi-clusters")
	require.NoError(t, err)

	geo, err := s.BuildGeometry()
	require.NoError(t, err)
	require.Equal(t, 4, geo.BundleCount())
	require.Equal(t, 2, geo.SphereCount())
	require.Equal(t, 1000, geo.Bundle(1).Meta().FiberCount())
	require.Equal(t, 4000, geo.Bundle(2).Meta().FiberCount())

	structures, err := geo.Structures()
	require.NoError(t, err)
	require.Len(t, structures, 6)
}

func TestBuildSimulation_Builtins(t *testing.T) {
	f := simulation.NewFactory()
	for _, name := range scene.BuiltinNames() {
		t.Run(name, func(t *testing.T) {
			s, err := scene.Builtin(name)
			require.NoError(t, err)
			geo, err := s.BuildGeometry()
			require.NoError(t, err)

			sim, err := s.BuildSimulation(f, geo)
			require.NoError(t, err)

			out, err := sim.GenerateXMLConfigurationFile(s.Name, t.TempDir())
			require.NoError(t, err)
			doc, err := os.ReadFile(out.ParameterFile)
			require.NoError(t, err)
			require.Contains(t, string(doc), "<fiberfox>")
		})
	}
}

func TestBuildSimulation_ShellTable(t *testing.T) {
	s, err := scene.Builtin("multi-clusters")
	require.NoError(t, err)
	geo, err := s.BuildGeometry()
	require.NoError(t, err)

	sim, err := s.BuildSimulation(simulation.NewFactory(), geo)
	require.NoError(t, err)
	require.Len(t, sim.Compartments(), 3)

	doc, err := sim.Document()
	require.NoError(t, err)
	require.Contains(t, doc, "<numgradients>62</numgradients>")
	require.Contains(t, doc, "<bvalue>2000</bvalue>")
	require.Contains(t, doc, "<type>TENSOR_VALUED_BY_PARAMS</type>")
	require.Contains(t, doc, "<partialfourier>0.75</partialfourier>")
}

const minimal = `
name: tiny
world:
  resolution: [4, 4, 4]
  spacing: [1, 1, 1]
fibers:
  - id: a
    radius: 1
    symmetry: 1
    sampling: 3
    points: [[0, 0, 0], [0, 0.5, 0], [0, 1, 0]]
  - id: b
    from: a
    translate: [1, 0, 0]
bundles:
  - id: ab
    standalone: true
    fibers: [a, b]
`

func TestParse_Minimal(t *testing.T) {
	s, err := scene.Parse([]byte(minimal))
	require.NoError(t, err)

	geo, err := s.BuildGeometry()
	require.NoError(t, err)
	require.Equal(t, 1, geo.BundleCount())
	moved := geo.Bundle(0).Fibers()[1].Anchors()
	require.Equal(t, 1.0, moved[2][0])
	require.Equal(t, 1.0, moved[2][1])

	_, err = s.BuildSimulation(simulation.NewFactory(), geo)
	require.ErrorIs(t, err, scene.ErrNoSimulation)

	data, err := s.Marshal()
	require.NoError(t, err)
	again, err := scene.Parse(data)
	require.NoError(t, err)
	require.Equal(t, s, again)
}

func TestParse_Errors(t *testing.T) {
	_, err := scene.Parse([]byte("world: {resolution: [1], spacing: [1]}\nbogus: 1\n"))
	require.Error(t, err)

	_, err = scene.Parse([]byte("name: empty\n"))
	require.ErrorIs(t, err, scene.ErrInvalidScene)

	_, err = scene.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestBuildGeometry_Errors(t *testing.T) {
	tests := []struct {
		name    string
		edit    func(string) string
		wantErr error
	}{
		{
			name:    "unknown fiber in bundle",
			edit:    func(s string) string { return strings.Replace(s, "fibers: [a, b]", "fibers: [a, c]", 1) },
			wantErr: scene.ErrUnknownReference,
		},
		{
			name:    "unknown source fiber",
			edit:    func(s string) string { return strings.Replace(s, "from: a", "from: z", 1) },
			wantErr: scene.ErrUnknownReference,
		},
		{
			name:    "duplicate fiber id",
			edit:    func(s string) string { return strings.Replace(s, "id: b", "id: a", 1) },
			wantErr: scene.ErrDuplicateID,
		},
		{
			name:    "short translation",
			edit:    func(s string) string { return strings.Replace(s, "translate: [1, 0, 0]", "translate: [1, 0]", 1) },
			wantErr: scene.ErrInvalidScene,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := scene.Parse([]byte(tt.edit(minimal)))
			require.NoError(t, err)
			_, err = s.BuildGeometry()
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestBuildSimulation_Errors(t *testing.T) {
	base, err := scene.Builtin("single-bundle")
	require.NoError(t, err)
	geo, err := base.BuildGeometry()
	require.NoError(t, err)
	f := simulation.NewFactory()

	s := *base
	sim := *base.Simulation
	sim.Compartments = []scene.CompartmentSpec{{Model: "ball", Type: "INTRA_AXONAL", D: 0.003, T1: 4000, T2: 2000}}
	s.Simulation = &sim
	_, err = s.BuildSimulation(f, geo)
	require.ErrorIs(t, err, simulation.ErrInvalidCompartmentAssignment)

	sim = *base.Simulation
	sim.Artifacts = scene.ArtifactsSpec{Distortion: true}
	s.Simulation = &sim
	_, err = s.BuildSimulation(f, geo)
	require.ErrorIs(t, err, simulation.ErrNotProductionReady)

	_, err = s.BuildSimulation(simulation.NewFactory(simulation.WithExperimentalArtifacts(true)), geo)
	require.NoError(t, err)

	sim = *base.Simulation
	sim.Gradient = scene.GradientSpec{BVals: []float64{1000, 2000}, BVecs: [][]float64{{1, 0, 0}}}
	s.Simulation = &sim
	_, err = s.BuildSimulation(f, geo)
	require.ErrorIs(t, err, simulation.ErrGradientLengthMismatch)
}

package geometry

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmrisim/simfactory/internal/logging"
	"github.com/stretchr/testify/require"
)

type geometryDoc struct {
	World struct {
		Dimensions int       `json:"dimensions"`
		Resolution []int     `json:"resolution"`
		Spacing    []float64 `json:"spacing"`
	} `json:"world"`
	Path       string           `json:"path"`
	Structures []map[string]any `json:"structures"`
}

func exampleHandler(t *testing.T) *Handler {
	t.Helper()
	h, err := NewHandler([]int{10, 10, 10}, []float64{2, 2, 2})
	require.NoError(t, err)

	f1 := mustFiber(t)
	_, f2 := RotateFiber(f1, nil, NewRotation(PlaneYZ, math.Pi/6), Vec3{0.5, 0.5, 0.5}, Vec3{})
	b, err := CreateBundle(mustMeta(t, 100000), []Fiber{f1, f2})
	require.NoError(t, err)

	s, err := CreateSphere(5, Vec3{-2, 7, 10})
	require.NoError(t, err)

	return h.AddBundle(b).AddSphere(s)
}

func readDoc(t *testing.T, path string) geometryDoc {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc geometryDoc
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func TestGenerateConfigurationFiles_BundleAndSphere(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	out, err := exampleHandler(t).GenerateConfigurationFiles("test_factory", dir)
	require.NoError(t, err)

	require.Equal(t, filepath.Join(dir, "test_factory_geometry_base.json"), out.GeometryFile)
	require.Equal(t, []string{filepath.Join(dir, "test_factory_f_0.vspl")}, out.SplineFiles)

	doc := readDoc(t, out.GeometryFile)
	require.Equal(t, dir, doc.Path)
	require.Equal(t, []int{10, 10, 10}, doc.World.Resolution)
	require.Len(t, doc.Structures, 2)
	require.Equal(t, []any{"f_0"}, doc.Structures[0]["bundles"])
	require.Equal(t, []any{float64(1)}, doc.Structures[0]["weights"])
	require.Equal(t, float64(5), doc.Structures[1]["radius"])
	require.Equal(t, []any{float64(-2), float64(7), float64(10)}, doc.Structures[1]["center"])

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var splines int
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), SplineExtension) {
			splines++
		}
	}
	require.Equal(t, 1, splines)

	data, err := os.ReadFile(out.SplineFiles[0])
	require.NoError(t, err)
	var spline struct {
		NFibers int `json:"n_fibers"`
		Fibers  []struct {
			Anchors [][]float64 `json:"anchors"`
		} `json:"fibers"`
	}
	require.NoError(t, json.Unmarshal(data, &spline))
	require.Equal(t, 100000, spline.NFibers)
	require.Len(t, spline.Fibers, 2)
	require.Len(t, spline.Fibers[1].Anchors, len(baseAnchors))
}

func TestGenerateConfigurationFiles_Layout(t *testing.T) {
	dir := t.TempDir()
	out, err := exampleHandler(t).GenerateConfigurationFiles("x", dir)
	require.NoError(t, err)

	data, err := os.ReadFile(out.GeometryFile)
	require.NoError(t, err)
	lines := strings.Split(string(data), "\n")
	require.Equal(t, "{", lines[0])
	require.Equal(t, `    "world": {`, lines[1])
	require.Equal(t, `      "dimensions": 3,`, lines[2])
	require.Contains(t, string(data), "    \"structures\": [\n      {\n        \"name\": \"\",")
	require.Equal(t, "}", lines[len(lines)-1])
}

func TestGenerateConfigurationFiles_Deterministic(t *testing.T) {
	dir := t.TempDir()
	h := exampleHandler(t)

	first, err := h.GenerateConfigurationFiles("det", dir)
	require.NoError(t, err)
	snapshot := map[string][]byte{}
	for _, f := range first.Files() {
		data, err := os.ReadFile(f)
		require.NoError(t, err)
		snapshot[f] = data
	}

	second, err := exampleHandler(t).GenerateConfigurationFiles("det", dir)
	require.NoError(t, err)
	require.Equal(t, first.Files(), second.Files())
	for _, f := range second.Files() {
		data, err := os.ReadFile(f)
		require.NoError(t, err)
		require.True(t, bytes.Equal(snapshot[f], data), "file %s changed between runs", f)
	}
}

func TestHandler_ClusterFlattening(t *testing.T) {
	h, err := NewHandler([]int{10, 10, 10}, []float64{2, 2, 2})
	require.NoError(t, err)

	b, err := CreateBundle(mustMeta(t, 1), []Fiber{mustFiber(t)})
	require.NoError(t, err)
	_, rotated := RotateBundle(b, nil, NewRotation(PlaneYZ, math.Pi/6), Vec3{0.5, 0.5, 0.5}, Vec3{})

	meta1, err := CreateClusterMeta(3, 1000, 1, Vec3{}, unitLimits)
	require.NoError(t, err)
	meta2, err := CreateClusterMeta(3, 4000, 1, Vec3{}, unitLimits)
	require.NoError(t, err)
	c1, err := CreateCluster(meta1, []Bundle{b, rotated}, Vec3{5, 5, 5})
	require.NoError(t, err)
	c2, err := CreateCluster(meta2, []Bundle{b, rotated}, Vec3{5, 5, 5})
	require.NoError(t, err)

	h.AddBundle(b).AddCluster(c1).AddCluster(c2)
	require.Equal(t, 5, h.BundleCount())
	require.Equal(t, 1, h.Bundle(0).Meta().FiberCount())
	require.Equal(t, 1000, h.Bundle(2).Meta().FiberCount())
	require.Equal(t, 4000, h.Bundle(4).Meta().FiberCount())

	dir := t.TempDir()
	out, err := h.GenerateConfigurationFiles("multi_clusters", dir)
	require.NoError(t, err)
	require.Len(t, out.SplineFiles, 5)
	require.Equal(t, filepath.Join(dir, "multi_clusters_f_4.vspl"), out.SplineFiles[4])

	doc := readDoc(t, out.GeometryFile)
	require.Len(t, doc.Structures, 5)
	require.Equal(t, []any{float64(0), float64(0), float64(0)}, doc.Structures[0]["center"])
	require.Equal(t, []any{float64(5), float64(5), float64(5)}, doc.Structures[1]["center"])
	require.Equal(t, []any{"f_3"}, doc.Structures[3]["bundles"])
}

func TestHandler_EmptyWorld(t *testing.T) {
	h, err := NewHandler([]int{4, 4}, []float64{1, 1})
	require.NoError(t, err)
	doc, err := h.Document("p")
	require.NoError(t, err)
	var parsed geometryDoc
	require.NoError(t, json.Unmarshal([]byte(doc), &parsed))
	require.Empty(t, parsed.Structures)
	require.Equal(t, 2, parsed.World.Dimensions)
}

func TestHandler_Errors(t *testing.T) {
	_, err := NewHandler([]int{10, 10, 10}, []float64{2, 2})
	require.ErrorIs(t, err, ErrDimensionMismatch)

	h := exampleHandler(t)
	_, err = h.GenerateConfigurationFiles("x", "")
	require.ErrorIs(t, err, ErrEmptyOutputPath)

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0600))
	_, err = h.GenerateConfigurationFiles("x", filepath.Join(file, "sub"))
	require.Error(t, err)

	_, err = h.GenerateConfigurationFiles("../escape", t.TempDir())
	require.Error(t, err)
}

func TestHandler_GenerationLog(t *testing.T) {
	dir := t.TempDir()
	events := logging.NewGenerationLog(dir, "debug")
	defer events.Close()

	var buf bytes.Buffer
	h := exampleHandler(t)
	h.SetLogger(logging.NewLogger("debug", &buf), events)
	_, err := h.GenerateConfigurationFiles("logged", dir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, logging.GenerationLogFile))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], `"step":"geometry"`)
	require.Contains(t, lines[1], `"step":"spline"`)
	require.Contains(t, buf.String(), "file written")
}

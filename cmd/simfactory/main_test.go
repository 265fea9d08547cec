package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmrisim/simfactory/internal/scene"
)

// isolateHome points HOME at a temp directory and clears SIMFACTORY_*
// overrides so tests never touch the real ~/.simfactory/.
func isolateHome(t *testing.T) string {
	t.Helper()
	tmpHome := filepath.Join(t.TempDir(), "home")
	if err := os.MkdirAll(tmpHome, 0700); err != nil {
		t.Fatalf("Failed to create temp home: %v", err)
	}
	t.Setenv("HOME", tmpHome)
	for _, key := range []string{
		"SIMFACTORY_LOG_LEVEL",
		"SIMFACTORY_OUTPUT_NAMING",
		"SIMFACTORY_CATALOG",
		"SIMFACTORY_SAMPLER_MAX_ITER",
		"SIMFACTORY_ALLOW_EXPERIMENTAL",
	} {
		t.Setenv(key, "")
	}
	return tmpHome
}

// runCmd executes the root command with args and returns stdout.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	rootCmd := newRootCmd()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestNewRootCmd(t *testing.T) {
	rootCmd := newRootCmd()
	want := []string{"version", "geometry", "simulation", "example", "gradients", "catalog", "config"}
	for _, name := range want {
		found := false
		for _, c := range rootCmd.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command is missing %q", name)
		}
	}
	for _, flag := range []string{"json", "config", "log-level"} {
		if rootCmd.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("root command is missing persistent flag --%s", flag)
		}
	}
}

func TestNewVersionCmd(t *testing.T) {
	cmd := newVersionCmd()
	if cmd.Use != "version" {
		t.Errorf("Use = %q, want %q", cmd.Use, "version")
	}
}

func TestOutputNaming(t *testing.T) {
	tests := []struct {
		name       string
		candidates []string
		want       string
	}{
		{"flag wins", []string{"flag", "scene", "config"}, "flag"},
		{"scene name", []string{"", "scene", "config"}, "scene"},
		{"config fallback", []string{"", "", "config"}, "config"},
		{"all empty", []string{"", "", ""}, "simfactory"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outputNaming(tt.candidates...); got != tt.want {
				t.Errorf("outputNaming(%q) = %q, want %q", tt.candidates, got, tt.want)
			}
		})
	}
}

func TestGeometryCmd_Builtin(t *testing.T) {
	isolateHome(t)
	outDir := filepath.Join(t.TempDir(), "out")

	stdout, err := runCmd(t, "geometry", "--builtin", "single-bundle", "--out", outDir, "--json")
	if err != nil {
		t.Fatalf("geometry failed: %v", err)
	}

	var result generateResult
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("failed to decode output %q: %v", stdout, err)
	}
	if result.Kind != "geometry" {
		t.Errorf("Kind = %q, want geometry", result.Kind)
	}
	if result.Naming != "single_bundle" {
		t.Errorf("Naming = %q, want single_bundle", result.Naming)
	}
	if result.RunID != "" {
		t.Errorf("RunID = %q, want empty with the catalog disabled", result.RunID)
	}
	if len(result.Files) != 2 {
		t.Fatalf("Files = %v, want geometry document and one spline", result.Files)
	}
	if filepath.Base(result.Files[0]) != "single_bundle_geometry_base.json" {
		t.Errorf("first file = %q", result.Files[0])
	}
	if filepath.Base(result.Files[1]) != "single_bundle_f_0.vspl" {
		t.Errorf("second file = %q", result.Files[1])
	}
	for _, f := range result.Files {
		if _, err := os.Stat(f); err != nil {
			t.Errorf("expected %s to exist: %v", f, err)
		}
	}
}

func TestSimulationCmd_SceneFileAndName(t *testing.T) {
	isolateHome(t)
	tmpDir := t.TempDir()
	outDir := filepath.Join(tmpDir, "out")

	sc, err := scene.Builtin("single-bundle")
	if err != nil {
		t.Fatalf("Builtin failed: %v", err)
	}
	data, err := sc.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	sceneFile := filepath.Join(tmpDir, "scene.yaml")
	if err := os.WriteFile(sceneFile, data, 0644); err != nil {
		t.Fatalf("failed to write scene: %v", err)
	}

	stdout, err := runCmd(t, "simulation", "--scene", sceneFile, "--out", outDir, "--name", "phantom")
	if err != nil {
		t.Fatalf("simulation failed: %v", err)
	}
	if !strings.Contains(stdout, "Wrote 5 files") {
		t.Errorf("unexpected output: %q", stdout)
	}

	for _, name := range []string{
		"phantom_geometry_base.json",
		"phantom_f_0.vspl",
		"phantom.ffp",
		"phantom.bvals",
		"phantom.bvecs",
	} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}

	bvals, err := os.ReadFile(filepath.Join(outDir, "phantom.bvals"))
	if err != nil {
		t.Fatalf("failed to read bvals: %v", err)
	}
	fields := strings.Fields(string(bvals))
	if len(fields) != 31 {
		t.Errorf("bvals has %d entries, want 31", len(fields))
	}
	if fields[0] != "0" {
		t.Errorf("first bvalue = %q, want 0", fields[0])
	}
}

func TestSimulationCmd_NoSimulationBlock(t *testing.T) {
	isolateHome(t)
	tmpDir := t.TempDir()
	sceneFile := filepath.Join(tmpDir, "geometry-only.yaml")
	content := `
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
bundles:
  - id: only
    standalone: true
    fibers: [a]
`
	if err := os.WriteFile(sceneFile, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write scene: %v", err)
	}

	_, err := runCmd(t, "simulation", "--scene", sceneFile, "--out", filepath.Join(tmpDir, "out"))
	if !errors.Is(err, scene.ErrNoSimulation) {
		t.Fatalf("expected ErrNoSimulation, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(tmpDir, "out", "tiny_geometry_base.json")); statErr == nil {
		t.Error("no files should be written when the simulation block is missing")
	}
}

func TestGenerateCmd_SceneFlags(t *testing.T) {
	isolateHome(t)

	if _, err := runCmd(t, "geometry"); err == nil {
		t.Error("expected an error without --scene or --builtin")
	}
	if _, err := runCmd(t, "geometry", "--scene", "a.yaml", "--builtin", "single-bundle"); err == nil {
		t.Error("expected an error with both --scene and --builtin")
	}
	_, err := runCmd(t, "geometry", "--builtin", "no-such-scene", "--out", t.TempDir())
	if !errors.Is(err, scene.ErrUnknownBuiltin) {
		t.Errorf("expected ErrUnknownBuiltin, got %v", err)
	}
}

func TestGenerateCmd_InvalidLogLevel(t *testing.T) {
	isolateHome(t)
	_, err := runCmd(t, "geometry", "--builtin", "single-bundle", "--log-level", "loud")
	if err == nil || !strings.Contains(err.Error(), "invalid log level") {
		t.Errorf("expected invalid log level error, got %v", err)
	}
}

func TestGenerateCmd_DebugWritesGenerationLog(t *testing.T) {
	isolateHome(t)
	outDir := filepath.Join(t.TempDir(), "out")

	if _, err := runCmd(t, "geometry", "--builtin", "single-bundle", "--out", outDir, "--log-level", "debug"); err != nil {
		t.Fatalf("geometry failed: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(outDir, "generation.jsonl"))
	if err != nil {
		t.Fatalf("expected generation log: %v", err)
	}
	if !strings.Contains(string(data), `"step":"geometry"`) {
		t.Errorf("generation log lacks the geometry step: %s", data)
	}
}

func TestCatalogFlow(t *testing.T) {
	isolateHome(t)
	tmpDir := t.TempDir()
	t.Setenv("SIMFACTORY_CATALOG", filepath.Join(tmpDir, "catalog.db"))
	outDir := filepath.Join(tmpDir, "out")

	stdout, err := runCmd(t, "simulation", "--builtin", "single-bundle", "--out", outDir, "--json")
	if err != nil {
		t.Fatalf("simulation failed: %v", err)
	}
	var result generateResult
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	if result.RunID == "" {
		t.Fatal("expected a run id with the catalog enabled")
	}
	if result.Scene != "builtin:single-bundle" {
		t.Errorf("Scene = %q", result.Scene)
	}

	stdout, err = runCmd(t, "catalog", "list", "--json")
	if err != nil {
		t.Fatalf("catalog list failed: %v", err)
	}
	var listed struct {
		Runs       []map[string]interface{} `json:"runs"`
		TotalCount int                      `json:"total_count"`
	}
	if err := json.Unmarshal([]byte(stdout), &listed); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if listed.TotalCount != 1 || listed.Runs[0]["id"] != result.RunID {
		t.Errorf("unexpected list output: %s", stdout)
	}

	stdout, err = runCmd(t, "catalog", "show", result.RunID)
	if err != nil {
		t.Fatalf("catalog show failed: %v", err)
	}
	if !strings.Contains(stdout, "single_bundle.ffp") {
		t.Errorf("show output lacks the parameter file: %s", stdout)
	}

	if _, err := runCmd(t, "catalog", "verify", result.RunID); err != nil {
		t.Fatalf("verify of untouched run failed: %v", err)
	}

	if err := os.WriteFile(filepath.Join(outDir, "single_bundle.bvals"), []byte("0\n"), 0644); err != nil {
		t.Fatalf("failed to modify bvals: %v", err)
	}
	stdout, err = runCmd(t, "catalog", "verify", result.RunID, "--json")
	if err == nil {
		t.Fatal("expected verify to fail after modification")
	}
	if !strings.Contains(stdout, "single_bundle.bvals") {
		t.Errorf("verify output lacks the changed file: %s", stdout)
	}

	if _, err := runCmd(t, "catalog", "delete", result.RunID); err != nil {
		t.Fatalf("catalog delete failed: %v", err)
	}
	if _, err := runCmd(t, "catalog", "show", result.RunID); err == nil {
		t.Error("expected show to fail after delete")
	}
}

func TestGradientsCmd(t *testing.T) {
	isolateHome(t)

	stdout, err := runCmd(t, "gradients", "--shells", "3,4", "--max-iter", "20", "--json")
	if err != nil {
		t.Fatalf("gradients failed: %v", err)
	}
	var out struct {
		Shells     []int          `json:"shells"`
		Directions [][][3]float64 `json:"directions"`
	}
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	if len(out.Directions) != 2 || len(out.Directions[0]) != 3 || len(out.Directions[1]) != 4 {
		t.Errorf("unexpected grouping: %v", out.Directions)
	}

	stdout, err = runCmd(t, "gradients", "--shells", "5", "--max-iter", "10")
	if err != nil {
		t.Fatalf("gradients failed: %v", err)
	}
	if lines := strings.Split(strings.TrimSpace(stdout), "\n"); len(lines) != 5 {
		t.Errorf("expected 5 direction lines, got %d", len(lines))
	}

	if _, err := runCmd(t, "gradients"); err == nil {
		t.Error("expected an error without --shells")
	}
}

func TestExampleCmd(t *testing.T) {
	isolateHome(t)

	stdout, err := runCmd(t, "example", "list")
	if err != nil {
		t.Fatalf("example list failed: %v", err)
	}
	if stdout != "multi-clusters\nsingle-bundle\n" {
		t.Errorf("example list = %q", stdout)
	}

	stdout, err = runCmd(t, "example", "show", "multi-clusters")
	if err != nil {
		t.Fatalf("example show failed: %v", err)
	}
	if _, err := scene.Parse([]byte(stdout)); err != nil {
		t.Errorf("shown scene does not parse: %v", err)
	}

	if _, err := runCmd(t, "example", "show", "missing"); err == nil {
		t.Error("expected an error for an unknown example")
	}
}

func TestConfigSetGet(t *testing.T) {
	isolateHome(t)
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	if _, err := runCmd(t, "config", "set", "sampler.max_iter", "250", "--config", configPath); err != nil {
		t.Fatalf("config set failed: %v", err)
	}
	stdout, err := runCmd(t, "config", "get", "sampler.max_iter", "--config", configPath)
	if err != nil {
		t.Fatalf("config get failed: %v", err)
	}
	if strings.TrimSpace(stdout) != "sampler.max_iter = 250" {
		t.Errorf("config get = %q", stdout)
	}

	if _, err := runCmd(t, "config", "set", "sampler.max_iter", "0", "--config", configPath); err == nil {
		t.Error("expected validation error for max_iter 0")
	}
	if _, err := runCmd(t, "config", "set", "no.such.key", "1", "--config", configPath); err == nil {
		t.Error("expected error for unknown key")
	}
	if _, err := runCmd(t, "config", "get", "no.such.key", "--config", configPath); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestConfigList_JSON(t *testing.T) {
	isolateHome(t)
	t.Setenv("SIMFACTORY_OUTPUT_NAMING", "fromenv")

	stdout, err := runCmd(t, "config", "list", "--json")
	if err != nil {
		t.Fatalf("config list failed: %v", err)
	}
	var cfg map[string]map[string]interface{}
	if err := json.Unmarshal([]byte(stdout), &cfg); err != nil {
		t.Fatalf("failed to decode config: %v", err)
	}
	if cfg["output"]["naming"] != "fromenv" {
		t.Errorf("output.naming = %v, want fromenv", cfg["output"]["naming"])
	}
}

package main

import (
	"fmt"
	"path/filepath"

	"github.com/dmrisim/simfactory/internal/constants"
	"github.com/dmrisim/simfactory/internal/logging"
	"github.com/dmrisim/simfactory/internal/pathutil"
	"github.com/dmrisim/simfactory/internal/scene"
	"github.com/spf13/cobra"
)

// generateResult describes one generation run.
type generateResult struct {
	RunID     string   `json:"run_id,omitempty"`
	Kind      string   `json:"kind"`
	Scene     string   `json:"scene"`
	Naming    string   `json:"naming"`
	OutputDir string   `json:"output_dir"`
	Files     []string `json:"files"`
}

func newGeometryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "geometry",
		Short: "Write the Voxsim geometry files of a scene",
		Long: `Compile a scene into {name}_geometry_base.json and one
{name}_f_{i}.vspl spline file per bundle.

Examples:
  simfactory geometry --scene phantom.yaml --out ./phantom
  simfactory geometry --builtin single-bundle --name test`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, constants.RunGeometry)
		},
	}
	addGenerateFlags(cmd)
	return cmd
}

func newSimulationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulation",
		Short: "Write geometry and Fiberfox simulation files of a scene",
		Long: `Compile a scene with a simulation block into the geometry files plus
{name}.ffp, {name}.bvals and {name}.bvecs.

Examples:
  simfactory simulation --scene phantom.yaml --out ./phantom
  simfactory simulation --builtin multi-clusters --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, constants.RunSimulation)
		},
	}
	addGenerateFlags(cmd)
	return cmd
}

func addGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().String("scene", "", "Scene YAML file")
	cmd.Flags().String("builtin", "", "Builtin scene name (see 'simfactory example list')")
	cmd.Flags().String("out", "", "Output directory (default: a new temporary directory)")
	cmd.Flags().String("name", "", "Output file naming (default: the scene name)")
	cmd.MarkFlagsMutuallyExclusive("scene", "builtin")
	cmd.MarkFlagsOneRequired("scene", "builtin")
}

// loadScene resolves --scene or --builtin and returns the scene with a
// label for the catalog.
func loadScene(cmd *cobra.Command) (*scene.Scene, string, error) {
	sceneFile, _ := cmd.Flags().GetString("scene")
	builtin, _ := cmd.Flags().GetString("builtin")

	if builtin != "" {
		sc, err := scene.Builtin(builtin)
		if err != nil {
			return nil, "", err
		}
		return sc, "builtin:" + builtin, nil
	}
	sc, err := scene.LoadFile(sceneFile)
	if err != nil {
		return nil, "", err
	}
	abs, err := filepath.Abs(sceneFile)
	if err != nil {
		abs = sceneFile
	}
	return sc, abs, nil
}

// outputNaming picks the first non-empty candidate.
func outputNaming(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return constants.DefaultOutputNaming
}

func runGenerate(cmd *cobra.Command, kind constants.RunKind) error {
	env, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	sc, label, err := loadScene(cmd)
	if err != nil {
		return err
	}
	if kind == constants.RunSimulation && sc.Simulation == nil {
		return fmt.Errorf("scene %s: %w", label, scene.ErrNoSimulation)
	}

	out, _ := cmd.Flags().GetString("out")
	name, _ := cmd.Flags().GetString("name")
	dir, err := pathutil.ResolveOutputDir(out, env.cfg.Output.TempPrefix)
	if err != nil {
		return err
	}
	naming := outputNaming(name, sc.Name, env.cfg.Output.Naming)

	events := logging.NewGenerationLog(dir, env.cfg.Logging.Level)
	defer events.Close()

	geo, err := sc.BuildGeometry()
	if err != nil {
		return fmt.Errorf("failed to build geometry: %w", err)
	}
	geo.SetLogger(env.logger, events)
	geoOut, err := geo.GenerateConfigurationFiles(naming, dir)
	if err != nil {
		return fmt.Errorf("failed to write geometry: %w", err)
	}
	files := geoOut.Files()

	if kind == constants.RunSimulation {
		sim, err := sc.BuildSimulation(env.factory(), geo)
		if err != nil {
			return fmt.Errorf("failed to build simulation: %w", err)
		}
		sim.SetLogger(env.logger, events)
		simOut, err := sim.GenerateXMLConfigurationFile(naming, dir)
		if err != nil {
			return fmt.Errorf("failed to write simulation: %w", err)
		}
		files = append(files, simOut.Files()...)
	}

	result := generateResult{
		Kind:      kind.String(),
		Scene:     label,
		Naming:    naming,
		OutputDir: dir,
		Files:     files,
	}

	if env.cfg.Catalog.Enabled {
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()
		cat, err := env.openCatalog()
		if err != nil {
			return err
		}
		defer cat.Close()
		run, err := cat.Record(ctx, kind.String(), naming, label, dir, files)
		if err != nil {
			return fmt.Errorf("failed to record run: %w", err)
		}
		result.RunID = run.ID
	}

	env.logger.Info("generation complete",
		"kind", kind, "naming", naming, "dir", pathutil.RedactPath(dir), "files", len(files))

	w := cmd.OutOrStdout()
	if env.jsonOut {
		return printJSON(w, result)
	}
	fmt.Fprintf(w, "Wrote %d files to %s\n", len(files), dir)
	for _, f := range files {
		fmt.Fprintf(w, "  %s\n", filepath.Base(f))
	}
	if result.RunID != "" {
		fmt.Fprintf(w, "Run: %s\n", result.RunID)
	}
	return nil
}

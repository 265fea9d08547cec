package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "simfactory",
		Short: "Generate Voxsim geometry and Fiberfox simulation configurations",
		Long: `simfactory builds diffusion MRI phantom configurations.

It compiles a scene (fibers, bundles, clusters and spheres placed in a
voxel world) into Voxsim geometry files and, when the scene carries a
simulation block, the Fiberfox parameter file with its gradient tables.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.simfactory/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Override logging level (info, debug, trace)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newGeometryCmd(),
		newSimulationCmd(),
		newExampleCmd(),
		newGradientsCmd(),
		newCatalogCmd(),
		newConfigCmd(),
	)

	return rootCmd
}

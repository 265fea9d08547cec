package main

import (
	"fmt"

	"github.com/dmrisim/simfactory/internal/scene"
	"github.com/spf13/cobra"
)

func newExampleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "example",
		Short: "List and print the builtin example scenes",
		Long: `Builtin scenes can be generated directly with --builtin or printed as
a starting point for a custom scene file.

Examples:
  simfactory example list
  simfactory example show multi-clusters > my-scene.yaml`,
	}

	cmd.AddCommand(
		newExampleListCmd(),
		newExampleShowCmd(),
	)

	return cmd
}

func newExampleListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List builtin scenes",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			names := scene.BuiltinNames()
			w := cmd.OutOrStdout()

			if jsonOut {
				type jsonEntry struct {
					Name       string `json:"name"`
					Naming     string `json:"naming"`
					Simulation bool   `json:"simulation"`
				}
				entries := make([]jsonEntry, 0, len(names))
				for _, n := range names {
					sc, err := scene.Builtin(n)
					if err != nil {
						return err
					}
					entries = append(entries, jsonEntry{Name: n, Naming: sc.Name, Simulation: sc.Simulation != nil})
				}
				return printJSON(w, map[string]interface{}{
					"scenes":      entries,
					"total_count": len(entries),
				})
			}

			for _, n := range names {
				fmt.Fprintln(w, n)
			}
			return nil
		},
	}
}

func newExampleShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Print a builtin scene as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := scene.Builtin(args[0])
			if err != nil {
				return err
			}
			data, err := sc.Marshal()
			if err != nil {
				return fmt.Errorf("failed to render scene: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

package main

import (
	"fmt"
	"path/filepath"

	"github.com/dmrisim/simfactory/internal/catalog"
	"github.com/spf13/cobra"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect recorded generation runs",
		Long: `When catalog.enabled is set, every geometry or simulation run is
recorded with the SHA-256 of each written file.

Examples:
  simfactory catalog list --limit 10
  simfactory catalog show <run-id>
  simfactory catalog verify <run-id>`,
	}

	cmd.AddCommand(
		newCatalogListCmd(),
		newCatalogShowCmd(),
		newCatalogVerifyCmd(),
		newCatalogDeleteCmd(),
	)

	return cmd
}

// withCatalog opens the configured catalog for the duration of fn.
func withCatalog(cmd *cobra.Command, fn func(env *cliEnv, cat *catalog.Catalog) error) error {
	env, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	cat, err := env.openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()
	return fn(env, cat)
}

func newCatalogListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			return withCatalog(cmd, func(env *cliEnv, cat *catalog.Catalog) error {
				ctx, cancel := signalContext(cmd.Context())
				defer cancel()

				runs, err := cat.List(ctx, limit)
				if err != nil {
					return fmt.Errorf("failed to list runs: %w", err)
				}

				w := cmd.OutOrStdout()
				if env.jsonOut {
					if runs == nil {
						runs = []catalog.Run{}
					}
					return printJSON(w, map[string]interface{}{
						"runs":        runs,
						"total_count": len(runs),
						"catalog":     cat.Path(),
					})
				}

				if len(runs) == 0 {
					fmt.Fprintf(w, "No runs recorded in %s\n", cat.Path())
					return nil
				}
				for _, r := range runs {
					fmt.Fprintf(w, "%s  %-10s  %-20s  %s  %s\n",
						r.ID, r.Kind, r.Naming, r.CreatedAt.Local().Format("2006-01-02 15:04:05"), r.OutputDir)
				}
				return nil
			})
		},
	}
	cmd.Flags().Int("limit", 20, "Maximum number of runs to show (0 for all)")
	return cmd
}

func newCatalogShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a run and its files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(cmd, func(env *cliEnv, cat *catalog.Catalog) error {
				run, err := cat.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				if env.jsonOut {
					return printJSON(w, run)
				}
				fmt.Fprintf(w, "Run:     %s\n", run.ID)
				fmt.Fprintf(w, "Kind:    %s\n", run.Kind)
				fmt.Fprintf(w, "Naming:  %s\n", run.Naming)
				if run.Scene != "" {
					fmt.Fprintf(w, "Scene:   %s\n", run.Scene)
				}
				fmt.Fprintf(w, "Output:  %s\n", run.OutputDir)
				fmt.Fprintf(w, "Created: %s\n", run.CreatedAt.Local().Format("2006-01-02 15:04:05"))
				fmt.Fprintln(w, "Files:")
				for _, f := range run.Files {
					fmt.Fprintf(w, "  %s  %8d  %s\n", f.SHA256[:12], f.Size, filepath.Base(f.Path))
				}
				return nil
			})
		},
	}
}

func newCatalogVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <run-id>",
		Short: "Check that the files of a run are unchanged",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(cmd, func(env *cliEnv, cat *catalog.Catalog) error {
				changed, err := cat.Verify(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				if env.jsonOut {
					if changed == nil {
						changed = []string{}
					}
					if err := printJSON(w, map[string]interface{}{
						"run_id":  args[0],
						"ok":      len(changed) == 0,
						"changed": changed,
					}); err != nil {
						return err
					}
				} else if len(changed) == 0 {
					fmt.Fprintf(w, "Run %s: all files match\n", args[0])
				} else {
					fmt.Fprintf(w, "Run %s: %d files changed or missing\n", args[0], len(changed))
					for _, p := range changed {
						fmt.Fprintf(w, "  %s\n", p)
					}
				}

				if len(changed) > 0 {
					return fmt.Errorf("verification failed for run %s", args[0])
				}
				return nil
			})
		},
	}
}

func newCatalogDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <run-id>",
		Short: "Forget a run (generated files are kept)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(cmd, func(env *cliEnv, cat *catalog.Catalog) error {
				if err := cat.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				if env.jsonOut {
					return printJSON(cmd.OutOrStdout(), map[string]string{
						"status": "deleted",
						"run_id": args[0],
					})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", args[0])
				return nil
			})
		},
	}
}

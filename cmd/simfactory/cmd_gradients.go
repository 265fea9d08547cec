package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGradientsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gradients",
		Short: "Optimize multishell gradient directions",
		Long: `Distribute unit directions over one or more shells so that directions
are spread both within each shell and across all shells combined.

Examples:
  simfactory gradients --shells 30
  simfactory gradients --shells 20,40 --max-iter 5000 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			shells, _ := cmd.Flags().GetIntSlice("shells")
			maxIter, _ := cmd.Flags().GetInt("max-iter")
			if len(shells) == 0 {
				return fmt.Errorf("--shells requires at least one point count")
			}

			dirs, err := env.factory().GenerateGradientVectors(shells, maxIter)
			if err != nil {
				return fmt.Errorf("failed to optimize directions: %w", err)
			}

			w := cmd.OutOrStdout()
			if env.jsonOut {
				grouped := make([][][3]float64, len(shells))
				offset := 0
				for i, n := range shells {
					grouped[i] = dirs[offset : offset+n]
					offset += n
				}
				return printJSON(w, map[string]interface{}{
					"shells":     shells,
					"directions": grouped,
				})
			}

			for _, d := range dirs {
				fmt.Fprintf(w, "%.6f %.6f %.6f\n", d[0], d[1], d[2])
			}
			return nil
		},
	}

	cmd.Flags().IntSlice("shells", nil, "Points per shell, comma separated")
	cmd.Flags().Int("max-iter", 0, "Optimizer iteration cap (default: sampler.max_iter from config)")
	cmd.MarkFlagRequired("shells")

	return cmd
}

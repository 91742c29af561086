package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"quilbridge/internal/circuit"
	"quilbridge/internal/domain"
)

// run <circuit>: compile, execute and print the measurement counts.
func runCmd() *cobra.Command {
	var (
		shots      int
		seed       int64
		level      int
		raw        bool
		noValidate bool
	)
	cmd := &cobra.Command{
		Use:   "run <circuit>",
		Short: "Compile and execute a circuit, waiting for counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := loadCircuit(args[0])
			if err != nil {
				return err
			}
			b, err := wire.Backend(ctx, "")
			if err != nil {
				return err
			}
			if _, err := b.DefaultCompilationPass(level).Apply(c); err != nil {
				return err
			}

			handles, err := b.ProcessCircuits(ctx, []*circuit.Circuit{c}, []int{shots},
				domain.ProcessOptions{Seed: seed, SkipValidCheck: noValidate})
			if err != nil {
				return err
			}
			res, err := domain.WaitResult(ctx, b, handles[0], 0)
			if err != nil {
				return err
			}

			if raw {
				for _, row := range res.Shots {
					fmt.Println(row)
				}
				return nil
			}
			printCounts(res)
			return nil
		},
	}
	cmd.Flags().IntVar(&shots, "shots", 100, "number of shots")
	cmd.Flags().Int64Var(&seed, "seed", 0, "executor seed, 0 for random")
	cmd.Flags().IntVar(&level, "level", 1, "optimisation level, 0 to 2")
	cmd.Flags().BoolVar(&raw, "raw", false, "print raw shot rows instead of counts")
	cmd.Flags().BoolVar(&noValidate, "no-validate", false, "skip the predicate check before submission")
	return cmd
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"quilbridge/internal/circuit"
	"quilbridge/internal/domain"
)

// submit <circuit>...: send circuits without waiting. The circuits
// must already satisfy the backend's predicates; use compile first.
func submitCmd() *cobra.Command {
	var (
		shots      int
		seed       int64
		noValidate bool
	)
	cmd := &cobra.Command{
		Use:   "submit <circuit>...",
		Short: "Submit compiled circuits and print their handles",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			circuits := make([]*circuit.Circuit, len(args))
			for i, path := range args {
				c, err := loadCircuit(path)
				if err != nil {
					return err
				}
				circuits[i] = c
			}
			b, err := wire.Backend(ctx, "")
			if err != nil {
				return err
			}

			handles, err := b.ProcessCircuits(ctx, circuits, []int{shots},
				domain.ProcessOptions{Seed: seed, SkipValidCheck: noValidate})
			if err != nil {
				return err
			}
			for _, h := range handles {
				fmt.Println(h.String())
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&shots, "shots", 100, "number of shots per circuit")
	cmd.Flags().Int64Var(&seed, "seed", 0, "executor seed, 0 for random")
	cmd.Flags().BoolVar(&noValidate, "no-validate", false, "skip the predicate check before submission")
	return cmd
}

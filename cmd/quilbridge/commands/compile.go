package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"quilbridge/internal/circuit"
	"quilbridge/internal/domain"
)

func compileCmd() *cobra.Command {
	var (
		out   string
		level int
		state bool
	)
	cmd := &cobra.Command{
		Use:   "compile <circuit>",
		Short: "Compile a circuit to a backend's native form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := loadCircuit(args[0])
			if err != nil {
				return err
			}

			var b domain.Backend
			if state {
				b = wire.StateBackend()
			} else {
				b, err = wire.Backend(ctx, "")
				if err != nil {
					return err
				}
			}

			changed, err := b.DefaultCompilationPass(level).Apply(c)
			if err != nil {
				return err
			}
			if err := circuit.VerifyAll(c, b.RequiredPredicates()); err != nil {
				return fmt.Errorf("compiled circuit is not runnable: %w", err)
			}
			if !changed && out == "" {
				fmt.Fprintln(cmd.ErrOrStderr(), "circuit already native")
			}
			return writeCircuit(c, out)
		},
	}
	cmd.Flags().IntVar(&level, "level", 1, "optimisation level, 0 to 2")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output path, .json or .quil (default: JSON to stdout)")
	cmd.Flags().BoolVar(&state, "state", false, "target the wavefunction simulator instead of a device")
	return cmd
}

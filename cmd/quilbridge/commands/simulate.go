package commands

import (
	"fmt"
	"math/cmplx"

	"github.com/spf13/cobra"

	"quilbridge/internal/circuit"
	"quilbridge/internal/domain"
)

// simulate <circuit>: print the final statevector, one nonzero
// amplitude per line, most significant qubit leftmost.
func simulateCmd() *cobra.Command {
	var (
		level int
		all   bool
	)
	cmd := &cobra.Command{
		Use:   "simulate <circuit>",
		Short: "Print the circuit's final statevector",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := loadCircuit(args[0])
			if err != nil {
				return err
			}
			b := wire.StateBackend()
			if _, err := b.DefaultCompilationPass(level).Apply(c); err != nil {
				return err
			}

			handles, err := b.ProcessCircuits(ctx, []*circuit.Circuit{c}, []int{1}, domain.ProcessOptions{})
			if err != nil {
				return err
			}
			res, err := b.Result(ctx, handles[0])
			if err != nil {
				return err
			}

			width := len(res.Qubits)
			for i, amp := range res.State {
				if !all && cmplx.Abs(amp) < 1e-12 {
					continue
				}
				fmt.Printf("|%0*b>\t%.6f\n", width, i, amp)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&level, "level", 1, "optimisation level, 0 to 2")
	cmd.Flags().BoolVar(&all, "all", false, "print zero amplitudes too")
	return cmd
}

package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// expectation <circuit>: evaluate <psi|Op|psi> on the state the
// circuit prepares. Pauli string character i acts on qubit i.
func expectationCmd() *cobra.Command {
	var (
		pauli    string
		operator string
	)
	cmd := &cobra.Command{
		Use:   "expectation <circuit>",
		Short: "Evaluate a Pauli or operator expectation value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := loadCircuit(args[0])
			if err != nil {
				return err
			}
			b := wire.StateBackend()

			switch {
			case pauli != "":
				val, err := b.PauliExpectation(ctx, c, strings.ToUpper(pauli))
				if err != nil {
					return err
				}
				fmt.Printf("%g\n", val)
			case operator != "":
				op, err := parseOperator(operator)
				if err != nil {
					return err
				}
				val, err := b.OperatorExpectation(ctx, c, op)
				if err != nil {
					return err
				}
				fmt.Printf("%g\n", val)
			default:
				return fmt.Errorf("one of --pauli or --operator is required")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&pauli, "pauli", "", `Pauli string, e.g. "ZIZ"`)
	cmd.Flags().StringVar(&operator, "operator", "", `weighted terms, e.g. "ZZ:0.5,IZ:-1"`)
	return cmd
}

package commands

import (
	"github.com/spf13/cobra"
)

// convert <circuit> [-o out]: translate between circuit JSON and Quil
// text, either direction.
func convertCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "convert <circuit>",
		Short: "Convert a circuit between JSON and Quil",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadCircuit(args[0])
			if err != nil {
				return err
			}
			return writeCircuit(c, out)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output path, .json or .quil (default: JSON to stdout)")
	return cmd
}

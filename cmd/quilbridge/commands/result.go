package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"quilbridge/internal/domain"
)

// result <handle>: fetch a finished circuit's readout. With --wait the
// command polls until the circuit reaches a terminal state.
func resultCmd() *cobra.Command {
	var (
		raw  bool
		wait bool
	)
	cmd := &cobra.Command{
		Use:   "result <handle>",
		Short: "Fetch the result of a submitted circuit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			h, err := domain.ParseHandle(args[0])
			if err != nil {
				return err
			}
			b, err := backendForHandle(ctx, h)
			if err != nil {
				return err
			}

			var res *domain.Result
			if wait {
				res, err = domain.WaitResult(ctx, b, h, 0)
			} else {
				res, err = b.Result(ctx, h)
			}
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
	cmd.Flags().BoolVar(&raw, "raw", false, "print raw shot rows instead of counts")
	cmd.Flags().BoolVar(&wait, "wait", false, "poll until the circuit finishes")
	return cmd
}

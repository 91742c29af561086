package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"quilbridge/internal/domain"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <handle>",
		Short: "Report the status of a submitted circuit",
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
			st, err := b.CircuitStatus(ctx, h)
			if err != nil {
				return err
			}
			if st.Message != "" {
				fmt.Printf("%s\t%s\n", st.Status, st.Message)
				return nil
			}
			fmt.Println(st.Status)
			return nil
		},
	}
}

package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// jobs: list the submissions recorded in the handle store, oldest
// first. "done" means the result is already cached locally.
func jobsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "jobs",
		Short: "List recorded submissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := wire.Handles.List()
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				fmt.Println("no recorded submissions")
				return nil
			}
			for _, r := range recs {
				state := "pending"
				if r.Result != nil {
					state = "done"
				}
				fmt.Printf("%s\t%s\t%s\t%s\n",
					r.Handle, r.Device, r.SubmittedAt.Format(time.RFC3339), state)
			}
			return nil
		},
	}
}

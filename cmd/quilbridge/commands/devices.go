package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"quilbridge/internal/forest"
)

func devicesCmd() *cobra.Command {
	var qpus, qvms bool
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List the devices the executor serves",
		RunE: func(cmd *cobra.Command, args []string) error {
			infos, err := forest.AvailableDevices(cmd.Context(), wire.Client, qpus, qvms)
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				fmt.Println("no devices")
				return nil
			}
			for _, info := range infos {
				arch := info.Architecture()
				fmt.Printf("%s\t%d qubits\t%d couplers\n",
					info.Device, len(arch.Nodes()), len(arch.Edges()))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&qpus, "qpus", true, "include QPU devices")
	cmd.Flags().BoolVar(&qvms, "qvms", false, "include QVM devices")
	return cmd
}

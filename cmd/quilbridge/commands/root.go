package commands

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"quilbridge/internal/app"
)

var (
	home    string
	qvmURL  string
	device  string
	debug   bool
	timeout time.Duration

	wire *app.Wire
)

func Execute() error {
	root := &cobra.Command{
		Use:   "quilbridge",
		Short: "Compile and run quantum circuits against a Quil executor",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".quilbridge")
			}
			if err := os.MkdirAll(home, 0o700); err != nil {
				return err
			}

			cfg, err := app.LoadConfig(home)
			if err != nil {
				return err
			}
			// Flags beat the config file, but only when actually set.
			if cmd.Flags().Changed("qvm") {
				cfg.QVMURL = qvmURL
			}
			if cmd.Flags().Changed("device") {
				cfg.Device = device
			}
			if cmd.Flags().Changed("debug") {
				cfg.Debug = debug
			}
			cfg.Timeout = timeout

			wire, err = app.NewWire(cfg)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if wire != nil {
				wire.Close()
			}
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "config dir (default ~/.quilbridge)")
	root.PersistentFlags().StringVar(&qvmURL, "qvm", "http://127.0.0.1:5000", "qvmd base URL")
	root.PersistentFlags().StringVar(&device, "device", "", "device name (default: the executor's first QPU)")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 0, "per-request timeout (default 30s)")

	root.AddCommand(
		versionCmd(),
		devicesCmd(),
		convertCmd(),
		compileCmd(),
		runCmd(),
		submitCmd(),
		statusCmd(),
		resultCmd(),
		jobsCmd(),
		simulateCmd(),
		expectationCmd(),
	)
	return root.Execute()
}

package main

import (
	"os"

	"quilbridge/cmd/quilbridge/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

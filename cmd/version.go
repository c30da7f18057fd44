package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version metadata, overridden at build time with -ldflags.
var (
	version = "dev"
	commit  = "none"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version information",
		Args:  cobra.NoArgs,
		Run:   runVersionCommand,
	}
}

func runVersionCommand(_ *cobra.Command, _ []string) {
	fmt.Printf("freeloader version %s\n", version)
	fmt.Printf("Commit: %s\n", commit)
}

package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "freeloader",
		Short: "freeloader - free model catalog pipeline",
		Long: "freeloader tracks which models of an upstream catalog are free to use,\n" +
			"records how that set changes over time, and publishes a model layer\n" +
			"with ready-to-use chat profiles.",
		Example: `  freeloader check
  freeloader serve`,
		// If no subcommand is specified, show help
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

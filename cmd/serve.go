package main

import (
	"github.com/spf13/cobra"

	"github.com/davidbz/freeloader/internal/http"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the published model layer over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServeCommand,
	}
}

func runServeCommand(_ *cobra.Command, _ []string) error {
	container := buildContainer()

	return container.Invoke(func(server *http.Server) error {
		return server.Start()
	})
}

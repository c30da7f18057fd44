package main

import (
	"github.com/spf13/cobra"

	"github.com/davidbz/freeloader/internal/domain"
	"github.com/davidbz/freeloader/internal/observability"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run one catalog check and publish the artifacts",
		Long: "Fetch the model catalog, classify the free models, diff them against\n" +
			"the stored baseline, and publish the snapshot and model layer.",
		Args: cobra.NoArgs,
		RunE: runCheckCommand,
	}
}

func runCheckCommand(cmd *cobra.Command, _ []string) error {
	container := buildContainer()

	return container.Invoke(func(runner *domain.Runner) error {
		ctx := observability.WithRunID(cmd.Context(), observability.GenerateRunID())

		report, err := runner.Run(ctx)
		if err != nil {
			return err
		}

		logger := observability.FromContext(ctx)
		logger.Info("check finished",
			observability.Int("total_models", report.TotalModels),
			observability.Int("free_models", report.FreeModels),
			observability.Int("added", len(report.Added)),
			observability.Int("removed", len(report.Removed)),
			observability.Strings("empty_profiles", report.EmptyProfiles),
			observability.Bool("ranking_applied", report.RankingApplied),
			observability.Bool("snapshot_updated", report.SnapshotUpdated),
			observability.Bool("layer_updated", report.LayerUpdated),
		)
		return nil
	})
}

package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/davidbz/freeloader/internal/observability"
)

// Event types published by the runner when the free set changes.
const (
	EventModelsAdded   = "catalog.models.added"
	EventModelsRemoved = "catalog.models.removed"
)

// Runner orchestrates one catalog check: fetch, classify, diff, persist,
// build profiles, rank, publish.
type Runner struct {
	catalog   CatalogClient
	artifacts ArtifactStore
	ranker    CapabilityRanker
	events    EventPublisher
	profiles  []ProfileDef
}

// NewRunner creates a new pipeline runner (DI constructor). The ranker may be
// nil when ranking is disabled; profiles may be nil to use the built-ins.
func NewRunner(
	catalog CatalogClient,
	artifacts ArtifactStore,
	ranker CapabilityRanker,
	events EventPublisher,
	profiles []ProfileDef,
) *Runner {
	return &Runner{
		catalog:   catalog,
		artifacts: artifacts,
		ranker:    ranker,
		events:    events,
		profiles:  profiles,
	}
}

// RunReport summarizes one pipeline run.
type RunReport struct {
	RunID           string
	CheckedAt       string
	TotalModels     int
	FreeModels      int
	Added           []string
	Removed         []string
	EmptyProfiles   []string
	RankingApplied  bool
	RankingNote     string
	SnapshotUpdated bool
	LayerUpdated    bool
}

// HasChanges reports whether the run detected any catalog changes.
func (r *RunReport) HasChanges() bool {
	return len(r.Added) > 0 || len(r.Removed) > 0
}

// Run executes the pipeline once. A fetch, baseline or write failure aborts
// the run with an error before later artifacts are touched; a ranking failure
// does not fail the run.
func (r *Runner) Run(ctx context.Context) (*RunReport, error) {
	if r.catalog == nil {
		return nil, errors.New("catalog client cannot be nil")
	}

	if r.artifacts == nil {
		return nil, errors.New("artifact store cannot be nil")
	}

	started := time.Now()
	checkedAt := started.UTC().Format(time.RFC3339)

	ctx = observability.WithProvider(ctx, r.catalog.Name())
	logger := observability.FromContext(ctx)
	logger.Info("checking free models",
		observability.String("endpoint", r.catalog.Endpoint()))

	records, err := r.catalog.FetchModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch model catalog: %w", err)
	}

	free := BuildFreeSet(records)
	ids := SortedIDs(free)
	logger.Info("classified models",
		observability.Int("total_models", len(records)),
		observability.Int("free_models", len(ids)))

	baseline, err := r.artifacts.LoadBaseline(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load baseline: %w", err)
	}

	changes := DiffFreeSets(baseline.ModelIDs, ids)
	changes.CheckedAt = checkedAt
	logger.Info("diffed against baseline",
		observability.Int("added", len(changes.Added)),
		observability.Int("removed", len(changes.Removed)))

	if writeErr := r.artifacts.WriteChanges(ctx, changes); writeErr != nil {
		return nil, fmt.Errorf("failed to write change record: %w", writeErr)
	}

	saveErr := r.artifacts.SaveBaseline(ctx, Baseline{
		LastUpdated: checkedAt,
		ModelCount:  len(ids),
		ModelIDs:    ids,
	})
	if saveErr != nil {
		return nil, fmt.Errorf("failed to save baseline: %w", saveErr)
	}

	snapshot := Snapshot{
		DateUTC:         started.UTC().Format("2006-01-02"),
		TotalFreeModels: len(ids),
		NewModelIDs:     changes.Added,
		RemovedModelIDs: changes.Removed,
		ModelIDs:        ids,
		Models:          free,
	}

	snapshotUpdated, err := r.artifacts.RecordSnapshot(ctx, snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to record snapshot: %w", err)
	}

	r.publishChangeEvents(ctx, changes)

	index := BuildIndex(free)
	profiles := BuildProfiles(index, r.profileDefs())
	profiles, rankingApplied, rankingNote := r.rankProfiles(ctx, profiles)

	layer := BuildLayer(SourceInfo{
		Provider: r.catalog.Name(),
		Endpoint: r.catalog.Endpoint(),
	}, len(records), index, profiles)

	layerUpdated, err := r.artifacts.PublishLayer(ctx, layer)
	if err != nil {
		return nil, fmt.Errorf("failed to publish model layer: %w", err)
	}

	report := &RunReport{
		RunID:           observability.GetRunID(ctx),
		CheckedAt:       checkedAt,
		TotalModels:     len(records),
		FreeModels:      len(ids),
		Added:           changes.Added,
		Removed:         changes.Removed,
		EmptyProfiles:   layer.Stats.EmptyProfiles,
		RankingApplied:  rankingApplied,
		RankingNote:     rankingNote,
		SnapshotUpdated: snapshotUpdated,
		LayerUpdated:    layerUpdated,
	}

	logger.Info("run complete",
		observability.Int("free_models", report.FreeModels),
		observability.Bool("has_changes", report.HasChanges()),
		observability.Bool("ranking_applied", report.RankingApplied),
		observability.Bool("snapshot_updated", report.SnapshotUpdated),
		observability.Bool("layer_updated", report.LayerUpdated),
		observability.Duration("elapsed", time.Since(started)))

	return report, nil
}

// rankProfiles applies the external ranking when a ranker is configured. Any
// ranking failure keeps the heuristic order and is reported only in the note.
func (r *Runner) rankProfiles(ctx context.Context, profiles map[string]Profile) (map[string]Profile, bool, string) {
	if r.ranker == nil {
		return profiles, false, "ranking disabled"
	}

	union := CandidateUnion(profiles)
	if len(union) == 0 {
		return profiles, false, "no candidates to rank"
	}

	logger := observability.FromContext(ctx)

	scores, err := r.ranker.Rank(ctx, union)
	if err != nil {
		logger.Warn("ranking failed, keeping heuristic order",
			observability.Error(err))
		return profiles, false, "ranking failed"
	}

	logger.Info("ranking applied",
		observability.Int("candidates", len(union)),
		observability.Int("scored", len(scores)))

	return ApplyRanking(profiles, scores), true, ""
}

func (r *Runner) publishChangeEvents(ctx context.Context, changes ChangeRecord) {
	if r.events == nil || !changes.HasChanges() {
		return
	}

	if len(changes.Added) > 0 {
		r.events.Publish(ctx, EventModelsAdded, map[string]interface{}{
			"count":     len(changes.Added),
			"model_ids": changes.Added,
		})
	}

	if len(changes.Removed) > 0 {
		r.events.Publish(ctx, EventModelsRemoved, map[string]interface{}{
			"count":     len(changes.Removed),
			"model_ids": changes.Removed,
		})
	}
}

func (r *Runner) profileDefs() []ProfileDef {
	if len(r.profiles) == 0 {
		return DefaultProfiles()
	}
	return r.profiles
}

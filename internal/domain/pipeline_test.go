package domain_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/freeloader/internal/domain"
)

// mockCatalog is a mock implementation of CatalogClient for testing.
type mockCatalog struct {
	fetchFunc func(ctx context.Context) ([]domain.ModelRecord, error)
}

func (m *mockCatalog) FetchModels(ctx context.Context) ([]domain.ModelRecord, error) {
	if m.fetchFunc != nil {
		return m.fetchFunc(ctx)
	}
	return nil, nil
}

func (m *mockCatalog) Name() string {
	return "openrouter"
}

func (m *mockCatalog) Endpoint() string {
	return "https://openrouter.test/api/v1/models"
}

// mockStore is a mock implementation of ArtifactStore that records what the
// runner persisted.
type mockStore struct {
	baseline domain.Baseline
	loadErr  error

	savedBaseline  *domain.Baseline
	writtenChanges *domain.ChangeRecord
	snapshot       *domain.Snapshot
	publishedLayer *domain.ModelLayer

	saveErr     error
	changesErr  error
	snapshotErr error
	publishErr  error
}

func (m *mockStore) LoadBaseline(_ context.Context) (domain.Baseline, error) {
	if m.loadErr != nil {
		return domain.Baseline{}, m.loadErr
	}
	return m.baseline, nil
}

func (m *mockStore) SaveBaseline(_ context.Context, baseline domain.Baseline) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.savedBaseline = &baseline
	return nil
}

func (m *mockStore) WriteChanges(_ context.Context, record domain.ChangeRecord) error {
	if m.changesErr != nil {
		return m.changesErr
	}
	m.writtenChanges = &record
	return nil
}

func (m *mockStore) RecordSnapshot(_ context.Context, snapshot domain.Snapshot) (bool, error) {
	if m.snapshotErr != nil {
		return false, m.snapshotErr
	}
	m.snapshot = &snapshot
	return true, nil
}

func (m *mockStore) PublishLayer(_ context.Context, layer domain.ModelLayer) (bool, error) {
	if m.publishErr != nil {
		return false, m.publishErr
	}
	m.publishedLayer = &layer
	return true, nil
}

func (m *mockStore) ReadLayer(_ context.Context) ([]byte, error) {
	return nil, errors.New("not published")
}

// mockRanker is a mock implementation of CapabilityRanker for testing.
type mockRanker struct {
	calls    int
	rankFunc func(ctx context.Context, modelIDs []string) (map[string]float64, error)
}

func (m *mockRanker) Rank(ctx context.Context, modelIDs []string) (map[string]float64, error) {
	m.calls++
	if m.rankFunc != nil {
		return m.rankFunc(ctx, modelIDs)
	}
	return map[string]float64{}, nil
}

// mockPublisher is a mock implementation of EventPublisher for testing.
type mockPublisher struct {
	events []string
}

func (m *mockPublisher) Publish(_ context.Context, eventType string, _ map[string]interface{}) {
	m.events = append(m.events, eventType)
}

func catalogWith(records ...domain.ModelRecord) *mockCatalog {
	return &mockCatalog{
		fetchFunc: func(_ context.Context) ([]domain.ModelRecord, error) {
			return records, nil
		},
	}
}

func TestRunner_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("should run the full pipeline and publish every artifact", func(t *testing.T) {
		catalog := catalogWith(
			freeRecord("vendor/free-a", "Free A", 8192),
			freeRecord("vendor/free-b", "Free B", 131072),
			domain.ModelRecord{
				ID:      "vendor/paid",
				Pricing: map[string]any{"prompt": "0.002", "completion": "0.004"},
			},
		)
		store := &mockStore{baseline: domain.Baseline{ModelIDs: []string{"vendor/free-a", "vendor/gone"}}}
		events := &mockPublisher{}
		runner := domain.NewRunner(catalog, store, nil, events, nil)

		report, err := runner.Run(ctx)

		require.NoError(t, err)
		require.NotNil(t, report)
		require.Equal(t, 3, report.TotalModels)
		require.Equal(t, 2, report.FreeModels)
		require.Equal(t, []string{"vendor/free-b"}, report.Added)
		require.Equal(t, []string{"vendor/gone"}, report.Removed)
		require.True(t, report.HasChanges())

		require.NotNil(t, store.writtenChanges)
		require.NotEmpty(t, store.writtenChanges.CheckedAt)
		require.NotNil(t, store.savedBaseline)
		require.Equal(t, []string{"vendor/free-a", "vendor/free-b"}, store.savedBaseline.ModelIDs)
		require.Equal(t, 2, store.savedBaseline.ModelCount)
		require.NotNil(t, store.snapshot)
		require.Equal(t, []string{"vendor/free-b"}, store.snapshot.NewModelIDs)
		require.NotNil(t, store.publishedLayer)
		require.Equal(t, domain.SchemaVersion, store.publishedLayer.SchemaVersion)
		require.Equal(t, "openrouter", store.publishedLayer.Source.Provider)
		require.Equal(t, 3, store.publishedLayer.Stats.TotalModels)
		require.Len(t, store.publishedLayer.Models, 2)

		require.Equal(t, []string{domain.EventModelsAdded, domain.EventModelsRemoved}, events.events)
	})

	t.Run("should abort before any write when fetch fails", func(t *testing.T) {
		catalog := &mockCatalog{
			fetchFunc: func(_ context.Context) ([]domain.ModelRecord, error) {
				return nil, errors.New("upstream unreachable")
			},
		}
		store := &mockStore{}
		runner := domain.NewRunner(catalog, store, nil, nil, nil)

		report, err := runner.Run(ctx)

		require.Error(t, err)
		require.Nil(t, report)
		require.Contains(t, err.Error(), "failed to fetch model catalog")
		require.Nil(t, store.writtenChanges)
		require.Nil(t, store.savedBaseline)
		require.Nil(t, store.snapshot)
		require.Nil(t, store.publishedLayer)
	})

	t.Run("should call the ranker once with the candidate union", func(t *testing.T) {
		catalog := catalogWith(
			freeRecord("vendor/free-a", "Free A", 8192),
			freeRecord("vendor/free-b", "Free B", 131072),
		)
		store := &mockStore{}
		ranker := &mockRanker{
			rankFunc: func(_ context.Context, modelIDs []string) (map[string]float64, error) {
				require.Equal(t, []string{"vendor/free-a", "vendor/free-b"}, modelIDs)
				return map[string]float64{"vendor/free-a": 90, "vendor/free-b": 10}, nil
			},
		}
		runner := domain.NewRunner(catalog, store, ranker, nil, nil)

		report, err := runner.Run(ctx)

		require.NoError(t, err)
		require.True(t, report.RankingApplied)
		require.Equal(t, 1, ranker.calls)
		require.Equal(t, []string{"vendor/free-a", "vendor/free-b"},
			store.publishedLayer.Profiles["chat.default.free"].CandidateModelIDs)
	})

	t.Run("should keep heuristic order when ranking fails", func(t *testing.T) {
		catalog := catalogWith(
			freeRecord("vendor/free-a", "Free A", 8192),
			freeRecord("vendor/free-b", "Free B", 131072),
		)
		withRanker := &mockStore{}
		withoutRanker := &mockStore{}

		failing := &mockRanker{
			rankFunc: func(_ context.Context, _ []string) (map[string]float64, error) {
				return nil, domain.ErrRankingUnavailable
			},
		}

		report, err := domain.NewRunner(catalog, withRanker, failing, nil, nil).Run(ctx)
		require.NoError(t, err)
		require.False(t, report.RankingApplied)
		require.Equal(t, "ranking failed", report.RankingNote)

		baselineReport, err := domain.NewRunner(catalog, withoutRanker, nil, nil, nil).Run(ctx)
		require.NoError(t, err)
		require.False(t, baselineReport.RankingApplied)

		// Fallback output must match a run with ranking disabled.
		require.Equal(t, withoutRanker.publishedLayer.Profiles, withRanker.publishedLayer.Profiles)
		require.Equal(t, withoutRanker.publishedLayer.Models, withRanker.publishedLayer.Models)
	})

	t.Run("should not rank when no ranker is configured", func(t *testing.T) {
		catalog := catalogWith(freeRecord("vendor/free-a", "Free A", 8192))
		store := &mockStore{}
		runner := domain.NewRunner(catalog, store, nil, nil, nil)

		report, err := runner.Run(ctx)

		require.NoError(t, err)
		require.False(t, report.RankingApplied)
		require.Equal(t, "ranking disabled", report.RankingNote)
	})

	t.Run("should not invoke the ranker when there are no candidates", func(t *testing.T) {
		catalog := catalogWith(domain.ModelRecord{
			ID:      "vendor/paid",
			Pricing: map[string]any{"prompt": "0.002", "completion": "0.004"},
		})
		store := &mockStore{}
		ranker := &mockRanker{}
		runner := domain.NewRunner(catalog, store, ranker, nil, nil)

		report, err := runner.Run(ctx)

		require.NoError(t, err)
		require.Equal(t, 0, ranker.calls)
		require.Equal(t, "no candidates to rank", report.RankingNote)
		require.Equal(t, []string{"chat.default.free", "chat.longctx.free", "chat.reasoning.free"},
			report.EmptyProfiles)
	})

	t.Run("should publish no events on an unchanged run", func(t *testing.T) {
		catalog := catalogWith(freeRecord("vendor/free-a", "Free A", 8192))
		store := &mockStore{baseline: domain.Baseline{ModelIDs: []string{"vendor/free-a"}}}
		events := &mockPublisher{}
		runner := domain.NewRunner(catalog, store, nil, events, nil)

		report, err := runner.Run(ctx)

		require.NoError(t, err)
		require.False(t, report.HasChanges())
		require.Empty(t, events.events)
	})

	t.Run("should fail when the layer cannot be published", func(t *testing.T) {
		catalog := catalogWith(freeRecord("vendor/free-a", "Free A", 8192))
		store := &mockStore{publishErr: errors.New("schema drift")}
		runner := domain.NewRunner(catalog, store, nil, nil, nil)

		report, err := runner.Run(ctx)

		require.Error(t, err)
		require.Nil(t, report)
		require.Contains(t, err.Error(), "failed to publish model layer")
	})

	t.Run("should fail when the baseline cannot be loaded", func(t *testing.T) {
		catalog := catalogWith(freeRecord("vendor/free-a", "Free A", 8192))
		store := &mockStore{loadErr: errors.New("corrupt baseline")}
		runner := domain.NewRunner(catalog, store, nil, nil, nil)

		report, err := runner.Run(ctx)

		require.Error(t, err)
		require.Nil(t, report)
		require.Nil(t, store.writtenChanges)
	})

	t.Run("should return error when catalog client is nil", func(t *testing.T) {
		runner := domain.NewRunner(nil, &mockStore{}, nil, nil, nil)

		report, err := runner.Run(ctx)

		require.Error(t, err)
		require.Nil(t, report)
		require.Contains(t, err.Error(), "catalog client cannot be nil")
	})

	t.Run("should honor custom profile definitions", func(t *testing.T) {
		catalog := catalogWith(
			freeRecord("vendor/free-a", "Free A", 131072),
			freeRecord("vendor/free-b", "Free B", 8192),
		)
		store := &mockStore{}
		defs := []domain.ProfileDef{
			{
				ID:            "chat.custom.free",
				Description:   "Custom profile.",
				Order:         domain.OrderContextFirst,
				MaxCandidates: 1,
			},
		}
		runner := domain.NewRunner(catalog, store, nil, nil, defs)

		_, err := runner.Run(ctx)

		require.NoError(t, err)
		require.Len(t, store.publishedLayer.Profiles, 1)
		require.Equal(t, []string{"vendor/free-a"},
			store.publishedLayer.Profiles["chat.custom.free"].CandidateModelIDs)
	})
}

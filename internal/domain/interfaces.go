package domain

import "context"

// CatalogClient fetches the raw model catalog from an upstream provider.
type CatalogClient interface {
	// FetchModels returns every model record the provider currently lists.
	FetchModels(ctx context.Context) ([]ModelRecord, error)

	// Name returns the provider identifier.
	Name() string

	// Endpoint returns the catalog endpoint URL.
	Endpoint() string
}

// CapabilityRanker scores model IDs by expected capability.
type CapabilityRanker interface {
	// Rank returns a score per model ID. IDs missing from the result were
	// not scored; callers keep their existing order for those.
	Rank(ctx context.Context, modelIDs []string) (map[string]float64, error)
}

// ArtifactStore persists run artifacts.
type ArtifactStore interface {
	// LoadBaseline returns the last persisted free set, or an empty baseline
	// when none exists yet.
	LoadBaseline(ctx context.Context) (Baseline, error)

	// SaveBaseline overwrites the baseline with the current free set.
	SaveBaseline(ctx context.Context, baseline Baseline) error

	// WriteChanges overwrites the change record for this run.
	WriteChanges(ctx context.Context, record ChangeRecord) error

	// RecordSnapshot writes the snapshot for its UTC date. It reports whether
	// the file was written; identical reruns are skipped.
	RecordSnapshot(ctx context.Context, snapshot Snapshot) (bool, error)

	// PublishLayer writes the model layer after asserting its schema. It
	// reports whether the file was written; a layer unchanged apart from its
	// timestamp is skipped.
	PublishLayer(ctx context.Context, layer ModelLayer) (bool, error)

	// ReadLayer returns the raw bytes of the published model layer.
	ReadLayer(ctx context.Context) ([]byte, error)
}

// EventPublisher publishes events for observability.
type EventPublisher interface {
	// Publish publishes an event with the given type and data.
	Publish(ctx context.Context, eventType string, data map[string]interface{})
}

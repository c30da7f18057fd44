package domain

// SchemaVersion is the published model layer schema version. Consumers pin
// against it; bumping it is a breaking change.
const SchemaVersion = "1.0"

// ModelRecord represents one model entry as returned by the upstream catalog.
// Pricing and provider blocks are kept as raw maps so unknown upstream fields
// survive into snapshots unchanged.
type ModelRecord struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Description      string         `json:"description"`
	ContextLength    *int           `json:"context_length"`
	Pricing          map[string]any `json:"pricing"`
	TopProvider      map[string]any `json:"top_provider"`
	Architecture     Architecture   `json:"architecture"`
	PerRequestLimits map[string]any `json:"per_request_limits"`
}

// Architecture describes a model's input and output modalities.
type Architecture struct {
	InputModalities  []string `json:"input_modalities,omitempty"`
	OutputModalities []string `json:"output_modalities,omitempty"`
}

// ModelInfo is the normalized metadata kept for a free model. Every field is
// always present in persisted output.
type ModelInfo struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Description      string         `json:"description"`
	ContextLength    *int           `json:"context_length"`
	Pricing          map[string]any `json:"pricing"`
	TopProvider      map[string]any `json:"top_provider"`
	PerRequestLimits map[string]any `json:"per_request_limits"`
	Architecture     Architecture   `json:"architecture"`
}

// FreeSet maps model ID to normalized metadata for models classified as free.
type FreeSet map[string]ModelInfo

// Baseline is the persisted record of the last known free set.
type Baseline struct {
	LastUpdated string   `json:"last_updated"`
	ModelCount  int      `json:"model_count"`
	ModelIDs    []string `json:"model_ids"`
}

// ChangeRecord captures the difference between the current free set and the
// baseline for one run.
type ChangeRecord struct {
	CheckedAt string       `json:"checked_at"`
	Totals    ChangeTotals `json:"totals"`
	Added     []string     `json:"added"`
	Removed   []string     `json:"removed"`
}

// ChangeTotals summarizes a change record.
type ChangeTotals struct {
	Current int `json:"current"`
	Added   int `json:"added"`
	Removed int `json:"removed"`
}

// HasChanges reports whether the record contains any additions or removals.
func (c ChangeRecord) HasChanges() bool {
	return len(c.Added) > 0 || len(c.Removed) > 0
}

// Snapshot is the persisted free-model state for one UTC date.
type Snapshot struct {
	DateUTC         string               `json:"date_utc"`
	TotalFreeModels int                  `json:"total_free_models"`
	NewModelIDs     []string             `json:"new_model_ids"`
	RemovedModelIDs []string             `json:"removed_model_ids"`
	ModelIDs        []string             `json:"model_ids"`
	Models          map[string]ModelInfo `json:"models"`
}

// IndexedModel is the consumer-facing view of one free model in the layer.
type IndexedModel struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	ContextLength    *int     `json:"context_length"`
	InputModalities  []string `json:"input_modalities"`
	OutputModalities []string `json:"output_modalities"`
	IsModerated      bool     `json:"is_moderated"`
	Tags             []string `json:"tags"`
}

// Profile is a named, ordered fallback list of free model IDs.
type Profile struct {
	Description       string   `json:"description"`
	Selection         string   `json:"selection"`
	CandidateModelIDs []string `json:"candidate_model_ids"`
}

// ProfileDef defines how one profile selects and orders its candidates.
type ProfileDef struct {
	ID            string
	Description   string
	AnyTag        []string // candidate must carry at least one of these tags; empty matches all
	Order         string   // ordering heuristic, one of the Order* constants
	MaxCandidates int      // 0 uses MaxProfileCandidates
}

// SourceInfo identifies where the catalog data came from.
type SourceInfo struct {
	Provider string `json:"provider"`
	Endpoint string `json:"endpoint"`
}

// LayerStats summarizes the published layer, including profiles whose rules
// matched nothing this run. TotalModels counts every catalog record seen,
// free or not.
type LayerStats struct {
	TotalModels       int            `json:"total_models"`
	FreeModelCount    int            `json:"free_model_count"`
	ProfileCount      int            `json:"profile_count"`
	ProfileCandidates map[string]int `json:"profile_candidates"`
	EmptyProfiles     []string       `json:"empty_profiles"`
}

// ModelLayer is the published artifact consumed by downstream applications.
// Its top-level key set and schema version form the compatibility contract.
type ModelLayer struct {
	SchemaVersion string                  `json:"schema_version"`
	UpdatedAt     string                  `json:"updated_at"`
	Source        SourceInfo              `json:"source"`
	Stats         LayerStats              `json:"stats"`
	Profiles      map[string]Profile      `json:"profiles"`
	Models        map[string]IndexedModel `json:"models"`
}

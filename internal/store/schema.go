package store

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/davidbz/freeloader/internal/domain"
)

// layerKeys is the exact top-level key set of a published model layer.
var layerKeys = []string{
	"schema_version",
	"updated_at",
	"source",
	"stats",
	"profiles",
	"models",
}

// verifyLayerSchema checks the top-level contract of a serialized model
// layer: the exact key set and the schema version value.
func verifyLayerSchema(data []byte) error {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("%w: not a JSON object: %v", domain.ErrSchemaDrift, err)
	}

	expected := make(map[string]bool, len(layerKeys))
	for _, key := range layerKeys {
		expected[key] = true
	}

	if len(payload) != len(layerKeys) {
		return fmt.Errorf("%w: top-level keys %v", domain.ErrSchemaDrift, sortedKeys(payload))
	}
	for key := range payload {
		if !expected[key] {
			return fmt.Errorf("%w: unexpected top-level key %q", domain.ErrSchemaDrift, key)
		}
	}

	var version string
	if err := json.Unmarshal(payload["schema_version"], &version); err != nil {
		return fmt.Errorf("%w: schema_version is not a string", domain.ErrSchemaDrift)
	}
	if version != domain.SchemaVersion {
		return fmt.Errorf("%w: schema_version %q, want %q", domain.ErrSchemaDrift, version, domain.SchemaVersion)
	}

	return nil
}

func sortedKeys(payload map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

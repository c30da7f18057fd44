package domain

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// ParsePrice converts a raw pricing value to a float. It accepts numbers and
// numeric strings; anything else reports false. There is no tolerance: the
// caller compares the result against zero exactly.
func ParsePrice(value any) (float64, bool) {
	switch v := value.(type) {
	case json.Number:
		parsed, err := strconv.ParseFloat(v.String(), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	case string:
		text := strings.TrimSpace(v)
		if text == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// IsFree reports whether a record is a free model: pricing must be non-empty,
// prompt and completion must parse to exactly zero, and every other pricing
// field must parse to exactly zero as well. A malformed pricing field makes
// the record not free, never an error.
func IsFree(record ModelRecord) bool {
	if len(record.Pricing) == 0 {
		return false
	}

	prompt, ok := ParsePrice(record.Pricing["prompt"])
	if !ok || prompt != 0 {
		return false
	}

	completion, ok := ParsePrice(record.Pricing["completion"])
	if !ok || completion != 0 {
		return false
	}

	for _, value := range record.Pricing {
		parsed, parseOK := ParsePrice(value)
		if !parseOK || parsed != 0 {
			return false
		}
	}

	return true
}

// Normalize converts a raw record into the metadata persisted for free models.
func Normalize(record ModelRecord) ModelInfo {
	pricing := record.Pricing
	if pricing == nil {
		pricing = map[string]any{}
	}

	topProvider := record.TopProvider
	if topProvider == nil {
		topProvider = map[string]any{}
	}

	return ModelInfo{
		ID:               record.ID,
		Name:             record.Name,
		Description:      record.Description,
		ContextLength:    record.ContextLength,
		Pricing:          pricing,
		TopProvider:      topProvider,
		PerRequestLimits: record.PerRequestLimits,
		Architecture:     record.Architecture,
	}
}

// BuildFreeSet classifies records and returns the free ones, normalized and
// keyed by ID. Records without an ID are skipped.
func BuildFreeSet(records []ModelRecord) FreeSet {
	free := make(FreeSet)
	for _, record := range records {
		if record.ID == "" {
			continue
		}
		if IsFree(record) {
			free[record.ID] = Normalize(record)
		}
	}
	return free
}

// SortedIDs returns the IDs of a free set in ascending order.
func SortedIDs(free FreeSet) []string {
	ids := make([]string, 0, len(free))
	for id := range free {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

package domain

import (
	"sort"
	"strings"
)

// LongContextThreshold is the minimum context length for the long_context tag.
const LongContextThreshold = 65536

// Keyword hits in ID, name or description mark a model as reasoning-capable.
var reasoningKeywords = []string{
	"reasoning",
	"deepseek-r1",
	"r1",
	"qwq",
	"think",
	"o1",
	"reasoner",
}

// DeriveTags computes the capability tags for a free model. Every model
// carries "text"; the rest are derived from metadata. The result is sorted.
func DeriveTags(info ModelInfo) []string {
	text := strings.ToLower(info.ID + " " + info.Name + " " + info.Description)

	tags := map[string]struct{}{"text": {}}

	for _, keyword := range reasoningKeywords {
		if strings.Contains(text, keyword) {
			tags["reasoning"] = struct{}{}
			break
		}
	}

	if contextOrZero(info.ContextLength) >= LongContextThreshold {
		tags["long_context"] = struct{}{}
	}

	for _, modality := range normalizeList(info.Architecture.InputModalities) {
		if modality == "image" {
			tags["vision"] = struct{}{}
			break
		}
	}

	if isModerated(info.TopProvider) {
		tags["moderated"] = struct{}{}
	}

	sorted := make([]string, 0, len(tags))
	for tag := range tags {
		sorted = append(sorted, tag)
	}
	sort.Strings(sorted)
	return sorted
}

// normalizeList lowercases, deduplicates and sorts a string list.
func normalizeList(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		seen[strings.ToLower(value)] = struct{}{}
	}

	output := make([]string, 0, len(seen))
	for value := range seen {
		output = append(output, value)
	}
	sort.Strings(output)
	return output
}

// isModerated reports whether the top provider flags the model as moderated.
// Only an explicit boolean true counts.
func isModerated(topProvider map[string]any) bool {
	value, ok := topProvider["is_moderated"].(bool)
	return ok && value
}

// contextOrZero unwraps an optional context length.
func contextOrZero(value *int) int {
	if value == nil {
		return 0
	}
	return *value
}

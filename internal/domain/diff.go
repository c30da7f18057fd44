package domain

import "sort"

// DiffFreeSets computes the set difference between the baseline IDs and the
// current IDs. Both result lists are sorted; diffing a set against itself
// yields empty lists. The caller stamps CheckedAt.
func DiffFreeSets(previous, current []string) ChangeRecord {
	previousSet := make(map[string]struct{}, len(previous))
	for _, id := range previous {
		previousSet[id] = struct{}{}
	}

	currentSet := make(map[string]struct{}, len(current))
	for _, id := range current {
		currentSet[id] = struct{}{}
	}

	added := make([]string, 0)
	for _, id := range current {
		if _, known := previousSet[id]; !known {
			added = append(added, id)
		}
	}

	removed := make([]string, 0)
	for _, id := range previous {
		if _, present := currentSet[id]; !present {
			removed = append(removed, id)
		}
	}

	sort.Strings(added)
	sort.Strings(removed)

	return ChangeRecord{
		Totals: ChangeTotals{
			Current: len(currentSet),
			Added:   len(added),
			Removed: len(removed),
		},
		Added:   added,
		Removed: removed,
	}
}

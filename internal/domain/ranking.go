package domain

import "sort"

// CandidateUnion returns the deduplicated union of all profile candidates,
// sorted. This is the single id list handed to the ranking backend.
func CandidateUnion(profiles map[string]Profile) []string {
	seen := make(map[string]struct{})
	for _, profile := range profiles {
		for _, id := range profile.CandidateModelIDs {
			seen[id] = struct{}{}
		}
	}

	union := make([]string, 0, len(seen))
	for id := range seen {
		union = append(union, id)
	}
	sort.Strings(union)
	return union
}

// ApplyRanking reorders every profile's candidates by descending score.
// Scored candidates come first; candidates the ranking did not score keep
// their heuristic relative order at the tail. Scores for IDs outside a
// profile are ignored. The input map is not modified.
func ApplyRanking(profiles map[string]Profile, scores map[string]float64) map[string]Profile {
	ranked := make(map[string]Profile, len(profiles))

	for id, profile := range profiles {
		candidates := append([]string(nil), profile.CandidateModelIDs...)

		sort.SliceStable(candidates, func(i, j int) bool {
			si, iScored := scores[candidates[i]]
			sj, jScored := scores[candidates[j]]
			switch {
			case iScored && jScored:
				return si > sj
			case iScored:
				return true
			default:
				return false
			}
		})

		profile.CandidateModelIDs = candidates
		ranked[id] = profile
	}

	return ranked
}

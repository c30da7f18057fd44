package domain

import "sort"

const (
	// MaxProfileCandidates caps the fallback list length of every profile.
	MaxProfileCandidates = 8

	// SelectionOrderedFallback is the selection strategy of every profile:
	// consumers try candidates in order until one succeeds.
	SelectionOrderedFallback = "ordered-fallback"
)

// Ordering heuristics for profile candidates. Both are deterministic and
// purely local.
const (
	// OrderBalanced prefers non-reasoning models, then moderated providers,
	// then larger context windows, with the model ID as final tiebreaker.
	OrderBalanced = "balanced"

	// OrderContextFirst prefers larger context windows, then moderated
	// providers, with the model ID as final tiebreaker.
	OrderContextFirst = "context-first"
)

// TagReasoning and friends are the tags profiles match against.
const (
	TagText        = "text"
	TagReasoning   = "reasoning"
	TagLongContext = "long_context"
	TagVision      = "vision"
	TagModerated   = "moderated"
)

// DefaultProfiles returns the built-in profile definitions.
func DefaultProfiles() []ProfileDef {
	return []ProfileDef{
		{
			ID:            "chat.default.free",
			Description:   "General-purpose free chat profile.",
			AnyTag:        nil,
			Order:         OrderBalanced,
			MaxCandidates: MaxProfileCandidates,
		},
		{
			ID:            "chat.reasoning.free",
			Description:   "Reasoning-focused free chat profile.",
			AnyTag:        []string{TagReasoning},
			Order:         OrderBalanced,
			MaxCandidates: MaxProfileCandidates,
		},
		{
			ID:            "chat.longctx.free",
			Description:   "Long-context free chat profile.",
			AnyTag:        []string{TagLongContext},
			Order:         OrderContextFirst,
			MaxCandidates: MaxProfileCandidates,
		},
	}
}

// BuildIndex converts a free set into the consumer-facing model index.
func BuildIndex(free FreeSet) map[string]IndexedModel {
	index := make(map[string]IndexedModel, len(free))
	for id, info := range free {
		name := info.Name
		if name == "" {
			name = id
		}

		index[id] = IndexedModel{
			ID:               id,
			Name:             name,
			ContextLength:    info.ContextLength,
			InputModalities:  normalizeList(info.Architecture.InputModalities),
			OutputModalities: normalizeList(info.Architecture.OutputModalities),
			IsModerated:      isModerated(info.TopProvider),
			Tags:             DeriveTags(info),
		}
	}
	return index
}

// BuildProfiles derives every profile's candidate list from the index. A
// definition whose rule matches nothing yields an empty candidate list; it is
// kept, not substituted.
func BuildProfiles(index map[string]IndexedModel, defs []ProfileDef) map[string]Profile {
	profiles := make(map[string]Profile, len(defs))

	for _, def := range defs {
		pool := matchPool(index, def.AnyTag)
		ordered := orderCandidates(pool, def.Order)

		limit := def.MaxCandidates
		if limit <= 0 {
			limit = MaxProfileCandidates
		}
		if len(ordered) > limit {
			ordered = ordered[:limit]
		}

		ids := make([]string, 0, len(ordered))
		for _, model := range ordered {
			ids = append(ids, model.ID)
		}

		profiles[def.ID] = Profile{
			Description:       def.Description,
			Selection:         SelectionOrderedFallback,
			CandidateModelIDs: ids,
		}
	}

	return profiles
}

// EmptyProfiles returns the sorted IDs of profiles with no candidates.
func EmptyProfiles(profiles map[string]Profile) []string {
	empty := make([]string, 0)
	for id, profile := range profiles {
		if len(profile.CandidateModelIDs) == 0 {
			empty = append(empty, id)
		}
	}
	sort.Strings(empty)
	return empty
}

// BuildLayer assembles the publishable model layer. totalModels is the size
// of the fetched catalog before classification. The store stamps UpdatedAt
// when it actually writes.
func BuildLayer(source SourceInfo, totalModels int, index map[string]IndexedModel, profiles map[string]Profile) ModelLayer {
	candidates := make(map[string]int, len(profiles))
	for id, profile := range profiles {
		candidates[id] = len(profile.CandidateModelIDs)
	}

	return ModelLayer{
		SchemaVersion: SchemaVersion,
		UpdatedAt:     "",
		Source:        source,
		Stats: LayerStats{
			TotalModels:       totalModels,
			FreeModelCount:    len(index),
			ProfileCount:      len(profiles),
			ProfileCandidates: candidates,
			EmptyProfiles:     EmptyProfiles(profiles),
		},
		Profiles: profiles,
		Models:   index,
	}
}

func matchPool(index map[string]IndexedModel, anyTag []string) []IndexedModel {
	pool := make([]IndexedModel, 0, len(index))
	for _, model := range index {
		if len(anyTag) == 0 || hasAnyTag(model, anyTag) {
			pool = append(pool, model)
		}
	}
	return pool
}

func hasAnyTag(model IndexedModel, anyTag []string) bool {
	for _, wanted := range anyTag {
		for _, tag := range model.Tags {
			if tag == wanted {
				return true
			}
		}
	}
	return false
}

func hasTag(model IndexedModel, wanted string) bool {
	for _, tag := range model.Tags {
		if tag == wanted {
			return true
		}
	}
	return false
}

// orderCandidates sorts a copy of the pool by the named heuristic. Every
// comparator ends on the model ID, so the order is total and deterministic.
func orderCandidates(pool []IndexedModel, order string) []IndexedModel {
	models := append([]IndexedModel(nil), pool...)

	switch order {
	case OrderContextFirst:
		sort.Slice(models, func(i, j int) bool {
			ci, cj := contextOrZero(models[i].ContextLength), contextOrZero(models[j].ContextLength)
			if ci != cj {
				return ci > cj
			}
			if models[i].IsModerated != models[j].IsModerated {
				return models[i].IsModerated
			}
			return models[i].ID < models[j].ID
		})
	default:
		sort.Slice(models, func(i, j int) bool {
			ri, rj := hasTag(models[i], TagReasoning), hasTag(models[j], TagReasoning)
			if ri != rj {
				return !ri
			}
			if models[i].IsModerated != models[j].IsModerated {
				return models[i].IsModerated
			}
			ci, cj := contextOrZero(models[i].ContextLength), contextOrZero(models[j].ContextLength)
			if ci != cj {
				return ci > cj
			}
			return models[i].ID < models[j].ID
		})
	}

	return models
}

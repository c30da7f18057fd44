package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/davidbz/freeloader/internal/domain"
)

// profileFile is the YAML shape of a profile definitions file.
type profileFile struct {
	Profiles []profileEntry `yaml:"profiles"`
}

type profileEntry struct {
	ID            string   `yaml:"id"`
	Description   string   `yaml:"description"`
	AnyTag        []string `yaml:"any_tag"`
	Order         string   `yaml:"order"`
	MaxCandidates int      `yaml:"max_candidates"`
}

// Profiles returns the profile definitions to build: the YAML file named by
// PROFILE_FILE when set, otherwise the built-in definitions.
func Profiles(cfg *Config) ([]domain.ProfileDef, error) {
	if cfg.ProfileFile == "" {
		return domain.DefaultProfiles(), nil
	}
	return loadProfileFile(cfg.ProfileFile)
}

func loadProfileFile(path string) ([]domain.ProfileDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}

	var file profileFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse profile file: %w", err)
	}

	if len(file.Profiles) == 0 {
		return nil, fmt.Errorf("profile file %s defines no profiles", path)
	}

	defs := make([]domain.ProfileDef, 0, len(file.Profiles))
	seen := make(map[string]bool, len(file.Profiles))
	for i, entry := range file.Profiles {
		if entry.ID == "" {
			return nil, fmt.Errorf("profile entry %d has no id", i)
		}
		if seen[entry.ID] {
			return nil, fmt.Errorf("duplicate profile id %q", entry.ID)
		}
		seen[entry.ID] = true

		order := entry.Order
		if order == "" {
			order = domain.OrderBalanced
		}
		if order != domain.OrderBalanced && order != domain.OrderContextFirst {
			return nil, fmt.Errorf("profile %q has unknown order %q", entry.ID, order)
		}

		defs = append(defs, domain.ProfileDef{
			ID:            entry.ID,
			Description:   entry.Description,
			AnyTag:        entry.AnyTag,
			Order:         order,
			MaxCandidates: entry.MaxCandidates,
		})
	}

	return defs, nil
}

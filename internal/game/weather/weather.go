// Package weather steps a location's weather along biome-specific ordered
// state lists.
package weather

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// DefaultBiome names the list used for biomes without their own entry.
const DefaultBiome = "default"

// Table maps biome names to weather states ordered from calmest to harshest.
type Table struct {
	biomes map[string][]string
	logger *zap.Logger
}

// NewTable builds a Table from biome lists.
//
// Precondition: logger must be non-nil.
// Postcondition: Returns a Table, or an error when a list is empty or holds duplicates.
func NewTable(biomes map[string][]string, logger *zap.Logger) (*Table, error) {
	t := &Table{biomes: make(map[string][]string, len(biomes)), logger: logger}
	for name, states := range biomes {
		if len(states) == 0 {
			return nil, fmt.Errorf("weather: biome %q has no states", name)
		}
		seen := make(map[string]bool, len(states))
		for _, s := range states {
			if seen[s] {
				return nil, fmt.Errorf("weather: biome %q lists %q twice", name, s)
			}
			seen[s] = true
		}
		t.biomes[strings.ToLower(name)] = slices.Clone(states)
	}
	return t, nil
}

// Load reads a weather table from a YAML file mapping biome names to lists.
func Load(path string, logger *zap.Logger) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading weather table %s: %w", path, err)
	}
	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing weather table %s: %w", path, err)
	}
	t, err := NewTable(raw, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// States returns the ordered list for biome, falling back to the default list.
func (t *Table) States(biome string) []string {
	if s, ok := t.biomes[strings.ToLower(biome)]; ok {
		return s
	}
	return t.biomes[DefaultBiome]
}

// Step returns the next weather state. A non-empty set jumps directly to that
// state; otherwise the current state moves one position toward the harsh end
// (shift > 0) or the calm end (shift < 0), clamped at both ends. A current
// state missing from the list is replaced by the list's first entry.
//
// Postcondition: an unknown set state or a biome with no list leaves current unchanged.
func (t *Table) Step(biome, current string, shift int, set string) string {
	states := t.States(biome)
	if len(states) == 0 {
		t.logger.Warn("no weather states for biome", zap.String("biome", biome))
		return current
	}
	if set != "" {
		if slices.Contains(states, set) {
			return set
		}
		t.logger.Warn("ignoring unknown weather state",
			zap.String("biome", biome),
			zap.String("state", set),
		)
		return current
	}
	idx := slices.Index(states, current)
	if idx < 0 {
		return states[0]
	}
	idx = min(max(idx+max(min(shift, 1), -1), 0), len(states)-1)
	return states[idx]
}

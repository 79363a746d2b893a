// Package catalog loads the ordered mission catalog. A three-mission default
// is embedded; a YAML file can override it.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"questline/internal/models"
)

//go:embed missions.yaml
var defaultCatalog []byte

type catalogFile struct {
	Missions []models.Mission `yaml:"missions"`
}

// Default returns the embedded catalog.
func Default() []models.Mission {
	missions, err := parse(defaultCatalog)
	if err != nil {
		// The embedded file is validated by tests; this is unreachable in a
		// correct build.
		panic(fmt.Sprintf("embedded catalog invalid: %v", err))
	}
	return missions
}

// Load reads a catalog from a YAML file. An empty path returns the default.
func Load(path string) ([]models.Mission, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	missions, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return missions, nil
}

func parse(data []byte) ([]models.Mission, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if len(f.Missions) == 0 {
		return nil, fmt.Errorf("catalog has no missions")
	}
	sort.Slice(f.Missions, func(i, j int) bool {
		return f.Missions[i].OrderIndex < f.Missions[j].OrderIndex
	})
	seen := make(map[int]bool)
	for _, m := range f.Missions {
		if m.OrderIndex < 1 {
			return nil, fmt.Errorf("mission %d: order index %d is not 1-based", m.ID, m.OrderIndex)
		}
		if seen[m.OrderIndex] {
			return nil, fmt.Errorf("duplicate order index %d", m.OrderIndex)
		}
		seen[m.OrderIndex] = true
	}
	return f.Missions, nil
}

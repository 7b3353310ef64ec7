package achievement

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/easeaico/lifebot/internal/types"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// DefaultCatalog returns the built-in achievement list.
func DefaultCatalog() ([]types.Achievement, error) {
	return ParseCatalog(defaultCatalog)
}

// ParseCatalog decodes a YAML achievement list.
func ParseCatalog(data []byte) ([]types.Achievement, error) {
	var catalog []types.Achievement
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse achievement catalog: %w", err)
	}
	seen := make(map[string]bool, len(catalog))
	for _, a := range catalog {
		if a.Name == "" || a.ConditionType == "" {
			return nil, fmt.Errorf("achievement catalog entry missing name or condition_type: %+v", a)
		}
		if seen[a.Name] {
			return nil, fmt.Errorf("duplicate achievement %q in catalog", a.Name)
		}
		seen[a.Name] = true
	}
	return catalog, nil
}

package targetmap

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/freqsync/freqsync/internal/domain"
)

// Entry maps one group to its remote database.
type Entry struct {
	DatabaseID string `yaml:"database_id" json:"database_id"`
	Slug       string `yaml:"slug,omitempty" json:"slug,omitempty"`
}

// Map resolves group keys to remote database ids.
type Map struct {
	entries map[string]Entry
}

// Load reads and parses a target map file (YAML or JSON by extension).
func Load(path string) (*Map, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read target map: %w", err)
	}

	return LoadFromBytes(data, filepath.Ext(path))
}

// LoadFromBytes parses a target map from raw bytes
func LoadFromBytes(data []byte, ext string) (*Map, error) {
	ext = strings.ToLower(ext)

	entries := make(map[string]Entry)
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedExt, ext)
	}

	for group, entry := range entries {
		if entry.DatabaseID == "" {
			return nil, fmt.Errorf("%w: group %q", ErrMissingDatabaseID, group)
		}
	}

	return &Map{entries: entries}, nil
}

// Resolve returns the database id for a group.
// Priority: explicit override > map entry > error.
func (m *Map) Resolve(group, override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if entry, ok := m.entries[group]; ok {
		return entry.DatabaseID, nil
	}
	return "", fmt.Errorf("%w: group %q not in target map", domain.ErrTargetUnresolved, group)
}

// Has checks whether a group is present in the map.
func (m *Map) Has(group string) bool {
	_, ok := m.entries[group]
	return ok
}

// Groups returns the known group keys in sorted order.
func (m *Map) Groups() []string {
	groups := make([]string, 0, len(m.entries))
	for group := range m.entries {
		groups = append(groups, group)
	}
	sort.Strings(groups)
	return groups
}

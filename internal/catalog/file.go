package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/vbonduro/nutribot/internal/domain"
)

// fileDocument is the on-disk catalog layout:
//
//	snacks:
//	  - id: nachos
//	    name: Nachos (portion)
//	    kcal: 330
//	    protein: 7
//	    tags: [crunchy, cheesy, salty]
type fileDocument struct {
	Snacks []domain.Snack `yaml:"snacks" toml:"snacks"`
}

// LoadFile reads a catalog from a .yaml, .yml or .toml file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var doc fileDocument
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse catalog yaml: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse catalog toml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", ext)
	}

	if len(doc.Snacks) == 0 {
		return nil, fmt.Errorf("catalog %s has no snacks", path)
	}
	return New(doc.Snacks)
}

// Load returns the catalog at path, or the built-in catalog when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

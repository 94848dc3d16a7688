// Package template loads the static list of declared scene elements.
//
// Templates describe the elements a scene is expected to contain up
// front; entities for undeclared nodes are discovered by scanning the
// live scene tree at registry-resolution time.
package template

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Template declares one known editable element.
type Template struct {
	// Path is the hierarchical entity path.
	Path string `yaml:"path"`

	// Kind names the entity kind ("button", "indicator", "object",
	// "light"). Empty defaults to object.
	Kind string `yaml:"kind"`

	// Category is a free-form grouping label.
	Category string `yaml:"category"`

	// Asset identifies the factory asset backing the element.
	Asset string `yaml:"asset"`

	// Levels lists the visibility tiers the element is shown at.
	// Empty means always visible.
	Levels []int `yaml:"levels"`

	// Config carries kind-specific attributes.
	Config map[string]any `yaml:"config"`
}

// List is the parsed template file.
type List struct {
	Version   int        `yaml:"version"`
	Templates []Template `yaml:"templates"`
}

// Load reads and parses a template file. A missing file yields an
// empty list, not an error.
func Load(path string) (*List, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &List{}, nil
		}
		return nil, fmt.Errorf("reading template file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses template YAML.
func Parse(data []byte) (*List, error) {
	var list List
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	seen := make(map[string]struct{}, len(list.Templates))
	for _, tpl := range list.Templates {
		if tpl.Path == "" {
			return nil, fmt.Errorf("template with empty path")
		}
		if _, dup := seen[tpl.Path]; dup {
			return nil, fmt.Errorf("duplicate template path %q", tpl.Path)
		}
		seen[tpl.Path] = struct{}{}
	}

	return &list, nil
}

package workspace

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ScopeAll is the filter scope that matches all items.
const ScopeAll = "all"

// Config describes the sources of a workspace.
type Config struct {
	// Moving enables moving items on the surface.
	Moving  bool           `yaml:"moving"`
	Sources []SourceConfig `yaml:"sources"`

	// Directory that relative document paths are resolved against.
	dir string
}

// SourceConfig describes one document shown by the workspace.
type SourceConfig struct {
	Doc        string        `yaml:"doc"`
	Filter     *FilterConfig `yaml:"filter,omitempty"`
	Selectable bool          `yaml:"selectable,omitempty"`
}

// FilterConfig makes a document filterable.
type FilterConfig struct {
	// Scopes lists the item scopes to choose from. The first scope is selected initially.
	Scopes []string `yaml:"scopes"`
	// Search is the initial search text.
	Search string `yaml:"search,omitempty"`
}

// Plain reports whether the document is shown section by section, without decorators.
func (c SourceConfig) Plain() bool { return c.Filter == nil && !c.Selectable }

// LoadConfig reads the configuration file at path.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %v", err)
	}
	cfg, err := ParseConfig(b, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %v", path, err)
	}
	return cfg, nil
}

// ParseConfig parses a configuration. Relative document paths are resolved against dir.
func ParseConfig(in []byte, dir string) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(in))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return nil, err
	}
	cfg.dir = dir
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.Sources) == 0 {
		return errors.New("no sources")
	}
	seen := make(map[string]bool)
	for i, s := range c.Sources {
		if s.Doc == "" {
			return fmt.Errorf("source %d: missing doc", i)
		}
		p := c.DocPath(s)
		if seen[p] {
			return fmt.Errorf("source %d: %s is listed twice", i, s.Doc)
		}
		seen[p] = true
		if s.Filter == nil {
			continue
		}
		scopes := make(map[string]bool)
		for _, scope := range s.Filter.Scopes {
			if scope == "" || scopes[scope] {
				return fmt.Errorf("source %d: invalid or duplicate scope %q", i, scope)
			}
			scopes[scope] = true
		}
	}
	return nil
}

// DocPath returns the path of the document of s.
func (c *Config) DocPath(s SourceConfig) string {
	if filepath.IsAbs(s.Doc) || c.dir == "" {
		return s.Doc
	}
	return filepath.Join(c.dir, s.Doc)
}

// Package config loads analyzer settings from an optional .codegraph.yml at
// the root of the analyzed tree. Command-line flags override file values.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/codegraph-dev/codegraph/internal/lang"
)

// FileName is the config file looked up under the analyzed root.
const FileName = ".codegraph.yml"

// Config holds the settings the analyzer and CLI honor.
type Config struct {
	Languages       []string `yaml:"languages"`
	Ignore          []string `yaml:"ignore"`
	CacheDir        string   `yaml:"cache_dir"`
	MaxCacheEntries int      `yaml:"max_cache_entries"`
	Output          string   `yaml:"output"`
	Format          string   `yaml:"format"`
	Database        string   `yaml:"database"`
}

// Default returns the settings used when no config file and no flags are
// given.
func Default() *Config {
	names := make([]string, 0, len(lang.AllLanguages()))
	for _, l := range lang.AllLanguages() {
		names = append(names, string(l))
	}
	return &Config{
		Languages: names,
		Output:    "CODEGRAPH.md",
		Format:    "llm",
	}
}

// Load reads .codegraph.yml under root, falling back to defaults when the
// file does not exist. A present but malformed file is an error.
func Load(root string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(filepath.Join(root, FileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read %s: %w", FileName, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", FileName, err)
	}
	if len(cfg.Languages) == 0 {
		cfg.Languages = Default().Languages
	}
	return cfg, nil
}

// ResolveLanguages normalizes the configured language names. Unknown names
// are an error so typos do not silently shrink the scan.
func (c *Config) ResolveLanguages() ([]lang.Language, error) {
	out := make([]lang.Language, 0, len(c.Languages))
	seen := make(map[lang.Language]bool, len(c.Languages))
	for _, name := range c.Languages {
		l, ok := lang.Normalize(name)
		if !ok {
			return nil, fmt.Errorf("unknown language %q", name)
		}
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	return out, nil
}

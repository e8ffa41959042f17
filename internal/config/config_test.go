package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codegraph-dev/codegraph/internal/lang"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "CODEGRAPH.md", cfg.Output)
	assert.Equal(t, "llm", cfg.Format)
	assert.Len(t, cfg.Languages, len(lang.AllLanguages()))
	assert.Empty(t, cfg.Ignore)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	yml := `languages: [python, go]
ignore:
  - "*_test.py"
cache_dir: /tmp/cg
max_cache_entries: 50
output: graph.json
format: json
database: graph.db
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(yml), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"python", "go"}, cfg.Languages)
	assert.Equal(t, []string{"*_test.py"}, cfg.Ignore)
	assert.Equal(t, "/tmp/cg", cfg.CacheDir)
	assert.Equal(t, 50, cfg.MaxCacheEntries)
	assert.Equal(t, "graph.json", cfg.Output)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "graph.db", cfg.Database)
}

func TestLoadMalformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("languages: ["), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestResolveLanguages(t *testing.T) {
	cfg := &Config{Languages: []string{"py", "golang", "python"}}
	langs, err := cfg.ResolveLanguages()
	require.NoError(t, err)
	// Aliases normalize and duplicates collapse.
	assert.Equal(t, []lang.Language{lang.Python, lang.Go}, langs)
}

func TestResolveLanguagesUnknown(t *testing.T) {
	cfg := &Config{Languages: []string{"fortran"}}
	_, err := cfg.ResolveLanguages()
	assert.ErrorContains(t, err, "fortran")
}

// Package scan walks a source tree and selects the files the analyzer should
// parse, filtering by language extension, a built-in ignore set, optional
// extra patterns, and the repository's .gitignore.
package scan

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/codegraph-dev/codegraph/internal/lang"
)

// ignoreDirs are directory names skipped during the walk.
var ignoreDirs = map[string]bool{
	".git": true, ".hg": true, ".svn": true, ".idea": true, ".vscode": true,
	".cache": true, ".mypy_cache": true, ".pytest_cache": true, ".ruff_cache": true,
	".tox": true, ".venv": true, "venv": true, "env": true, "__pycache__": true,
	"node_modules": true, "bower_components": true, "dist": true, "build": true,
	"target": true, "vendor": true, "coverage": true, "bin": true, "obj": true,
	"out": true, "tmp": true, "temp": true,
}

// ignoreSuffixes are file suffixes skipped during the walk.
var ignoreSuffixes = []string{".tmp", "~", ".pyc", ".pyo", ".o", ".a", ".so", ".dll", ".class"}

// FileInfo is one discovered source file.
type FileInfo struct {
	Path     string // absolute path
	RelPath  string // relative to the scanned root
	Language lang.Language
	Ext      string
}

// Scan walks root and returns every source file matching the requested
// languages. Failure to enumerate the root itself is the only fatal error;
// unreadable subtrees are skipped.
func Scan(ctx context.Context, root string, languages []lang.Language, extraIgnore []string) ([]FileInfo, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	extensions := lang.Extensions(languages)

	// .gitignore is best-effort: a missing or unreadable file just means no
	// extra filtering.
	ign, _ := gitignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))

	var files []FileInfo
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("scan root %s: %w", root, err)
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			if ignoreDirs[d.Name()] || matchesExtra(d.Name(), rel, extraIgnore) {
				return fs.SkipDir
			}
			if ign != nil && ign.MatchesPath(rel+"/") {
				return fs.SkipDir
			}
			return nil
		}

		for _, suffix := range ignoreSuffixes {
			if strings.HasSuffix(d.Name(), suffix) {
				return nil
			}
		}
		if matchesExtra(d.Name(), rel, extraIgnore) {
			return nil
		}
		if ign != nil && ign.MatchesPath(rel) {
			return nil
		}

		ext := filepath.Ext(d.Name())
		l, ok := extensions[ext]
		if !ok {
			return nil
		}
		files = append(files, FileInfo{Path: path, RelPath: rel, Language: l, Ext: ext})
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return files, nil
}

// matchesExtra checks user-supplied glob patterns against the base name and
// the root-relative path.
func matchesExtra(name, rel string, patterns []string) bool {
	for _, pattern := range patterns {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, rel); matched {
			return true
		}
	}
	return false
}

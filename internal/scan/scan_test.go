package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/codegraph-dev/codegraph/internal/lang"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func relPaths(files []FileInfo) map[string]lang.Language {
	out := make(map[string]lang.Language, len(files))
	for _, f := range files {
		out[filepath.ToSlash(f.RelPath)] = f.Language
	}
	return out
}

func TestScanFiltersByLanguage(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"app.py":      "print('hi')\n",
		"lib/util.go": "package lib\n",
		"web/app.js":  "console.log(1)\n",
		"README.md":   "# readme\n",
	})

	files, err := Scan(context.Background(), root, []lang.Language{lang.Python, lang.Go}, nil)
	if err != nil {
		t.Fatal(err)
	}
	got := relPaths(files)
	if len(got) != 2 {
		t.Fatalf("Scan() = %v, want app.py and lib/util.go", got)
	}
	if got["app.py"] != lang.Python {
		t.Errorf("app.py language = %q", got["app.py"])
	}
	if got["lib/util.go"] != lang.Go {
		t.Errorf("lib/util.go language = %q", got["lib/util.go"])
	}
}

func TestScanSkipsIgnoredDirs(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"main.py":                 "pass\n",
		"node_modules/x/index.js": "x\n",
		"__pycache__/main.pyc":    "x\n",
		".git/hooks/pre-commit":   "x\n",
		"vendor/dep/dep.go":       "package dep\n",
	})

	files, err := Scan(context.Background(), root, lang.AllLanguages(), nil)
	if err != nil {
		t.Fatal(err)
	}
	got := relPaths(files)
	if len(got) != 1 {
		t.Fatalf("Scan() = %v, want only main.py", got)
	}
}

func TestScanHonorsGitignore(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":      "generated/\nsecret.py\n",
		"main.py":         "pass\n",
		"secret.py":       "pass\n",
		"generated/g.py":  "pass\n",
		"kept/visible.py": "pass\n",
	})

	files, err := Scan(context.Background(), root, []lang.Language{lang.Python}, nil)
	if err != nil {
		t.Fatal(err)
	}
	got := relPaths(files)
	if _, ok := got["secret.py"]; ok {
		t.Error("gitignored file was scanned")
	}
	if _, ok := got["generated/g.py"]; ok {
		t.Error("gitignored directory was scanned")
	}
	if _, ok := got["main.py"]; !ok {
		t.Error("main.py missing")
	}
	if _, ok := got["kept/visible.py"]; !ok {
		t.Error("kept/visible.py missing")
	}
}

func TestScanExtraIgnorePatterns(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"main.py":       "pass\n",
		"main_test.py":  "pass\n",
		"fixtures/f.py": "pass\n",
	})

	files, err := Scan(context.Background(), root, []lang.Language{lang.Python}, []string{"*_test.py", "fixtures"})
	if err != nil {
		t.Fatal(err)
	}
	got := relPaths(files)
	if len(got) != 1 {
		t.Fatalf("Scan() = %v, want only main.py", got)
	}
}

func TestScanMissingRoot(t *testing.T) {
	_, err := Scan(context.Background(), filepath.Join(t.TempDir(), "nope"), lang.AllLanguages(), nil)
	if err == nil {
		t.Error("Scan() succeeded on a missing root")
	}
}

package repo

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for path, content := range files {
		full := filepath.Join(root, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	return root
}

func TestCollect(t *testing.T) {
	root := writeTree(t, map[string]string{
		"README.md":               "# demo",
		"src/app.py":              "print('hi')\n",
		"src/util.py":             "x = 1\n",
		"main.go":                 "package main\n",
		"tests/test_app.py":       "def test_ok(): pass\n",
		".github/workflows/ci.yml": "on: push\n",
		"node_modules/pkg/x.js":   "ignored",
		".venv/lib/y.py":          "ignored",
	})

	snap, err := Collect(root, CollectOptions{Name: "acme/demo", SkipHistory: true})
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}

	if snap.Name() != "acme/demo" {
		t.Errorf("Name() = %q", snap.Name())
	}
	if snap.HasFile("node_modules/pkg/x.js") {
		t.Error("node_modules content should be skipped")
	}
	if snap.HasFile(".venv/lib/y.py") {
		t.Error(".venv content should be skipped")
	}
	if !snap.HasFile(".github/workflows/ci.yml") {
		t.Error(".github should be walked")
	}
	if !snap.HasFile("src/app.py") {
		t.Error("source file missing from snapshot")
	}

	// python has 3 files, go has 1
	if got := snap.Languages(); !reflect.DeepEqual(got, []string{"python", "go"}) {
		t.Errorf("Languages() = %v, want [python go]", got)
	}

	// Lexically sorted listing for determinism.
	files := snap.Files()
	for i := 1; i < len(files); i++ {
		if files[i-1] >= files[i] {
			t.Fatalf("Files() not sorted: %q before %q", files[i-1], files[i])
		}
	}
}

func TestSnapshotReadFile(t *testing.T) {
	root := writeTree(t, map[string]string{"README.md": "# hello\n"})
	snap, err := Collect(root, CollectOptions{SkipHistory: true})
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}

	data, err := snap.ReadFile("README.md")
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if string(data) != "# hello\n" {
		t.Errorf("ReadFile() = %q", data)
	}

	if _, err := snap.ReadFile("nope.txt"); err == nil {
		t.Error("expected error for file outside snapshot")
	}
	if _, err := snap.ReadFile("../escape"); err == nil {
		t.Error("expected error for path outside snapshot")
	}
}

func TestCollectDefaultsNameToBase(t *testing.T) {
	root := writeTree(t, map[string]string{"go.mod": "module demo\n"})
	snap, err := Collect(root, CollectOptions{SkipHistory: true})
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	if snap.Name() != filepath.Base(root) {
		t.Errorf("Name() = %q, want %q", snap.Name(), filepath.Base(root))
	}
}

func TestParseRemote(t *testing.T) {
	tests := []struct {
		remote string
		want   string
	}{
		{"https://github.com/acme/widget.git", "acme/widget"},
		{"git@github.com:acme/widget.git", "acme/widget"},
		{"https://gitlab.com/group/project", "group/project"},
		{"file", ""},
	}
	for _, tt := range tests {
		if got := parseRemote(tt.remote); got != tt.want {
			t.Errorf("parseRemote(%q) = %q, want %q", tt.remote, got, tt.want)
		}
	}
}

func TestDetectLanguagesDeterministicTies(t *testing.T) {
	files := []string{"a.go", "b.py"}
	first := detectLanguages(files)
	if len(first) != 2 {
		t.Fatalf("detectLanguages() = %v", first)
	}
	if strings.Join(first, ",") != "go,python" {
		t.Errorf("tie break not alphabetical: %v", first)
	}
}

// Package repo collects immutable repository snapshots for assessment.
// A snapshot is a read-only view of a checked-out working tree: its file
// listing, capped file contents, detected languages, and recent commit
// subjects. Evaluators never see the filesystem directly.
package repo

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Collection bounds. Large repositories are truncated rather than refused.
const (
	maxFiles       = 50000
	maxFileBytes   = 1 << 20 // per-file read cap
	commitLogDepth = 50
)

// Directories that never contain assessable source.
var skippedDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	"vendor":       true,
	".venv":        true,
	"venv":         true,
	"__pycache__":  true,
	".tox":         true,
	".mypy_cache":  true,
	".pytest_cache": true,
	"dist":         true,
	"build":        true,
	"target":       true,
	".idea":        true,
}

// Snapshot is an immutable view of one repository working tree.
type Snapshot struct {
	name      string
	root      string
	commitSHA string
	files     []string
	fileSet   map[string]bool
	languages []string
	commits   []string
}

// CollectOptions controls snapshot collection.
type CollectOptions struct {
	// Name overrides the repository identity. Defaults to the directory
	// base name, or "owner/repo" when derivable from the git remote.
	Name string
	// SkipHistory disables the git subprocess calls; commit-based
	// attributes will report as inapplicable.
	SkipHistory bool
	// GitTimeout bounds each git subprocess. Defaults to 10s.
	GitTimeout time.Duration
}

// Collect walks the tree rooted at path and builds a Snapshot.
// Git history and the commit SHA are captured best-effort: a missing git
// binary or a non-repository directory degrades to an empty history, not
// an error.
func Collect(path string, opts CollectOptions) (*Snapshot, error) {
	root, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat repository: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	s := &Snapshot{
		root:    root,
		fileSet: make(map[string]bool),
	}

	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if d.IsDir() {
			if p != root && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if len(s.files) >= maxFiles {
			return fs.SkipAll
		}
		s.files = append(s.files, rel)
		s.fileSet[rel] = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	sort.Strings(s.files)

	s.languages = detectLanguages(s.files)

	s.name = opts.Name
	if s.name == "" {
		s.name = filepath.Base(root)
	}

	if !opts.SkipHistory {
		timeout := opts.GitTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		s.commitSHA = gitOutputLine(root, timeout, "rev-parse", "HEAD")
		s.commits = gitOutputLines(root, timeout, "log", "--format=%s", "-n", fmt.Sprint(commitLogDepth))
		if opts.Name == "" {
			if remote := gitOutputLine(root, timeout, "remote", "get-url", "origin"); remote != "" {
				if full := parseRemote(remote); full != "" {
					s.name = full
				}
			}
		}
	}

	return s, nil
}

// Name returns the repository identity.
func (s *Snapshot) Name() string { return s.name }

// Root returns the absolute filesystem path of the snapshot.
func (s *Snapshot) Root() string { return s.root }

// CommitSHA returns the checked-out commit, or "" when unknown.
func (s *Snapshot) CommitSHA() string { return s.commitSHA }

// Files lists repository-relative paths in lexical order.
func (s *Snapshot) Files() []string {
	out := make([]string, len(s.files))
	copy(out, s.files)
	return out
}

// HasFile reports whether the exact relative path exists in the snapshot.
func (s *Snapshot) HasFile(path string) bool { return s.fileSet[path] }

// ReadFile returns file content, truncated at 1 MiB.
func (s *Snapshot) ReadFile(path string) ([]byte, error) {
	if !s.fileSet[path] {
		return nil, fmt.Errorf("%s: not in snapshot", path)
	}
	f, err := os.Open(filepath.Join(s.root, filepath.FromSlash(path)))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxFileBytes))
}

// Languages lists detected languages, most prevalent first.
func (s *Snapshot) Languages() []string {
	out := make([]string, len(s.languages))
	copy(out, s.languages)
	return out
}

// Commits returns recent commit subjects, newest first.
func (s *Snapshot) Commits() []string {
	out := make([]string, len(s.commits))
	copy(out, s.commits)
	return out
}

// skipDir reports whether a directory is excluded from the file walk.
// Hidden directories are skipped except the CI and tool config homes that
// several attributes inspect.
func skipDir(name string) bool {
	if skippedDirs[name] {
		return true
	}
	if !strings.HasPrefix(name, ".") {
		return false
	}
	switch name {
	case ".github", ".gitlab", ".circleci", ".devcontainer", ".repocert":
		return false
	}
	return true
}

func gitOutputLine(root string, timeout time.Duration, args ...string) string {
	lines := gitOutputLines(root, timeout, args...)
	if len(lines) == 0 {
		return ""
	}
	return lines[0]
}

func gitOutputLines(root string, timeout time.Duration, args ...string) []string {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", root}, args...)...)
	out, err := cmd.Output()
	if err != nil {
		return nil
	}
	var lines []string
	for _, l := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// parseRemote extracts "owner/repo" from common git remote URL forms:
// https://github.com/owner/repo.git, git@github.com:owner/repo.git.
func parseRemote(remote string) string {
	remote = strings.TrimSuffix(remote, ".git")
	remote = strings.ReplaceAll(remote, ":", "/")
	parts := strings.Split(remote, "/")
	if len(parts) < 2 {
		return ""
	}
	owner := parts[len(parts)-2]
	name := parts[len(parts)-1]
	if owner == "" || name == "" {
		return ""
	}
	return owner + "/" + name
}

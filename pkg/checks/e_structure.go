package checks

import (
	"context"
	"fmt"
	"strings"

	"github.com/repocert/repocert/pkg/assess"
)

// StandardLayoutCheck verifies the repository follows a conventional
// source layout for its primary language.
type StandardLayoutCheck struct{}

func (c *StandardLayoutCheck) Attribute() assess.Attribute {
	return assess.Attribute{
		ID:            "standard_layout",
		Name:          "Standard Project Layout",
		Category:      "Structure",
		Tier:          1,
		DefaultWeight: 0.10,
		Description:   "Source and test directories follow the language's conventional layout",
	}
}

// Applicable is false for repositories with no detectable source language,
// e.g. documentation-only trees.
func (c *StandardLayoutCheck) Applicable(snap assess.Snapshot) bool {
	return len(snap.Languages()) > 0
}

func (c *StandardLayoutCheck) Evaluate(ctx context.Context, snap assess.Snapshot) (assess.Finding, error) {
	hasSource, sourceDir := findSourceDir(snap)
	hasTests, testsDir := findTestsDir(snap)

	found := 0
	var evidence []string
	if hasSource {
		found++
		evidence = append(evidence, sourceDir+": source layout recognized")
	} else {
		evidence = append(evidence, "no conventional source directory (src/, lib/, cmd/, pkg/, or package dir)")
	}
	if hasTests {
		found++
		evidence = append(evidence, testsDir+": tests directory present")
	} else {
		evidence = append(evidence, "no tests directory")
	}

	score := proportionalScore(float64(found), 2)
	f := assess.Finding{
		Status:   statusFor(score),
		Score:    score,
		Evidence: append([]string{fmt.Sprintf("found %d/2 standard directories", found)}, evidence...),
	}
	if f.Status != assess.StatusPass {
		f.Remediation = "Organize code under a conventional source directory and keep tests in a dedicated tests directory."
	}
	return f, nil
}

func findSourceDir(snap assess.Snapshot) (bool, string) {
	// Go repositories co-locate _test files with source, so cmd/ and pkg/
	// (or root-level .go files) count as layout.
	for _, dir := range []string{"src", "lib", "app", "cmd", "pkg", "internal"} {
		if len(filesUnder(snap, dir)) > 0 {
			return true, dir + "/"
		}
	}
	// Package-named directory containing an __init__.py counts for Python.
	for _, f := range snap.Files() {
		if strings.HasSuffix(f, "/__init__.py") && strings.Count(f, "/") == 1 {
			return true, strings.SplitN(f, "/", 2)[0] + "/"
		}
	}
	return false, ""
}

func findTestsDir(snap assess.Snapshot) (bool, string) {
	for _, dir := range []string{"tests", "test", "spec"} {
		if len(filesUnder(snap, dir)) > 0 {
			return true, dir + "/"
		}
	}
	// Go convention: in-package _test.go files.
	for _, f := range snap.Files() {
		if strings.HasSuffix(f, "_test.go") {
			return true, "_test.go files"
		}
	}
	return false, ""
}

// GitignoreCheck verifies a .gitignore exists and covers the language's
// usual build artifacts.
type GitignoreCheck struct{}

func (c *GitignoreCheck) Attribute() assess.Attribute {
	return assess.Attribute{
		ID:            "gitignore_hygiene",
		Name:          "Gitignore Hygiene",
		Category:      "Structure",
		Tier:          2,
		DefaultWeight: 0.05,
		Description:   "A .gitignore covering generated and environment files",
	}
}

func (c *GitignoreCheck) Applicable(snap assess.Snapshot) bool { return true }

var languageIgnores = map[string][]string{
	"python":     {"__pycache__", ".venv", "*.pyc"},
	"javascript": {"node_modules", "dist"},
	"typescript": {"node_modules", "dist"},
	"go":         {"bin", "*.test"},
	"rust":       {"target"},
	"java":       {"target", "*.class"},
}

func (c *GitignoreCheck) Evaluate(ctx context.Context, snap assess.Snapshot) (assess.Finding, error) {
	if !snap.HasFile(".gitignore") {
		return assess.Finding{
			Status:      assess.StatusFail,
			Score:       0,
			Evidence:    []string{"no .gitignore at repository root"},
			Remediation: "Add a .gitignore covering build artifacts, caches, and local environments.",
		}, nil
	}

	data, err := snap.ReadFile(".gitignore")
	if err != nil {
		return assess.Finding{}, fmt.Errorf("reading .gitignore: %w", err)
	}
	content := string(data)

	score := 60.0
	evidence := []string{".gitignore: present"}

	var patterns []string
	for _, lang := range snap.Languages() {
		patterns = append(patterns, languageIgnores[lang]...)
	}
	if len(patterns) > 0 {
		covered := 0
		for _, p := range patterns {
			if strings.Contains(content, strings.TrimPrefix(p, "*")) {
				covered++
			}
		}
		score += 40 * float64(covered) / float64(len(patterns))
		evidence = append(evidence, fmt.Sprintf("covers %d/%d expected artifact patterns", covered, len(patterns)))
	} else {
		score += 40
	}

	return assess.Finding{Status: statusFor(score), Score: score, Evidence: evidence}, nil
}

// EditorConfigCheck looks for a shared editor configuration.
type EditorConfigCheck struct{}

func (c *EditorConfigCheck) Attribute() assess.Attribute {
	return assess.Attribute{
		ID:            "editorconfig",
		Name:          "Editor Configuration",
		Category:      "Structure",
		Tier:          4,
		DefaultWeight: 0.01,
		Description:   "An .editorconfig keeping whitespace conventions consistent",
	}
}

func (c *EditorConfigCheck) Applicable(snap assess.Snapshot) bool { return true }

func (c *EditorConfigCheck) Evaluate(ctx context.Context, snap assess.Snapshot) (assess.Finding, error) {
	if snap.HasFile(".editorconfig") {
		return assess.Finding{
			Status:   assess.StatusPass,
			Score:    100,
			Evidence: []string{".editorconfig: present"},
		}, nil
	}
	return assess.Finding{
		Status:      assess.StatusFail,
		Score:       0,
		Evidence:    []string{"no .editorconfig"},
		Remediation: "Add an .editorconfig to pin indentation and line-ending conventions.",
	}, nil
}

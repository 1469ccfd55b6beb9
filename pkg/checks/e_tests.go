package checks

import (
	"context"
	"fmt"
	"strings"

	"github.com/repocert/repocert/pkg/assess"
)

// TestsPresentCheck measures whether the repository carries an automated
// test suite proportionate to its source size.
type TestsPresentCheck struct{}

func (c *TestsPresentCheck) Attribute() assess.Attribute {
	return assess.Attribute{
		ID:            "tests_present",
		Name:          "Automated Tests",
		Category:      "Testing",
		Tier:          1,
		DefaultWeight: 0.12,
		Description:   "Test files exist in reasonable proportion to source files",
	}
}

func (c *TestsPresentCheck) Applicable(snap assess.Snapshot) bool {
	return len(snap.Languages()) > 0
}

// isTestFile recognizes the common per-language test naming conventions.
func isTestFile(path string) bool {
	base := path
	if i := strings.LastIndex(path, "/"); i >= 0 {
		base = path[i+1:]
	}
	switch {
	case strings.HasSuffix(base, "_test.go"),
		strings.HasPrefix(base, "test_") && strings.HasSuffix(base, ".py"),
		strings.HasSuffix(base, "_test.py"),
		strings.Contains(base, ".test.") || strings.Contains(base, ".spec."),
		strings.HasSuffix(base, "_spec.rb"):
		return true
	}
	return strings.HasPrefix(path, "tests/") || strings.HasPrefix(path, "test/")
}

func (c *TestsPresentCheck) Evaluate(ctx context.Context, snap assess.Snapshot) (assess.Finding, error) {
	sourceExts := []string{".go", ".py", ".js", ".ts", ".tsx", ".jsx", ".rb", ".rs", ".java", ".kt", ".c", ".cc", ".cpp", ".cs"}

	var source, tests int
	for _, f := range filesWithExt(snap, sourceExts...) {
		if isTestFile(f) {
			tests++
		} else {
			source++
		}
	}

	if tests == 0 {
		return assess.Finding{
			Status:      assess.StatusFail,
			Score:       0,
			Evidence:    []string{fmt.Sprintf("%d source files, no test files", source)},
			Remediation: "Add automated tests; even a thin suite anchors future changes.",
		}, nil
	}

	// One test file per four source files earns full marks.
	ratio := float64(tests) / float64(maxInt(source, 1))
	score := proportionalScore(ratio, 0.25)
	return assess.Finding{
		Status: statusFor(score),
		Score:  score,
		Evidence: []string{
			fmt.Sprintf("%d test files / %d source files (ratio %.2f)", tests, source, ratio),
		},
	}, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// DocCommentsCheck samples source files and measures how many carry
// top-level documentation comments.
type DocCommentsCheck struct{}

func (c *DocCommentsCheck) Attribute() assess.Attribute {
	return assess.Attribute{
		ID:            "doc_comments",
		Name:          "Documentation Comments",
		Category:      "Documentation",
		Tier:          3,
		DefaultWeight: 0.06,
		Description:   "Source files carry doc comments or docstrings",
	}
}

func (c *DocCommentsCheck) Applicable(snap assess.Snapshot) bool {
	return hasLanguage(snap, "go", "python", "javascript", "typescript", "java", "rust")
}

const docSampleLimit = 40

func (c *DocCommentsCheck) Evaluate(ctx context.Context, snap assess.Snapshot) (assess.Finding, error) {
	files := filesWithExt(snap, ".go", ".py", ".js", ".ts", ".java", ".rs")
	var sampled, documented int
	for _, f := range files {
		if isTestFile(f) {
			continue
		}
		if sampled >= docSampleLimit {
			break
		}
		data, err := snap.ReadFile(f)
		if err != nil {
			continue
		}
		sampled++
		if hasDocComment(f, string(data)) {
			documented++
		}
	}

	if sampled == 0 {
		return assess.Finding{
			Status:   assess.StatusFail,
			Score:    0,
			Evidence: []string{"no readable source files to sample"},
		}, nil
	}

	coverage := float64(documented) / float64(sampled)
	score := proportionalScore(coverage, 0.6) // 60% documented files = full marks
	f := assess.Finding{
		Status: statusFor(score),
		Score:  score,
		Evidence: []string{
			fmt.Sprintf("%d/%d sampled files carry doc comments (%.0f%%)", documented, sampled, coverage*100),
		},
	}
	if f.Status != assess.StatusPass {
		f.Remediation = "Document exported functions and modules with doc comments."
	}
	return f, nil
}

func hasDocComment(path, content string) bool {
	switch {
	case strings.HasSuffix(path, ".py"):
		return strings.Contains(content, `"""`) || strings.Contains(content, "'''")
	case strings.HasSuffix(path, ".go"):
		for _, line := range strings.Split(content, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "// ") {
				return true
			}
		}
		return false
	default:
		return strings.Contains(content, "/**") || strings.Contains(content, "///")
	}
}

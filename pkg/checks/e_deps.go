package checks

import (
	"context"
	"strings"

	"github.com/repocert/repocert/pkg/assess"
)

// LockFilesCheck verifies dependency lock files exist for each detected
// package manifest.
type LockFilesCheck struct{}

func (c *LockFilesCheck) Attribute() assess.Attribute {
	return assess.Attribute{
		ID:            "lock_files",
		Name:          "Lock Files for Reproducibility",
		Category:      "Dependencies",
		Tier:          1,
		DefaultWeight: 0.10,
		Description:   "Pinned dependency lock files matching the project's manifests",
	}
}

// manifestLocks pairs each manifest file with its accepted lock files.
var manifestLocks = []struct {
	manifest string
	locks    []string
}{
	{"package.json", []string{"package-lock.json", "yarn.lock", "pnpm-lock.yaml", "bun.lockb"}},
	{"pyproject.toml", []string{"uv.lock", "poetry.lock", "pdm.lock", "requirements.txt"}},
	{"setup.py", []string{"requirements.txt", "Pipfile.lock"}},
	{"Pipfile", []string{"Pipfile.lock"}},
	{"Cargo.toml", []string{"Cargo.lock"}},
	{"Gemfile", []string{"Gemfile.lock"}},
	{"go.mod", []string{"go.sum"}},
	{"composer.json", []string{"composer.lock"}},
}

// Applicable is false when no recognized manifest exists at the root.
func (c *LockFilesCheck) Applicable(snap assess.Snapshot) bool {
	for _, ml := range manifestLocks {
		if snap.HasFile(ml.manifest) {
			return true
		}
	}
	return false
}

func (c *LockFilesCheck) Evaluate(ctx context.Context, snap assess.Snapshot) (assess.Finding, error) {
	var manifests, locked, missing []string
	for _, ml := range manifestLocks {
		if !snap.HasFile(ml.manifest) {
			continue
		}
		manifests = append(manifests, ml.manifest)
		if lock, ok := firstExisting(snap, ml.locks...); ok {
			locked = append(locked, lock)
		} else {
			missing = append(missing, ml.manifest)
		}
	}

	score := proportionalScore(float64(len(locked)), float64(len(manifests)))
	evidence := []string{"manifests: " + strings.Join(manifests, ", ")}
	if len(locked) > 0 {
		evidence = append(evidence, "lock files: "+strings.Join(locked, ", "))
	}
	for _, m := range missing {
		evidence = append(evidence, "no lock file for "+m)
	}

	f := assess.Finding{Status: statusFor(score), Score: score, Evidence: evidence}
	if len(missing) > 0 {
		f.Remediation = "Generate and commit lock files for: " + strings.Join(missing, ", ")
	}
	return f, nil
}

// LinterConfigCheck looks for committed linter or formatter configuration.
type LinterConfigCheck struct{}

func (c *LinterConfigCheck) Attribute() assess.Attribute {
	return assess.Attribute{
		ID:            "linter_config",
		Name:          "Linter Configuration",
		Category:      "Code Quality",
		Tier:          3,
		DefaultWeight: 0.05,
		Description:   "A committed linter or formatter configuration",
	}
}

func (c *LinterConfigCheck) Applicable(snap assess.Snapshot) bool {
	return len(snap.Languages()) > 0
}

var linterConfigs = []string{
	".golangci.yml", ".golangci.yaml",
	"ruff.toml", ".ruff.toml",
	".eslintrc", ".eslintrc.json", ".eslintrc.js", "eslint.config.js", "eslint.config.mjs",
	".flake8", ".pylintrc",
	"biome.json", ".prettierrc", ".prettierrc.json",
	"rustfmt.toml", ".rustfmt.toml",
	".rubocop.yml",
}

func (c *LinterConfigCheck) Evaluate(ctx context.Context, snap assess.Snapshot) (assess.Finding, error) {
	if name, ok := firstExisting(snap, linterConfigs...); ok {
		return assess.Finding{
			Status:   assess.StatusPass,
			Score:    100,
			Evidence: []string{name + ": present"},
		}, nil
	}

	// pyproject.toml may embed tool config.
	if snap.HasFile("pyproject.toml") {
		data, err := snap.ReadFile("pyproject.toml")
		if err == nil && (strings.Contains(string(data), "[tool.ruff") ||
			strings.Contains(string(data), "[tool.black") ||
			strings.Contains(string(data), "[tool.flake8")) {
			return assess.Finding{
				Status:   assess.StatusPass,
				Score:    100,
				Evidence: []string{"pyproject.toml: embedded linter configuration"},
			}, nil
		}
	}

	return assess.Finding{
		Status:      assess.StatusFail,
		Score:       0,
		Evidence:    []string{"no linter or formatter configuration found"},
		Remediation: "Commit a linter configuration so style checks run identically everywhere.",
	}, nil
}

// Package checks provides the built-in attribute evaluators: small,
// swappable heuristics that inspect a repository snapshot and produce one
// finding each. The engine in pkg/assess treats them as opaque strategy
// objects; everything here is replaceable per-attribute.
package checks

import (
	"path"
	"strings"

	"github.com/repocert/repocert/pkg/assess"
)

// Catalog returns the full built-in evaluator catalog in its canonical
// registration order. Default weights sum to 1.0, though the resolver
// renormalizes in any case.
func Catalog() []assess.Evaluator {
	return []assess.Evaluator{
		&ReadmeCheck{},
		&AgentInstructionsCheck{},
		&StandardLayoutCheck{},
		&LockFilesCheck{},
		&TestsPresentCheck{},
		&CIWorkflowsCheck{},
		&LicenseCheck{},
		&CommitHygieneCheck{},
		&GitignoreCheck{},
		&DocCommentsCheck{},
		&TypeAnnotationsCheck{},
		&LinterConfigCheck{},
		&ContainerSetupCheck{},
		&SecurityPolicyCheck{},
		&EditorConfigCheck{},
	}
}

// NewRegistry builds the default registry from the built-in catalog.
func NewRegistry() (*assess.Registry, error) {
	return assess.NewRegistry(Catalog()...)
}

// firstExisting returns the first of the candidate paths present in the
// snapshot.
func firstExisting(snap assess.Snapshot, candidates ...string) (string, bool) {
	for _, c := range candidates {
		if snap.HasFile(c) {
			return c, true
		}
	}
	return "", false
}

// filesUnder lists snapshot files below the given directory prefix.
func filesUnder(snap assess.Snapshot, dir string) []string {
	prefix := strings.TrimSuffix(dir, "/") + "/"
	var out []string
	for _, f := range snap.Files() {
		if strings.HasPrefix(f, prefix) {
			out = append(out, f)
		}
	}
	return out
}

// filesWithExt lists snapshot files with any of the given extensions.
func filesWithExt(snap assess.Snapshot, exts ...string) []string {
	var out []string
	for _, f := range snap.Files() {
		e := strings.ToLower(path.Ext(f))
		for _, want := range exts {
			if e == want {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

// hasLanguage reports whether the snapshot's detected languages include
// any of the given ones.
func hasLanguage(snap assess.Snapshot, langs ...string) bool {
	for _, detected := range snap.Languages() {
		for _, want := range langs {
			if detected == want {
				return true
			}
		}
	}
	return false
}

// proportionalScore maps measured/threshold onto [0,100], capping at 100.
func proportionalScore(measured, threshold float64) float64 {
	if threshold <= 0 {
		return 0
	}
	score := measured / threshold * 100
	if score > 100 {
		return 100
	}
	if score < 0 {
		return 0
	}
	return score
}

// statusFor buckets a score into pass/partial/fail at the conventional
// 75/40 cut points used across the catalog.
func statusFor(score float64) assess.Status {
	switch {
	case score >= 75:
		return assess.StatusPass
	case score >= 40:
		return assess.StatusPartial
	default:
		return assess.StatusFail
	}
}

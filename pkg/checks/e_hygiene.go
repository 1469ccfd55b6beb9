package checks

import (
	"context"
	"fmt"
	"strings"

	"github.com/repocert/repocert/pkg/assess"
)

// CommitHygieneCheck grades recent commit subjects: present, concise, and
// not placeholder noise.
type CommitHygieneCheck struct{}

func (c *CommitHygieneCheck) Attribute() assess.Attribute {
	return assess.Attribute{
		ID:            "commit_hygiene",
		Name:          "Commit Message Hygiene",
		Category:      "History",
		Tier:          2,
		DefaultWeight: 0.07,
		Description:   "Recent commit subjects are descriptive and within conventional length",
	}
}

// Applicable is false when the snapshot carries no git history, e.g. a
// tarball export.
func (c *CommitHygieneCheck) Applicable(snap assess.Snapshot) bool {
	return len(snap.Commits()) > 0
}

var noiseSubjects = map[string]bool{
	"wip": true, "fix": true, "update": true, "changes": true,
	"stuff": true, "asdf": true, "tmp": true, "test": true, ".": true,
}

func (c *CommitHygieneCheck) Evaluate(ctx context.Context, snap assess.Snapshot) (assess.Finding, error) {
	commits := snap.Commits()

	good := 0
	var flagged []string
	for _, subject := range commits {
		switch {
		case len(subject) > 72:
			flagged = append(flagged, fmt.Sprintf("overlong subject (%d chars): %.40s...", len(subject), subject))
		case len(subject) < 10, noiseSubjects[strings.ToLower(strings.TrimSpace(subject))]:
			flagged = append(flagged, "placeholder subject: "+subject)
		default:
			good++
		}
	}

	score := proportionalScore(float64(good), float64(len(commits))*0.8)
	evidence := []string{fmt.Sprintf("%d/%d recent commits have descriptive subjects", good, len(commits))}
	// Cap the examples so evidence stays readable.
	for i, fl := range flagged {
		if i >= 3 {
			evidence = append(evidence, fmt.Sprintf("... and %d more flagged commits", len(flagged)-3))
			break
		}
		evidence = append(evidence, fl)
	}

	f := assess.Finding{Status: statusFor(score), Score: score, Evidence: evidence}
	if f.Status != assess.StatusPass {
		f.Remediation = "Write commit subjects that state the change in under 72 characters."
	}
	return f, nil
}

// CIWorkflowsCheck verifies a CI pipeline definition exists.
type CIWorkflowsCheck struct{}

func (c *CIWorkflowsCheck) Attribute() assess.Attribute {
	return assess.Attribute{
		ID:            "ci_workflows",
		Name:          "Continuous Integration",
		Category:      "Automation",
		Tier:          2,
		DefaultWeight: 0.08,
		Description:   "A CI configuration that builds and tests every change",
	}
}

func (c *CIWorkflowsCheck) Applicable(snap assess.Snapshot) bool { return true }

func (c *CIWorkflowsCheck) Evaluate(ctx context.Context, snap assess.Snapshot) (assess.Finding, error) {
	workflows := filesUnder(snap, ".github/workflows")
	var found []string
	for _, w := range workflows {
		if strings.HasSuffix(w, ".yml") || strings.HasSuffix(w, ".yaml") {
			found = append(found, w)
		}
	}
	if name, ok := firstExisting(snap, ".gitlab-ci.yml", ".circleci/config.yml", "Jenkinsfile", ".travis.yml", "azure-pipelines.yml"); ok {
		found = append(found, name)
	}

	if len(found) == 0 {
		return assess.Finding{
			Status:      assess.StatusFail,
			Score:       0,
			Evidence:    []string{"no CI configuration found"},
			Remediation: "Add a CI workflow that runs the build and tests on every push.",
		}, nil
	}

	return assess.Finding{
		Status:   assess.StatusPass,
		Score:    100,
		Evidence: []string{fmt.Sprintf("%d CI definitions: %s", len(found), strings.Join(found, ", "))},
	}, nil
}

// LicenseCheck verifies a license file exists at the repository root.
type LicenseCheck struct{}

func (c *LicenseCheck) Attribute() assess.Attribute {
	return assess.Attribute{
		ID:            "license_file",
		Name:          "License File",
		Category:      "Governance",
		Tier:          2,
		DefaultWeight: 0.05,
		Description:   "A license file clarifying usage terms",
	}
}

func (c *LicenseCheck) Applicable(snap assess.Snapshot) bool { return true }

func (c *LicenseCheck) Evaluate(ctx context.Context, snap assess.Snapshot) (assess.Finding, error) {
	if name, ok := firstExisting(snap, "LICENSE", "LICENSE.md", "LICENSE.txt", "COPYING", "LICENCE"); ok {
		return assess.Finding{
			Status:   assess.StatusPass,
			Score:    100,
			Evidence: []string{name + ": present"},
		}, nil
	}
	return assess.Finding{
		Status:      assess.StatusFail,
		Score:       0,
		Evidence:    []string{"no license file at repository root"},
		Remediation: "Add a LICENSE file so usage terms are unambiguous.",
	}, nil
}

// SecurityPolicyCheck looks for a security disclosure policy and automated
// dependency update configuration.
type SecurityPolicyCheck struct{}

func (c *SecurityPolicyCheck) Attribute() assess.Attribute {
	return assess.Attribute{
		ID:            "security_policy",
		Name:          "Security Policy",
		Category:      "Governance",
		Tier:          4,
		DefaultWeight: 0.02,
		Description:   "A vulnerability disclosure policy and dependency update automation",
	}
}

func (c *SecurityPolicyCheck) Applicable(snap assess.Snapshot) bool { return true }

func (c *SecurityPolicyCheck) Evaluate(ctx context.Context, snap assess.Snapshot) (assess.Finding, error) {
	var evidence []string
	score := 0.0

	if name, ok := firstExisting(snap, "SECURITY.md", ".github/SECURITY.md", "docs/SECURITY.md"); ok {
		score += 60
		evidence = append(evidence, name+": present")
	} else {
		evidence = append(evidence, "no SECURITY.md")
	}
	if name, ok := firstExisting(snap, ".github/dependabot.yml", ".github/dependabot.yaml", "renovate.json", ".github/renovate.json"); ok {
		score += 40
		evidence = append(evidence, name+": dependency updates automated")
	} else {
		evidence = append(evidence, "no dependency update automation")
	}

	f := assess.Finding{Status: statusFor(score), Score: score, Evidence: evidence}
	if f.Status != assess.StatusPass {
		f.Remediation = "Add a SECURITY.md disclosure policy and a dependabot or renovate configuration."
	}
	return f, nil
}

package checks

import (
	"context"
	"fmt"
	"strings"

	"github.com/repocert/repocert/pkg/assess"
)

// ReadmeCheck verifies that a substantive README exists.
type ReadmeCheck struct{}

func (c *ReadmeCheck) Attribute() assess.Attribute {
	return assess.Attribute{
		ID:            "readme",
		Name:          "README Documentation",
		Category:      "Documentation",
		Tier:          1,
		DefaultWeight: 0.12,
		Description:   "A README that explains what the project is and how to use it",
	}
}

func (c *ReadmeCheck) Applicable(snap assess.Snapshot) bool { return true }

func (c *ReadmeCheck) Evaluate(ctx context.Context, snap assess.Snapshot) (assess.Finding, error) {
	name, found := firstExisting(snap, "README.md", "README.rst", "README.txt", "README")
	if !found {
		return assess.Finding{
			Status:      assess.StatusFail,
			Score:       0,
			Evidence:    []string{"no README file at repository root"},
			Remediation: "Add a README.md describing the project, installation, and usage.",
		}, nil
	}

	data, err := snap.ReadFile(name)
	if err != nil {
		return assess.Finding{}, fmt.Errorf("reading %s: %w", name, err)
	}
	content := string(data)

	score := 40.0 // existence
	evidence := []string{name + ": present"}

	if len(content) >= 300 {
		score += 30
		evidence = append(evidence, fmt.Sprintf("%d bytes of content", len(content)))
	} else {
		evidence = append(evidence, fmt.Sprintf("only %d bytes of content", len(content)))
	}

	sections := 0
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "#") || strings.HasPrefix(line, "==") {
			sections++
		}
	}
	if sections >= 3 {
		score += 30
		evidence = append(evidence, fmt.Sprintf("%d headed sections", sections))
	} else {
		evidence = append(evidence, fmt.Sprintf("%d headed sections, want 3+", sections))
	}

	f := assess.Finding{Status: statusFor(score), Score: score, Evidence: evidence}
	if f.Status != assess.StatusPass {
		f.Remediation = "Expand the README with installation, usage, and contribution sections."
	}
	return f, nil
}

// AgentInstructionsCheck looks for machine-readable contributor and agent
// guidance files.
type AgentInstructionsCheck struct{}

func (c *AgentInstructionsCheck) Attribute() assess.Attribute {
	return assess.Attribute{
		ID:            "agent_instructions",
		Name:          "Agent Instructions",
		Category:      "Documentation",
		Tier:          1,
		DefaultWeight: 0.08,
		Description:   "Instruction files that orient automated coding agents and contributors",
	}
}

func (c *AgentInstructionsCheck) Applicable(snap assess.Snapshot) bool { return true }

func (c *AgentInstructionsCheck) Evaluate(ctx context.Context, snap assess.Snapshot) (assess.Finding, error) {
	candidates := []string{"AGENTS.md", "CLAUDE.md", ".cursorrules", "CONVENTIONS.md", "CONTRIBUTING.md"}

	var found []string
	for _, name := range candidates {
		if snap.HasFile(name) {
			found = append(found, name)
		}
	}

	if len(found) == 0 {
		return assess.Finding{
			Status:      assess.StatusFail,
			Score:       0,
			Evidence:    []string{"no agent or contributor instruction files found"},
			Remediation: "Add an AGENTS.md (or CONTRIBUTING.md) documenting build, test, and style conventions.",
		}, nil
	}

	score := proportionalScore(float64(len(found)), 2)
	return assess.Finding{
		Status:   statusFor(score),
		Score:    score,
		Evidence: []string{"found: " + strings.Join(found, ", ")},
	}, nil
}

package checks

import (
	"context"
	"fmt"
	"strings"

	"github.com/repocert/repocert/pkg/assess"
)

// TypeAnnotationsCheck measures optional-typing adoption in languages
// where annotations are opt-in. Statically typed languages are covered by
// their compilers and report this attribute as inapplicable.
type TypeAnnotationsCheck struct{}

func (c *TypeAnnotationsCheck) Attribute() assess.Attribute {
	return assess.Attribute{
		ID:            "type_annotations",
		Name:          "Type Annotations",
		Category:      "Code Quality",
		Tier:          3,
		DefaultWeight: 0.06,
		Description:   "Gradual typing adopted where the language makes it optional",
	}
}

func (c *TypeAnnotationsCheck) Applicable(snap assess.Snapshot) bool {
	return hasLanguage(snap, "python", "javascript", "typescript")
}

const typeSampleLimit = 40

func (c *TypeAnnotationsCheck) Evaluate(ctx context.Context, snap assess.Snapshot) (assess.Finding, error) {
	if hasLanguage(snap, "typescript") && !hasLanguage(snap, "python") {
		// TypeScript sources are annotated by construction; grade the
		// JS/TS split instead.
		ts := len(filesWithExt(snap, ".ts", ".tsx"))
		js := len(filesWithExt(snap, ".js", ".jsx"))
		share := float64(ts) / float64(maxInt(ts+js, 1))
		score := proportionalScore(share, 0.8)
		return assess.Finding{
			Status: statusFor(score),
			Score:  score,
			Evidence: []string{
				fmt.Sprintf("%d TypeScript / %d JavaScript files (%.0f%% typed)", ts, js, share*100),
			},
		}, nil
	}

	var sampled, annotated int
	for _, f := range filesWithExt(snap, ".py") {
		if isTestFile(f) {
			continue
		}
		if sampled >= typeSampleLimit {
			break
		}
		data, err := snap.ReadFile(f)
		if err != nil {
			continue
		}
		sampled++
		if pythonAnnotated(string(data)) {
			annotated++
		}
	}

	if sampled == 0 {
		return assess.Finding{
			Status:   assess.StatusFail,
			Score:    0,
			Evidence: []string{"no Python source files to sample"},
		}, nil
	}

	coverage := float64(annotated) / float64(sampled)
	score := proportionalScore(coverage, 0.7)
	f := assess.Finding{
		Status: statusFor(score),
		Score:  score,
		Evidence: []string{
			fmt.Sprintf("%d/%d sampled Python files use type annotations", annotated, sampled),
		},
	}
	if f.Status != assess.StatusPass {
		f.Remediation = "Annotate function signatures; run a type checker in CI to keep coverage from regressing."
	}
	return f, nil
}

// pythonAnnotated reports whether a file's function definitions carry
// return or parameter annotations.
func pythonAnnotated(content string) bool {
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "def ") && !strings.HasPrefix(trimmed, "async def ") {
			continue
		}
		if strings.Contains(trimmed, "->") || strings.Contains(trimmed, ": ") {
			return true
		}
	}
	return false
}

// ContainerSetupCheck looks for reproducible execution environments.
type ContainerSetupCheck struct{}

func (c *ContainerSetupCheck) Attribute() assess.Attribute {
	return assess.Attribute{
		ID:            "container_setup",
		Name:          "Container Setup",
		Category:      "Operations",
		Tier:          4,
		DefaultWeight: 0.03,
		Description:   "Container or devcontainer definitions for reproducible environments",
	}
}

func (c *ContainerSetupCheck) Applicable(snap assess.Snapshot) bool { return true }

func (c *ContainerSetupCheck) Evaluate(ctx context.Context, snap assess.Snapshot) (assess.Finding, error) {
	var found []string
	if name, ok := firstExisting(snap, "Dockerfile", "Containerfile", "docker/Dockerfile"); ok {
		found = append(found, name)
	}
	if name, ok := firstExisting(snap, "docker-compose.yml", "docker-compose.yaml", "compose.yml", "compose.yaml"); ok {
		found = append(found, name)
	}
	if name, ok := firstExisting(snap, ".devcontainer/devcontainer.json", ".devcontainer.json"); ok {
		found = append(found, name)
	}

	if len(found) == 0 {
		return assess.Finding{
			Status:      assess.StatusFail,
			Score:       0,
			Evidence:    []string{"no container or devcontainer definitions"},
			Remediation: "Add a Dockerfile or devcontainer so the environment is reproducible.",
		}, nil
	}

	score := proportionalScore(float64(len(found)), 2)
	return assess.Finding{
		Status:   statusFor(score),
		Score:    score,
		Evidence: []string{"found: " + strings.Join(found, ", ")},
	}, nil
}

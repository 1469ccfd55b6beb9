// Package bootstrap writes starter files for attributes a repository is
// missing. It never overwrites anything the repository already has.
package bootstrap

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed templates
var templatesFS embed.FS

// starter pairs an attribute with the files that satisfy it.
type starter struct {
	attributeID string
	files       []starterFile
}

type starterFile struct {
	path     string // destination, relative to the repository root
	template string // source under templates/
}

var starters = []starter{
	{"agent_instructions", []starterFile{
		{"AGENTS.md", "AGENTS.md"},
	}},
	{"ci_workflows", []starterFile{
		{".github/workflows/ci.yml", "ci.yml"},
	}},
	{"gitignore_hygiene", []starterFile{
		{".gitignore", "gitignore"},
	}},
	{"security_policy", []starterFile{
		{"SECURITY.md", "SECURITY.md"},
		{".github/dependabot.yml", "dependabot.yml"},
	}},
	{"editorconfig", []starterFile{
		{".editorconfig", "editorconfig"},
	}},
}

// Action describes one file written by Apply.
type Action struct {
	AttributeID string
	Path        string
}

// Supported reports whether an attribute has a starter template.
func Supported(attributeID string) bool {
	for _, s := range starters {
		if s.attributeID == attributeID {
			return true
		}
	}
	return false
}

// SupportedAttributes lists the attributes Apply can bootstrap, in order.
func SupportedAttributes() []string {
	out := make([]string, len(starters))
	for i, s := range starters {
		out[i] = s.attributeID
	}
	return out
}

// Apply writes starter files for the requested attributes under root,
// skipping any destination that already exists. It returns one Action per
// file written. Unknown attribute IDs are an error; an empty request
// bootstraps every supported attribute.
func Apply(root string, attributeIDs []string) ([]Action, error) {
	selected := starters
	if len(attributeIDs) > 0 {
		selected = nil
		for _, id := range attributeIDs {
			found := false
			for _, s := range starters {
				if s.attributeID == id {
					selected = append(selected, s)
					found = true
					break
				}
			}
			if !found {
				return nil, fmt.Errorf("no starter template for attribute %q", id)
			}
		}
	}

	var actions []Action
	for _, s := range selected {
		for _, f := range s.files {
			dest := filepath.Join(root, filepath.FromSlash(f.path))
			if _, err := os.Stat(dest); err == nil {
				continue
			}

			data, err := templatesFS.ReadFile("templates/" + f.template)
			if err != nil {
				return actions, fmt.Errorf("read template %s: %w", f.template, err)
			}
			if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
				return actions, fmt.Errorf("create directory for %s: %w", f.path, err)
			}
			if err := os.WriteFile(dest, data, 0o644); err != nil {
				return actions, fmt.Errorf("write %s: %w", f.path, err)
			}
			actions = append(actions, Action{AttributeID: s.attributeID, Path: f.path})
		}
	}
	return actions, nil
}

// Package surface defines output rendering interfaces for assessment results.
// Implementations handle different output targets: terminal, GitHub Check Run,
// JSON, badge assets.
package surface

import (
	"fmt"
	"io"

	"github.com/repocert/repocert/pkg/assess"
)

// Renderer produces formatted output from an Assessment.
type Renderer interface {
	// Render writes the formatted assessment to the writer.
	Render(w io.Writer, a *assess.Assessment) error
}

// CheckRunData holds the data needed to create a GitHub Check Run.
type CheckRunData struct {
	Title      string `json:"title"`
	Summary    string `json:"summary"`    // Markdown body
	Conclusion string `json:"conclusion"` // success, neutral, failure
}

// checkSchema refuses assessments written by an incompatible schema.
func checkSchema(a *assess.Assessment) error {
	if a.SchemaVersion != assess.SchemaVersion {
		return fmt.Errorf("assessment schema %q, renderer expects %q: %w",
			a.SchemaVersion, assess.SchemaVersion, assess.ErrSchemaMismatch)
	}
	return nil
}

// ForFormat returns the renderer registered for a format name.
func ForFormat(format string) (Renderer, error) {
	switch format {
	case "terminal", "":
		return &TerminalRenderer{}, nil
	case "json":
		return &JSONRenderer{}, nil
	case "checkrun":
		return &CheckRunRenderer{}, nil
	case "badge":
		return &BadgeRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

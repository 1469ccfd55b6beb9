package surface

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/repocert/repocert/pkg/assess"
)

// TerminalRenderer renders an Assessment as colored terminal output.
type TerminalRenderer struct{}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

func certColor(cert assess.CertTier) string {
	if noColor() {
		return ""
	}
	switch cert {
	case assess.CertPlatinum, assess.CertGold:
		return colorGreen
	case assess.CertSilver:
		return colorCyan
	case assess.CertBronze:
		return colorYellow
	default:
		return colorRed
	}
}

func statusColor(s assess.Status) string {
	if noColor() {
		return ""
	}
	switch s {
	case assess.StatusPass:
		return colorGreen
	case assess.StatusPartial:
		return colorYellow
	case assess.StatusSkipped:
		return colorDim
	default:
		return colorRed
	}
}

func noColor() bool {
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}

func bold(s string) string {
	if noColor() {
		return s
	}
	return colorBold + s + colorReset
}

func dim(s string) string {
	if noColor() {
		return s
	}
	return colorDim + s + colorReset
}

func colored(s, color string) string {
	if noColor() || color == "" {
		return s
	}
	return color + s + colorReset
}

func (r *TerminalRenderer) Render(w io.Writer, a *assess.Assessment) error {
	if err := checkSchema(a); err != nil {
		return err
	}

	cc := certColor(a.Certification)

	// Header
	fmt.Fprintf(w, "%s\n\n",
		bold(fmt.Sprintf("repocert: %s — %s — Score %.1f",
			a.Repository.Name, colored(strings.ToUpper(string(a.Certification)), cc), a.OverallScore)))

	// Tier breakdown
	if len(a.TierScores) > 0 {
		fmt.Fprintln(w, "Tiers:")
		for _, ts := range a.TierScores {
			fmt.Fprintf(w, "  Tier %d: %.1f %s\n",
				ts.Tier, ts.Score, dim(fmt.Sprintf("(%.0f%% of weight)", ts.WeightShare*100)))
		}
		fmt.Fprintln(w)
	}

	// Findings
	if len(a.Findings) == 0 {
		fmt.Fprintln(w, "No findings.")
		fmt.Fprintln(w)
		return nil
	}

	fmt.Fprintln(w, "Findings:")
	for _, f := range a.Findings {
		sc := statusColor(f.Status)
		fmt.Fprintf(w, "  [%s] %s %s\n",
			colored(strings.ToUpper(string(f.Status)), sc), bold(f.AttributeID),
			dim(fmt.Sprintf("%.0f/100", f.Score)))

		// Show up to 3 evidence lines
		maxEvidence := 3
		if len(f.Evidence) < maxEvidence {
			maxEvidence = len(f.Evidence)
		}
		for i := 0; i < maxEvidence; i++ {
			fmt.Fprintf(w, "         %s\n", dim(f.Evidence[i]))
		}
		if len(f.Evidence) > 3 {
			fmt.Fprintf(w, "         %s\n", dim(fmt.Sprintf("... and %d more", len(f.Evidence)-3)))
		}
		if f.Remediation != "" && f.Status != assess.StatusPass {
			for _, line := range wrapText(f.Remediation, 70) {
				fmt.Fprintf(w, "         %s\n", dim("fix: "+line))
			}
		}
	}
	fmt.Fprintln(w)

	return nil
}

// wrapText wraps a string at the given width, returning lines.
func wrapText(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]

	for _, word := range words[1:] {
		if len(current)+1+len(word) > width {
			lines = append(lines, current)
			current = word
		} else {
			current += " " + word
		}
	}
	lines = append(lines, current)
	return lines
}

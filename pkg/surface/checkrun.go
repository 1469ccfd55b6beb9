package surface

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/repocert/repocert/pkg/assess"
)

// CheckRunRenderer produces GitHub Check Run data from an Assessment.
type CheckRunRenderer struct{}

func (r *CheckRunRenderer) Render(w io.Writer, a *assess.Assessment) error {
	if err := checkSchema(a); err != nil {
		return err
	}
	data := r.BuildCheckRunData(a)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// BuildCheckRunData creates the CheckRunData struct from an Assessment.
func (r *CheckRunRenderer) BuildCheckRunData(a *assess.Assessment) CheckRunData {
	conclusion := certToConclusion(a.Certification)
	title := fmt.Sprintf("repocert: %s — Score %.1f", a.Certification, a.OverallScore)
	summary := buildMarkdownSummary(a)

	return CheckRunData{
		Title:      title,
		Summary:    summary,
		Conclusion: conclusion,
	}
}

func certToConclusion(cert assess.CertTier) string {
	switch cert {
	case assess.CertPlatinum, assess.CertGold, assess.CertSilver:
		return "success"
	case assess.CertBronze:
		return "neutral"
	default:
		return "failure"
	}
}

func buildMarkdownSummary(a *assess.Assessment) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("## repocert: %s — Score %.1f\n\n", a.Certification, a.OverallScore))

	// Tier breakdown
	if len(a.TierScores) > 0 {
		sb.WriteString("### Tier Scores\n\n")
		sb.WriteString("| Tier | Score | Weight Share |\n|------|-------|-------------|\n")
		for _, ts := range a.TierScores {
			sb.WriteString(fmt.Sprintf("| %d | %.1f | %.0f%% |\n", ts.Tier, ts.Score, ts.WeightShare*100))
		}
		sb.WriteString("\n")
	}

	// Non-passing findings first, capped at 8
	sb.WriteString("### Findings\n\n")
	count := 0
	shown := map[string]bool{}
	for _, pass := range []bool{false, true} {
		for _, f := range a.Findings {
			if (f.Status == assess.StatusPass) != pass || shown[f.AttributeID] {
				continue
			}
			if count >= 8 {
				sb.WriteString(fmt.Sprintf("_... and %d more findings_\n", len(a.Findings)-count))
				return sb.String()
			}
			sb.WriteString(fmt.Sprintf("- %s **%s** (%.0f/100)\n", statusIcon(f.Status), f.AttributeID, f.Score))
			maxEv := 2
			if len(f.Evidence) < maxEv {
				maxEv = len(f.Evidence)
			}
			for i := 0; i < maxEv; i++ {
				sb.WriteString(fmt.Sprintf("  - %s\n", f.Evidence[i]))
			}
			if f.Remediation != "" && f.Status != assess.StatusPass {
				sb.WriteString(fmt.Sprintf("  - _%s_\n", f.Remediation))
			}
			shown[f.AttributeID] = true
			count++
		}
	}

	return sb.String()
}

func statusIcon(s assess.Status) string {
	switch s {
	case assess.StatusPass:
		return ":white_check_mark:"
	case assess.StatusPartial:
		return ":orange_circle:"
	case assess.StatusSkipped:
		return ":white_circle:"
	case assess.StatusError:
		return ":warning:"
	default:
		return ":red_circle:"
	}
}

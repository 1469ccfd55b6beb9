package surface

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/repocert/repocert/pkg/assess"
)

// certColors maps certification tiers to badge hex colors.
var certColors = map[assess.CertTier]string{
	assess.CertPlatinum:         "9333ea",
	assess.CertGold:             "eab308",
	assess.CertSilver:           "94a3b8",
	assess.CertBronze:           "92400e",
	assess.CertNeedsImprovement: "dc2626",
}

// BadgeRenderer writes a standalone SVG badge for an Assessment.
type BadgeRenderer struct {
	// Width of the rendered badge in pixels. Zero means the default.
	Width int
}

const defaultBadgeWidth = 200

func (r *BadgeRenderer) Render(w io.Writer, a *assess.Assessment) error {
	if err := checkSchema(a); err != nil {
		return err
	}

	width := r.Width
	if width <= 0 {
		width = defaultBadgeWidth
	}
	color := certColors[a.Certification]
	if color == "" {
		color = certColors[assess.CertNeedsImprovement]
	}

	_, err := fmt.Fprintf(w, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="28">
  <defs>
    <linearGradient id="gradient" x1="0%%" y1="0%%" x2="0%%" y2="100%%">
      <stop offset="0%%" style="stop-color:#%s;stop-opacity:1" />
      <stop offset="100%%" style="stop-color:#%s;stop-opacity:0.9" />
    </linearGradient>
  </defs>
  <rect width="%d" height="28" rx="4" fill="url(#gradient)"/>
  <text x="%d" y="18" font-family="Arial, sans-serif" font-size="12"
        font-weight="bold" fill="white" text-anchor="middle">
    repocert: %.1f (%s)
  </text>
</svg>
`, width, color, color, width, width/2, a.OverallScore, certLabel(a.Certification))
	return err
}

// ShieldsURL returns a shields.io static badge URL for an assessment.
func ShieldsURL(a *assess.Assessment, style string) string {
	if style == "" {
		style = "flat-square"
	}
	color := certColors[a.Certification]
	if color == "" {
		color = certColors[assess.CertNeedsImprovement]
	}
	message := fmt.Sprintf("%.1f (%s)", a.OverallScore, certLabel(a.Certification))
	return fmt.Sprintf("https://img.shields.io/badge/repocert-%s-%s?style=%s",
		url.PathEscape(message), color, style)
}

// MarkdownBadge returns a Markdown image snippet, optionally linked to a
// report URL.
func MarkdownBadge(a *assess.Assessment, reportURL string) string {
	badge := fmt.Sprintf("![repocert](%s)", ShieldsURL(a, ""))
	if reportURL != "" {
		return fmt.Sprintf("[%s](%s)", badge, reportURL)
	}
	return badge
}

// certLabel renders a tier name for display ("Needs Improvement").
func certLabel(cert assess.CertTier) string {
	parts := strings.Split(string(cert), "_")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}

package surface_test

import (
	"strings"
	"testing"

	"github.com/repocert/repocert/pkg/assess"
	"github.com/repocert/repocert/pkg/surface"
)

func TestBuildCheckRunData(t *testing.T) {
	r := &surface.CheckRunRenderer{}
	data := r.BuildCheckRunData(sampleAssessment())

	if data.Conclusion != "success" {
		t.Errorf("silver conclusion = %q, want success", data.Conclusion)
	}
	if !strings.Contains(data.Title, "silver") || !strings.Contains(data.Title, "68.5") {
		t.Errorf("unexpected title %q", data.Title)
	}
	if !strings.Contains(data.Summary, "### Tier Scores") {
		t.Error("expected tier score table in summary")
	}
	// Non-passing findings are listed before passing ones.
	failIdx := strings.Index(data.Summary, "tests_present")
	passIdx := strings.Index(data.Summary, "readme")
	if failIdx < 0 || passIdx < 0 || failIdx > passIdx {
		t.Errorf("failing finding should precede passing one in summary:\n%s", data.Summary)
	}
}

func TestCheckRunConclusions(t *testing.T) {
	tests := []struct {
		cert assess.CertTier
		want string
	}{
		{assess.CertPlatinum, "success"},
		{assess.CertGold, "success"},
		{assess.CertSilver, "success"},
		{assess.CertBronze, "neutral"},
		{assess.CertNeedsImprovement, "failure"},
	}

	r := &surface.CheckRunRenderer{}
	for _, tc := range tests {
		a := sampleAssessment()
		a.Certification = tc.cert
		if got := r.BuildCheckRunData(a).Conclusion; got != tc.want {
			t.Errorf("%s conclusion = %q, want %q", tc.cert, got, tc.want)
		}
	}
}

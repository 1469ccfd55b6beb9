package assess_test

import (
	"context"
	"testing"

	"github.com/repocert/repocert/pkg/assess"
)

func testRegistry(t *testing.T) *assess.Registry {
	t.Helper()
	reg, err := assess.NewRegistry(
		staticEvaluator("docs", 1, 0.5, 100),
		staticEvaluator("tests", 1, 0.3, 0),
		staticEvaluator("types", 2, 0.15, 100),
		staticEvaluator("commits", 3, 0.05, 100),
	)
	if err != nil {
		t.Fatalf("NewRegistry() error: %v", err)
	}
	return reg
}

func TestPipelineRun(t *testing.T) {
	p := assess.NewPipeline(testRegistry(t), assess.Options{})
	if p.State() != assess.StateConfigured {
		t.Errorf("State() = %s, want configured", p.State())
	}

	a, err := p.Run(context.Background(), snap())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if p.State() != assess.StateScored {
		t.Errorf("State() = %s, want scored", p.State())
	}

	if a.SchemaVersion != assess.SchemaVersion {
		t.Errorf("SchemaVersion = %q, want %q", a.SchemaVersion, assess.SchemaVersion)
	}
	if a.ID == "" {
		t.Error("assessment has no id")
	}
	if a.Repository.Name != "acme/widget" {
		t.Errorf("Repository.Name = %q", a.Repository.Name)
	}
	if len(a.Findings) != 4 {
		t.Errorf("len(Findings) = %d, want 4", len(a.Findings))
	}
	if a.OverallScore != 70 {
		t.Errorf("OverallScore = %v, want 70", a.OverallScore)
	}
	if a.Certification != assess.CertSilver {
		t.Errorf("Certification = %s, want silver", a.Certification)
	}
}

func TestPipelineConfigErrorFailsBeforeRunning(t *testing.T) {
	called := false
	ev := &fakeEvaluator{
		attr:       assess.Attribute{ID: "only", Tier: 1, DefaultWeight: 1},
		applicable: true,
		evaluate: func(ctx context.Context, snap assess.Snapshot) (assess.Finding, error) {
			called = true
			return assess.Finding{Status: assess.StatusPass, Score: 100}, nil
		},
	}
	reg, err := assess.NewRegistry(ev)
	if err != nil {
		t.Fatalf("NewRegistry() error: %v", err)
	}

	p := assess.NewPipeline(reg, assess.Options{
		Weights: map[string]float64{"missing": 0.5},
	})
	_, err = p.Run(context.Background(), snap())
	if err == nil {
		t.Fatal("expected configuration error")
	}
	if !assess.IsConfigError(err) {
		t.Errorf("error type = %T, want ConfigError", err)
	}
	if p.State() != assess.StateFailed {
		t.Errorf("State() = %s, want failed", p.State())
	}
	if called {
		t.Error("evaluator ran despite configuration error")
	}
}

func TestPipelineExclusionSkipsEvaluator(t *testing.T) {
	p := assess.NewPipeline(testRegistry(t), assess.Options{
		Excluded: []string{"tests"},
	})

	a, err := p.Run(context.Background(), snap())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if len(a.Findings) != 3 {
		t.Fatalf("len(Findings) = %d, want 3 without excluded attribute", len(a.Findings))
	}
	if _, found := a.Findings.Find("tests"); found {
		t.Error("excluded attribute still has a finding")
	}
	if _, included := a.Weights.Weight("tests"); included {
		t.Error("excluded attribute still has a weight")
	}
	// Remaining scores are all 100, so the rescaled total is platinum.
	if a.Certification != assess.CertPlatinum {
		t.Errorf("Certification = %s, want platinum", a.Certification)
	}
}

func TestPipelineIdempotentScores(t *testing.T) {
	opts := assess.Options{
		Weights:  map[string]float64{"docs": 0.4},
		Excluded: []string{"commits"},
	}

	first, err := assess.NewPipeline(testRegistry(t), opts).Run(context.Background(), snap())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	for i := 0; i < 10; i++ {
		next, err := assess.NewPipeline(testRegistry(t), opts).Run(context.Background(), snap())
		if err != nil {
			t.Fatalf("Run() error: %v", err)
		}
		if next.OverallScore != first.OverallScore || next.Certification != first.Certification {
			t.Fatalf("run %d: score %v/%s, want %v/%s", i,
				next.OverallScore, next.Certification,
				first.OverallScore, first.Certification)
		}
	}
}

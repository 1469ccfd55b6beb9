package assess_test

import (
	"context"
	"strings"
	"testing"

	"github.com/repocert/repocert/pkg/assess"
)

// fakeSnapshot is a minimal in-memory Snapshot for engine tests.
type fakeSnapshot struct {
	name      string
	files     map[string]string
	languages []string
	commits   []string
}

func (s *fakeSnapshot) Name() string      { return s.name }
func (s *fakeSnapshot) Root() string      { return "/tmp/" + s.name }
func (s *fakeSnapshot) CommitSHA() string { return "deadbeef" }

func (s *fakeSnapshot) Files() []string {
	var out []string
	for f := range s.files {
		out = append(out, f)
	}
	return out
}

func (s *fakeSnapshot) HasFile(path string) bool {
	_, ok := s.files[path]
	return ok
}

func (s *fakeSnapshot) ReadFile(path string) ([]byte, error) {
	return []byte(s.files[path]), nil
}

func (s *fakeSnapshot) Languages() []string { return s.languages }
func (s *fakeSnapshot) Commits() []string   { return s.commits }

// fakeEvaluator is a configurable evaluator for engine tests.
type fakeEvaluator struct {
	attr       assess.Attribute
	applicable bool
	evaluate   func(ctx context.Context, snap assess.Snapshot) (assess.Finding, error)
}

func (e *fakeEvaluator) Attribute() assess.Attribute            { return e.attr }
func (e *fakeEvaluator) Applicable(snap assess.Snapshot) bool   { return e.applicable }
func (e *fakeEvaluator) Evaluate(ctx context.Context, snap assess.Snapshot) (assess.Finding, error) {
	return e.evaluate(ctx, snap)
}

func staticEvaluator(id string, tier assess.Tier, weight, score float64) *fakeEvaluator {
	return &fakeEvaluator{
		attr:       assess.Attribute{ID: id, Name: id, Tier: tier, DefaultWeight: weight},
		applicable: true,
		evaluate: func(ctx context.Context, snap assess.Snapshot) (assess.Finding, error) {
			return assess.Finding{Status: assess.StatusPass, Score: score}, nil
		},
	}
}

func TestNewRegistryValidation(t *testing.T) {
	tests := []struct {
		name       string
		evaluators []assess.Evaluator
		wantErr    string
	}{
		{
			name: "valid catalog",
			evaluators: []assess.Evaluator{
				staticEvaluator("a", 1, 0.5, 100),
				staticEvaluator("b", 4, 0.5, 100),
			},
		},
		{
			name: "duplicate id",
			evaluators: []assess.Evaluator{
				staticEvaluator("a", 1, 0.5, 100),
				staticEvaluator("a", 2, 0.5, 100),
			},
			wantErr: "duplicate attribute id",
		},
		{
			name: "negative default weight",
			evaluators: []assess.Evaluator{
				staticEvaluator("a", 1, -0.1, 100),
			},
			wantErr: "negative default weight",
		},
		{
			name: "tier out of range",
			evaluators: []assess.Evaluator{
				staticEvaluator("a", 5, 0.5, 100),
			},
			wantErr: "tier 5 outside 1-4",
		},
		{
			name: "tier zero",
			evaluators: []assess.Evaluator{
				staticEvaluator("a", 0, 0.5, 100),
			},
			wantErr: "tier 0 outside 1-4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := assess.NewRegistry(tt.evaluators...)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("NewRegistry() error: %v", err)
				}
				if reg.Len() != len(tt.evaluators) {
					t.Errorf("Len() = %d, want %d", reg.Len(), len(tt.evaluators))
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err, tt.wantErr)
			}
			if !assess.IsConfigError(err) {
				t.Errorf("expected a ConfigError, got %T", err)
			}
		})
	}
}

func TestRegistryPreservesInsertionOrder(t *testing.T) {
	reg, err := assess.NewRegistry(
		staticEvaluator("zulu", 1, 0.2, 100),
		staticEvaluator("alpha", 2, 0.3, 100),
		staticEvaluator("mike", 3, 0.5, 100),
	)
	if err != nil {
		t.Fatalf("NewRegistry() error: %v", err)
	}

	attrs := reg.Attributes()
	want := []string{"zulu", "alpha", "mike"}
	for i, id := range want {
		if attrs[i].ID != id {
			t.Errorf("Attributes()[%d].ID = %q, want %q", i, attrs[i].ID, id)
		}
	}
}

func TestRegistryEffectiveExcludes(t *testing.T) {
	reg, err := assess.NewRegistry(
		staticEvaluator("a", 1, 0.2, 100),
		staticEvaluator("b", 1, 0.3, 100),
		staticEvaluator("c", 1, 0.5, 100),
	)
	if err != nil {
		t.Fatalf("NewRegistry() error: %v", err)
	}

	effective := reg.Effective(map[string]bool{"b": true})
	if len(effective) != 2 {
		t.Fatalf("Effective() len = %d, want 2", len(effective))
	}
	if effective[0].Attribute().ID != "a" || effective[1].Attribute().ID != "c" {
		t.Errorf("Effective() order = [%s %s], want [a c]",
			effective[0].Attribute().ID, effective[1].Attribute().ID)
	}
}

package assess_test

import (
	"encoding/json"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/repocert/repocert/pkg/assess"
)

func testAttributes() []assess.Attribute {
	return []assess.Attribute{
		{ID: "docs", Tier: 1, DefaultWeight: 0.5},
		{ID: "tests", Tier: 1, DefaultWeight: 0.3},
		{ID: "types", Tier: 2, DefaultWeight: 0.15},
		{ID: "commits", Tier: 3, DefaultWeight: 0.05},
	}
}

func TestResolveWeightsDefaults(t *testing.T) {
	table, err := assess.ResolveWeights(testAttributes(), nil, nil)
	if err != nil {
		t.Fatalf("ResolveWeights() error: %v", err)
	}

	if got := table.Sum(); math.Abs(got-1.0) > assess.WeightSumTolerance {
		t.Errorf("Sum() = %v, want 1.0 within tolerance", got)
	}
	if w, _ := table.Weight("docs"); math.Abs(w-0.5) > assess.WeightSumTolerance {
		t.Errorf("Weight(docs) = %v, want 0.5", w)
	}
	if !reflect.DeepEqual(table.IDs(), []string{"docs", "tests", "types", "commits"}) {
		t.Errorf("IDs() = %v, want registry order", table.IDs())
	}
}

func TestResolveWeightsExclusionRescales(t *testing.T) {
	table, err := assess.ResolveWeights(testAttributes(), nil, []string{"tests"})
	if err != nil {
		t.Fatalf("ResolveWeights() error: %v", err)
	}

	if _, included := table.Weight("tests"); included {
		t.Error("excluded attribute still present in table")
	}
	if got := table.Sum(); math.Abs(got-1.0) > assess.WeightSumTolerance {
		t.Errorf("Sum() after exclusion = %v, want 1.0", got)
	}
	// Remaining [0.5 0.15 0.05] rescale to [0.7143 0.2143 0.0714].
	w, _ := table.Weight("docs")
	if math.Abs(w-0.5/0.7) > 1e-9 {
		t.Errorf("Weight(docs) = %v, want %v", w, 0.5/0.7)
	}
}

func TestResolveWeightsOverrides(t *testing.T) {
	table, err := assess.ResolveWeights(testAttributes(),
		map[string]float64{"docs": 0.2, "commits": 0}, nil)
	if err != nil {
		t.Fatalf("ResolveWeights() error: %v", err)
	}

	if got := table.Sum(); math.Abs(got-1.0) > assess.WeightSumTolerance {
		t.Errorf("Sum() = %v, want 1.0", got)
	}
	// Zero-weight-but-included is still in the table; absence means excluded.
	w, included := table.Weight("commits")
	if !included {
		t.Fatal("zero-weight override removed the attribute from the table")
	}
	if w != 0 {
		t.Errorf("Weight(commits) = %v, want 0", w)
	}
}

func TestResolveWeightsErrors(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]float64
		excluded  []string
		wantErr   string
	}{
		{
			name:      "override for unknown attribute",
			overrides: map[string]float64{"nope": 0.5},
			wantErr:   `"nope"`,
		},
		{
			name:      "override for excluded attribute",
			overrides: map[string]float64{"tests": 0.5},
			excluded:  []string{"tests"},
			wantErr:   "excluded attribute",
		},
		{
			name:      "negative override",
			overrides: map[string]float64{"docs": -1},
			wantErr:   "invalid weight override",
		},
		{
			name: "all weights zero",
			overrides: map[string]float64{
				"docs": 0, "tests": 0, "types": 0, "commits": 0,
			},
			wantErr: "sums to zero",
		},
		{
			name:     "everything excluded",
			excluded: []string{"docs", "tests", "types", "commits"},
			wantErr:  "nothing to assess",
		},
		{
			name:     "unknown exclusion",
			excluded: []string{"nope"},
			wantErr:  "not in the registry",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := assess.ResolveWeights(testAttributes(), tt.overrides, tt.excluded)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !assess.IsConfigError(err) {
				t.Errorf("expected ConfigError, got %T", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestResolveWeightsDeterministic(t *testing.T) {
	overrides := map[string]float64{"docs": 0.4, "types": 0.25}

	first, err := assess.ResolveWeights(testAttributes(), overrides, []string{"commits"})
	if err != nil {
		t.Fatalf("ResolveWeights() error: %v", err)
	}
	a, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	for i := 0; i < 20; i++ {
		table, err := assess.ResolveWeights(testAttributes(), overrides, []string{"commits"})
		if err != nil {
			t.Fatalf("ResolveWeights() error: %v", err)
		}
		b, err := json.Marshal(table)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(a) != string(b) {
			t.Fatalf("run %d produced different bytes:\n%s\n%s", i, a, b)
		}
	}
}

func TestWeightTableJSONRoundTrip(t *testing.T) {
	table, err := assess.ResolveWeights(testAttributes(), nil, []string{"types"})
	if err != nil {
		t.Fatalf("ResolveWeights() error: %v", err)
	}

	data, err := json.Marshal(table)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded assess.WeightTable
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !reflect.DeepEqual(decoded.IDs(), table.IDs()) {
		t.Errorf("round trip lost order: %v vs %v", decoded.IDs(), table.IDs())
	}
	for _, id := range table.IDs() {
		want, _ := table.Weight(id)
		got, ok := decoded.Weight(id)
		if !ok || got != want {
			t.Errorf("Weight(%s) = %v (%v), want %v", id, got, ok, want)
		}
	}
}

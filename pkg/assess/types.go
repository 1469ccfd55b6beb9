// Package assess implements the repocert assessment engine. It runs a
// catalog of attribute evaluators against a repository snapshot, resolves
// configurable attribute weights, and aggregates findings into a single
// certified score.
package assess

import (
	"context"
	"time"
)

// SchemaVersion identifies the Assessment document layout. Renderers and
// ingest endpoints must refuse documents with a version they do not know.
const SchemaVersion = "1.0.0"

// Status classifies the outcome of one evaluator run.
type Status string

const (
	StatusPass    Status = "pass"
	StatusFail    Status = "fail"
	StatusPartial Status = "partial"
	StatusSkipped Status = "skipped"
	StatusError   Status = "error"
)

// Tier groups attributes by importance: 1 = essential, 4 = advanced.
type Tier int

// Snapshot is the read-only repository view evaluators inspect.
// Implementations must be safe for concurrent readers and must not change
// for the duration of a run.
type Snapshot interface {
	// Name is the repository identity, e.g. "owner/repo" or a directory name.
	Name() string
	// Root is the local filesystem path of the snapshot, if any.
	Root() string
	// CommitSHA is the checked-out commit, or "" when unknown.
	CommitSHA() string
	// Files lists repository-relative paths in lexical order.
	Files() []string
	// HasFile reports whether the exact relative path exists.
	HasFile(path string) bool
	// ReadFile returns the (possibly truncated) content of a file.
	ReadFile(path string) ([]byte, error)
	// Languages lists detected languages, most prevalent first.
	Languages() []string
	// Commits returns recent commit subjects, newest first. Empty when the
	// snapshot was collected without git history.
	Commits() []string
}

// Attribute is the static definition of one quality dimension.
type Attribute struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	Tier          Tier    `json:"tier"`
	DefaultWeight float64 `json:"default_weight"`
	Description   string  `json:"description,omitempty"`
}

// Evaluator inspects a repository snapshot and produces a Finding for one
// attribute. Implementations are stateless strategy objects; the engine
// treats them as opaque.
type Evaluator interface {
	// Attribute returns the static metadata for the attribute this
	// evaluator measures.
	Attribute() Attribute
	// Applicable reports whether the attribute makes sense for the given
	// repository. Inapplicable attributes keep their weight but score 0.
	Applicable(snap Snapshot) bool
	// Evaluate measures the attribute. The engine clamps out-of-range
	// scores and converts errors and timeouts into error findings.
	Evaluate(ctx context.Context, snap Snapshot) (Finding, error)
}

// Finding is the result of one evaluator run. Created once per attribute
// per run and never mutated afterwards.
type Finding struct {
	AttributeID string   `json:"attribute_id"`
	Status      Status   `json:"status"`
	Score       float64  `json:"score"` // 0-100
	Evidence    []string `json:"evidence,omitempty"`
	Remediation string   `json:"remediation,omitempty"`
	DurationMS  int64    `json:"duration_ms"`
}

// ResultSet is the registry-ordered collection of findings for one run.
// Invariant: exactly one Finding per effective attribute.
type ResultSet []Finding

// Find returns the finding for an attribute id.
func (rs ResultSet) Find(attributeID string) (Finding, bool) {
	for _, f := range rs {
		if f.AttributeID == attributeID {
			return f, true
		}
	}
	return Finding{}, false
}

// Repository identifies the assessed repository.
type Repository struct {
	Name      string `json:"name"`
	Path      string `json:"path,omitempty"`
	CommitSHA string `json:"commit_sha,omitempty"`
}

// TierScore is the weighted subscore for one attribute tier.
type TierScore struct {
	Tier        Tier    `json:"tier"`
	Score       float64 `json:"score"`        // weighted average within the tier
	WeightShare float64 `json:"weight_share"` // the tier's share of total weight
}

// Assessment is the complete, immutable output of one assessment run.
type Assessment struct {
	ID            string       `json:"id"`
	SchemaVersion string       `json:"schema_version"`
	Repository    Repository   `json:"repository"`
	GeneratedAt   time.Time    `json:"generated_at"`
	OverallScore  float64      `json:"overall_score"`
	Certification CertTier     `json:"certification"`
	TierScores    []TierScore  `json:"tier_scores,omitempty"`
	Findings      ResultSet    `json:"findings"`
	Weights       *WeightTable `json:"weights"`
}

// CertTier is the certification level derived from the overall score.
type CertTier string

const (
	CertNeedsImprovement CertTier = "needs_improvement"
	CertBronze           CertTier = "bronze"
	CertSilver           CertTier = "silver"
	CertGold             CertTier = "gold"
	CertPlatinum         CertTier = "platinum"
)

// Certification thresholds, inclusive on the lower bound.
const (
	bronzeThreshold   = 40.0
	silverThreshold   = 60.0
	goldThreshold     = 75.0
	platinumThreshold = 90.0
)

// CertForScore maps an overall score to a certification tier.
func CertForScore(score float64) CertTier {
	switch {
	case score >= platinumThreshold:
		return CertPlatinum
	case score >= goldThreshold:
		return CertGold
	case score >= silverThreshold:
		return CertSilver
	case score >= bronzeThreshold:
		return CertBronze
	default:
		return CertNeedsImprovement
	}
}

// Rank orders certification tiers: needs_improvement < bronze < silver <
// gold < platinum. Unknown tiers rank below needs_improvement.
func (c CertTier) Rank() int {
	switch c {
	case CertNeedsImprovement:
		return 0
	case CertBronze:
		return 1
	case CertSilver:
		return 2
	case CertGold:
		return 3
	case CertPlatinum:
		return 4
	default:
		return -1
	}
}

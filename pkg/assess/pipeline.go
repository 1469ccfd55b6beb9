package assess

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RunState tracks the linear lifecycle of an assessment run. A run either
// completes with a full result set or does not start; there is no partial
// or resumable state.
type RunState string

const (
	StateConfigured RunState = "configured"
	StateRunning    RunState = "running"
	StateScored     RunState = "scored"
	StateFailed     RunState = "failed"
)

// Options configures one assessment run.
type Options struct {
	// Weights overrides default attribute weights by id.
	Weights map[string]float64
	// Excluded removes attributes from the run entirely: no finding, no
	// weight.
	Excluded []string
	// Concurrency bounds parallel evaluator execution.
	Concurrency int
	// Timeout is the per-evaluator wall-clock budget.
	Timeout time.Duration
}

// Pipeline wires the resolver, scanner and scorer into one run.
type Pipeline struct {
	registry *Registry
	opts     Options
	state    RunState
}

// NewPipeline creates a configured pipeline over an immutable registry.
func NewPipeline(registry *Registry, opts Options) *Pipeline {
	return &Pipeline{registry: registry, opts: opts, state: StateConfigured}
}

// State returns the pipeline's current lifecycle state.
func (p *Pipeline) State() RunState { return p.state }

// Run performs one complete assessment: resolve weights, scan, score.
// A configuration error fails the run before any evaluator executes;
// evaluator-level failures surface as ordinary findings, never as errors
// from Run.
func (p *Pipeline) Run(ctx context.Context, snap Snapshot) (*Assessment, error) {
	attrs := p.registry.Attributes()

	table, err := ResolveWeights(attrs, p.opts.Weights, p.opts.Excluded)
	if err != nil {
		p.state = StateFailed
		return nil, err
	}

	excluded := make(map[string]bool, len(p.opts.Excluded))
	for _, id := range p.opts.Excluded {
		excluded[id] = true
	}

	p.state = StateRunning
	scanner := &Scanner{Concurrency: p.opts.Concurrency, Timeout: p.opts.Timeout}
	results := scanner.Run(ctx, snap, p.registry.Effective(excluded))

	overall, cert := Score(results, table)
	p.state = StateScored

	return &Assessment{
		ID:            uuid.New().String(),
		SchemaVersion: SchemaVersion,
		Repository: Repository{
			Name:      snap.Name(),
			Path:      snap.Root(),
			CommitSHA: snap.CommitSHA(),
		},
		GeneratedAt:   time.Now().UTC(),
		OverallScore:  overall,
		Certification: cert,
		TierScores:    TierBreakdown(results, table, attrs),
		Findings:      results,
		Weights:       table,
	}, nil
}

package assess

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// Defaults for the scanner's resource bounds. Several evaluators shell out
// to external tooling, so parallelism is kept modest.
const (
	DefaultConcurrency = 4
	DefaultTimeout     = 30 * time.Second
)

// Scanner runs evaluators against a snapshot with per-evaluator fault
// isolation. One failing, panicking, or slow evaluator never aborts the run
// or touches any other evaluator's finding.
type Scanner struct {
	// Concurrency bounds the number of evaluators running in parallel.
	// Zero or negative means DefaultConcurrency.
	Concurrency int
	// Timeout is the wall-clock budget for a single evaluator. Zero or
	// negative means DefaultTimeout.
	Timeout time.Duration
}

// Run evaluates every effective attribute and returns a complete ResultSet
// in registry order, regardless of completion order or how many evaluators
// failed. It blocks until every dispatched evaluator has completed, failed,
// or timed out; there is no fail-fast mode.
func (s *Scanner) Run(ctx context.Context, snap Snapshot, evaluators []Evaluator) ResultSet {
	limit := s.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	findings := make([]Finding, len(evaluators))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, ev := range evaluators {
		i, ev := i, ev
		g.Go(func() error {
			findings[i] = s.runOne(ctx, snap, ev)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; failures become findings

	return ResultSet(findings)
}

type evalOutcome struct {
	finding Finding
	err     error
}

// runOne produces exactly one finding for one attribute: the evaluator's
// own (validated) finding, a synthetic skipped finding when the attribute
// is inapplicable, or a synthetic error finding on failure or timeout.
func (s *Scanner) runOne(ctx context.Context, snap Snapshot, ev Evaluator) Finding {
	attr := ev.Attribute()

	// Inapplicable is not excluded: the attribute keeps its weight share
	// and contributes a zero score.
	if !ev.Applicable(snap) {
		return Finding{
			AttributeID: attr.ID,
			Status:      StatusSkipped,
			Score:       0,
			Evidence:    []string{"not applicable to this repository"},
		}
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	evalCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	outcome := make(chan evalOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				outcome <- evalOutcome{err: fmt.Errorf("evaluator panic: %v", r)}
			}
		}()
		f, err := ev.Evaluate(evalCtx, snap)
		outcome <- evalOutcome{finding: f, err: err}
	}()

	select {
	case out := <-outcome:
		elapsed := time.Since(start)
		if out.err != nil {
			return errorFinding(attr.ID, elapsed, out.err.Error())
		}
		return validate(attr.ID, out.finding, elapsed)
	case <-evalCtx.Done():
		// The in-flight evaluator is left to finish on its own; its late
		// result is discarded through the buffered channel.
		elapsed := time.Since(start)
		if ctx.Err() != nil {
			return errorFinding(attr.ID, elapsed, "run cancelled: "+ctx.Err().Error())
		}
		return errorFinding(attr.ID, elapsed, fmt.Sprintf("evaluator timed out after %s", timeout))
	}
}

func errorFinding(attributeID string, elapsed time.Duration, evidence string) Finding {
	return Finding{
		AttributeID: attributeID,
		Status:      StatusError,
		Score:       0,
		Evidence:    []string{evidence},
		DurationMS:  elapsed.Milliseconds(),
	}
}

// validate normalizes an evaluator-produced finding: the attribute id and
// duration are always the scanner's, and out-of-range scores are clamped
// and flagged rather than failing the run.
func validate(attributeID string, f Finding, elapsed time.Duration) Finding {
	f.AttributeID = attributeID
	f.DurationMS = elapsed.Milliseconds()
	if f.Status == "" {
		f.Status = StatusError
		f.Evidence = append(f.Evidence, "evaluator returned a finding without a status")
	}
	if f.Score < 0 {
		f.Evidence = append(f.Evidence, fmt.Sprintf("score %g out of range, clamped to 0", f.Score))
		f.Score = 0
	} else if f.Score > 100 {
		f.Evidence = append(f.Evidence, fmt.Sprintf("score %g out of range, clamped to 100", f.Score))
		f.Score = 100
	}
	return f
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/repocert/repocert/pkg/assess"
	"github.com/repocert/repocert/pkg/checks"
	"github.com/repocert/repocert/pkg/config"
	"github.com/repocert/repocert/pkg/repo"
	"github.com/repocert/repocert/pkg/surface"
)

func newAssessCmd() *cobra.Command {
	var (
		repoPath    string
		outputFmt   string
		failBelow   float64
		excluded    []string
		weightArgs  []string
		concurrency int
		timeoutSecs int
		skipHistory bool
		noSave      bool
	)

	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Assess a repository and print its certification",
		Long:  `Collects a repository snapshot, runs every applicable evaluator, and renders the scored assessment.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssess(cmd.Context(), assessOpts{
				repoPath:    repoPath,
				outputFmt:   outputFmt,
				failBelow:   failBelow,
				excluded:    excluded,
				weightArgs:  weightArgs,
				concurrency: concurrency,
				timeoutSecs: timeoutSecs,
				skipHistory: skipHistory,
				noSave:      noSave,
			})
		},
	}

	cmd.Flags().StringVar(&repoPath, "repo-path", "", "Path to repository root (default: current directory)")
	cmd.Flags().StringVar(&outputFmt, "output", "terminal", "Output format: terminal, json, checkrun, badge")
	cmd.Flags().Float64Var(&failBelow, "fail-below", 0, "Exit non-zero when the overall score is below this value")
	cmd.Flags().StringSliceVar(&excluded, "exclude", nil, "Attribute IDs to exclude from the run")
	cmd.Flags().StringArrayVar(&weightArgs, "weight", nil, "Weight override as id=value (repeatable)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Parallel evaluator limit (default from config)")
	cmd.Flags().IntVar(&timeoutSecs, "timeout", 0, "Per-evaluator timeout in seconds (default from config)")
	cmd.Flags().BoolVar(&skipHistory, "skip-history", false, "Skip git history collection")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Do not archive the assessment locally")

	return cmd
}

type assessOpts struct {
	repoPath    string
	outputFmt   string
	failBelow   float64
	excluded    []string
	weightArgs  []string
	concurrency int
	timeoutSecs int
	skipHistory bool
	noSave      bool
}

func runAssess(ctx context.Context, opts assessOpts) error {
	root, err := resolveRepo(opts.repoPath)
	if err != nil {
		return err
	}
	cfg := loadConfig(root)

	weights, err := parseWeights(opts.weightArgs)
	if err != nil {
		return err
	}
	for id, w := range cfg.Assessment.Weights {
		if _, ok := weights[id]; !ok {
			weights[id] = w
		}
	}

	excluded := opts.excluded
	if len(excluded) == 0 {
		excluded = cfg.Assessment.ExcludedAttributes
	}

	concurrency := opts.concurrency
	if concurrency == 0 {
		concurrency = cfg.Assessment.Concurrency
	}
	timeoutSecs := opts.timeoutSecs
	if timeoutSecs == 0 {
		timeoutSecs = cfg.Assessment.EvaluatorTimeout
	}
	failBelow := opts.failBelow
	if failBelow == 0 {
		failBelow = cfg.Assessment.FailBelow
	}

	a, err := runAssessment(ctx, root, assess.Options{
		Weights:     weights,
		Excluded:    excluded,
		Concurrency: concurrency,
		Timeout:     time.Duration(timeoutSecs) * time.Second,
	}, opts.skipHistory || cfg.Assessment.SkipHistory)
	if err != nil {
		return err
	}

	if !opts.noSave {
		saveAssessment(root, a)
	}

	renderer, err := surface.ForFormat(opts.outputFmt)
	if err != nil {
		return err
	}
	if err := renderer.Render(os.Stdout, a); err != nil {
		return fmt.Errorf("rendering: %w", err)
	}

	if failBelow > 0 && a.OverallScore < failBelow {
		return fmt.Errorf("%w: %.1f < %.1f", errBelowGate, a.OverallScore, failBelow)
	}
	return nil
}

// runAssessment collects a snapshot and runs the full pipeline over the
// default evaluator catalog.
func runAssessment(ctx context.Context, root string, opts assess.Options, skipHistory bool) (*assess.Assessment, error) {
	registry, err := checks.NewRegistry()
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(os.Stderr, "Collecting snapshot of %s...\n", root)
	snap, err := repo.Collect(root, repo.CollectOptions{SkipHistory: skipHistory})
	if err != nil {
		return nil, fmt.Errorf("collecting snapshot: %w", err)
	}
	fmt.Fprintf(os.Stderr, "  %d files, languages: %s\n",
		len(snap.Files()), strings.Join(snap.Languages(), ", "))

	pipeline := assess.NewPipeline(registry, opts)
	a, err := pipeline.Run(ctx, snap)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// saveAssessment archives an assessment to the local cache, best-effort.
func saveAssessment(root string, a *assess.Assessment) {
	dir := config.AssessmentDir(root)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to create assessment dir: %v\n", err)
		return
	}

	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to marshal assessment: %v\n", err)
		return
	}

	name := a.GeneratedAt.UTC().Format("20060102T150405Z") + "_" + a.ID + ".json"
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to save assessment: %v\n", err)
		return
	}
	fmt.Fprintf(os.Stderr, "Assessment saved: %s\n", path)
}

// loadLatestAssessment returns the most recently archived assessment for a
// repository, or nil when none exists.
func loadLatestAssessment(root string) (*assess.Assessment, error) {
	dir := config.AssessmentDir(root)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading assessment dir: %w", err)
	}

	// Archive names sort chronologically.
	latest := ""
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		if e.Name() > latest {
			latest = e.Name()
		}
	}
	if latest == "" {
		return nil, nil
	}

	data, err := os.ReadFile(filepath.Join(dir, latest))
	if err != nil {
		return nil, fmt.Errorf("reading assessment: %w", err)
	}
	var a assess.Assessment
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parsing assessment %s: %w", latest, err)
	}
	return &a, nil
}

func resolveRepo(repoPath string) (string, error) {
	if repoPath != "" {
		abs, err := filepath.Abs(repoPath)
		if err != nil {
			return "", fmt.Errorf("resolving repo path: %w", err)
		}
		return abs, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	if root, err := config.FindRepoRoot(cwd); err == nil {
		return root, nil
	}
	return cwd, nil
}

func loadConfig(root string) *config.Config {
	cfgFile := config.FindConfigFile(root)
	if cfgFile == "" {
		return config.DefaultConfig()
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		return config.DefaultConfig()
	}
	return cfg
}

// parseWeights parses repeated id=value flags into an override map.
func parseWeights(args []string) (map[string]float64, error) {
	weights := make(map[string]float64, len(args))
	for _, arg := range args {
		id, raw, ok := strings.Cut(arg, "=")
		if !ok || id == "" {
			return nil, fmt.Errorf("invalid --weight %q, expected id=value", arg)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --weight %q: %w", arg, err)
		}
		weights[id] = v
	}
	return weights, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

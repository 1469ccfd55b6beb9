package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/repocert/repocert/pkg/assess"
	"github.com/repocert/repocert/pkg/surface"
)

func newBadgeCmd() *cobra.Command {
	var (
		repoPath string
		outPath  string
		style    string
		markdown bool
		fresh    bool
	)

	cmd := &cobra.Command{
		Use:   "badge",
		Short: "Render a certification badge",
		Long:  `Renders an SVG badge, shields.io URL, or Markdown snippet from the most recent assessment.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBadge(cmd.Context(), badgeOpts{
				repoPath: repoPath,
				outPath:  outPath,
				style:    style,
				markdown: markdown,
				fresh:    fresh,
			})
		},
	}

	cmd.Flags().StringVar(&repoPath, "repo-path", "", "Path to repository root (default: current directory)")
	cmd.Flags().StringVar(&outPath, "out", "", "Write SVG to this path instead of stdout")
	cmd.Flags().StringVar(&style, "style", "", "Print a shields.io URL with this style instead of SVG")
	cmd.Flags().BoolVar(&markdown, "markdown", false, "Print a Markdown badge snippet instead of SVG")
	cmd.Flags().BoolVar(&fresh, "fresh", false, "Run a new assessment instead of using the archive")

	return cmd
}

type badgeOpts struct {
	repoPath string
	outPath  string
	style    string
	markdown bool
	fresh    bool
}

func runBadge(ctx context.Context, opts badgeOpts) error {
	root, err := resolveRepo(opts.repoPath)
	if err != nil {
		return err
	}

	a, err := assessmentFor(ctx, root, opts.fresh)
	if err != nil {
		return err
	}

	if opts.markdown {
		fmt.Println(surface.MarkdownBadge(a, ""))
		return nil
	}
	if opts.style != "" {
		fmt.Println(surface.ShieldsURL(a, opts.style))
		return nil
	}

	out := os.Stdout
	if opts.outPath != "" {
		f, err := os.Create(opts.outPath)
		if err != nil {
			return fmt.Errorf("creating badge file: %w", err)
		}
		defer f.Close()
		out = f
	}

	renderer := &surface.BadgeRenderer{}
	if err := renderer.Render(out, a); err != nil {
		return fmt.Errorf("rendering badge: %w", err)
	}
	if opts.outPath != "" {
		fmt.Fprintf(os.Stderr, "Badge saved: %s\n", opts.outPath)
	}
	return nil
}

// assessmentFor returns the archived assessment for a repository, running a
// fresh one when requested or when nothing is archived yet.
func assessmentFor(ctx context.Context, root string, fresh bool) (*assess.Assessment, error) {
	if !fresh {
		a, err := loadLatestAssessment(root)
		if err != nil {
			return nil, err
		}
		if a != nil {
			return a, nil
		}
		fmt.Fprintln(os.Stderr, "No archived assessment found, running a new one.")
	}

	cfg := loadConfig(root)
	a, err := runAssessment(ctx, root, assess.Options{
		Weights:     cfg.Assessment.Weights,
		Excluded:    cfg.Assessment.ExcludedAttributes,
		Concurrency: cfg.Assessment.Concurrency,
		Timeout:     time.Duration(cfg.Assessment.EvaluatorTimeout) * time.Second,
	}, cfg.Assessment.SkipHistory)
	if err != nil {
		return nil, err
	}
	saveAssessment(root, a)
	return a, nil
}

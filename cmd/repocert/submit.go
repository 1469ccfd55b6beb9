package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newSubmitCmd() *cobra.Command {
	var (
		repoPath   string
		serviceURL string
		token      string
		fresh      bool
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Upload an assessment to a hosted repocert service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(cmd.Context(), submitOpts{
				repoPath:   repoPath,
				serviceURL: serviceURL,
				token:      token,
				fresh:      fresh,
			})
		},
	}

	cmd.Flags().StringVar(&repoPath, "repo-path", "", "Path to repository root (default: current directory)")
	cmd.Flags().StringVar(&serviceURL, "url", "", "Service base URL (default from config)")
	cmd.Flags().StringVar(&token, "token", "", "Bearer token (default from config or REPOCERT_TOKEN)")
	cmd.Flags().BoolVar(&fresh, "fresh", false, "Run a new assessment instead of using the archive")

	return cmd
}

type submitOpts struct {
	repoPath   string
	serviceURL string
	token      string
	fresh      bool
}

func runSubmit(ctx context.Context, opts submitOpts) error {
	root, err := resolveRepo(opts.repoPath)
	if err != nil {
		return err
	}
	cfg := loadConfig(root)

	serviceURL := firstNonEmpty(opts.serviceURL, cfg.Service.URL)
	if serviceURL == "" {
		return fmt.Errorf("no service URL; pass --url or set service.url in .repocert/config.yaml")
	}
	token := firstNonEmpty(opts.token, cfg.Service.Token, os.Getenv("REPOCERT_TOKEN"))

	a, err := assessmentFor(ctx, root, opts.fresh)
	if err != nil {
		return err
	}

	body, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encoding assessment: %w", err)
	}

	endpoint := strings.TrimRight(serviceURL, "/") + "/api/v1/assessments"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("submitting assessment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("service rejected assessment: %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	fmt.Fprintf(os.Stderr, "Submitted assessment %s (%s, %.1f) to %s\n",
		a.ID, a.Certification, a.OverallScore, endpoint)
	return nil
}

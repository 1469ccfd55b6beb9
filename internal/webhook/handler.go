package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/repocert/repocert/internal/history"
	"github.com/repocert/repocert/internal/tenant"
	"github.com/repocert/repocert/pkg/surface"
)

// CheckRunPublisher posts certification results to GitHub. Satisfied by
// internal/surface.GitHubPublisher.
type CheckRunPublisher interface {
	PublishCheckRun(ctx context.Context, installationID int64, owner, repo, headSHA string, data surface.CheckRunData) error
	PublishPRComment(ctx context.Context, installationID int64, owner, repo string, prNumber int, markdown string) error
	PublishCommitStatus(ctx context.Context, installationID int64, owner, repo, sha, state, description string) error
}

// Handler processes incoming GitHub webhook events.
type Handler struct {
	webhookSecret []byte
	tenants       *tenant.Service
	assessments   *history.Service
	publisher     CheckRunPublisher
}

// NewHandler creates a new webhook Handler. publisher may be nil when no
// GitHub App credentials are configured; check run publishing is then skipped.
func NewHandler(webhookSecret []byte, tenants *tenant.Service, assessments *history.Service, publisher CheckRunPublisher) *Handler {
	return &Handler{
		webhookSecret: webhookSecret,
		tenants:       tenants,
		assessments:   assessments,
		publisher:     publisher,
	}
}

// ServeHTTP handles incoming webhook requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 10<<20)) // 10 MB limit
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	signature := r.Header.Get("X-Hub-Signature-256")
	if err := VerifySignature(body, signature, h.webhookSecret); err != nil {
		log.Printf("webhook signature verification failed: %v", err)
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	eventType := r.Header.Get("X-GitHub-Event")
	if eventType == "" {
		http.Error(w, "missing X-GitHub-Event header", http.StatusBadRequest)
		return
	}

	event, err := ParseEvent(eventType, body)
	if err != nil {
		log.Printf("webhook parse error for %s: %v", eventType, err)
		http.Error(w, "unsupported event", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	switch e := event.(type) {
	case *InstallationEvent:
		if err := h.handleInstallation(ctx, e); err != nil {
			log.Printf("handle installation event: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

	case *InstallationRepositoriesEvent:
		if err := h.handleInstallationRepositories(ctx, e); err != nil {
			log.Printf("handle installation_repositories event: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

	case *PullRequestEvent:
		if err := h.handlePullRequest(ctx, e); err != nil {
			log.Printf("handle pull_request event: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

	case *PushEvent:
		if err := h.handlePush(ctx, e); err != nil {
			log.Printf("handle push event: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
	}

	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "accepted"})
}

func (h *Handler) handleInstallation(ctx context.Context, e *InstallationEvent) error {
	switch e.Action {
	case "created":
		_, err := h.tenants.CreateTenant(ctx, e.Installation.Account.Login, e.Installation.ID)
		if err != nil {
			return fmt.Errorf("create tenant for installation %d: %w", e.Installation.ID, err)
		}
		log.Printf("created tenant for installation %d (%s)", e.Installation.ID, e.Installation.Account.Login)
	case "deleted":
		log.Printf("installation %d deleted, tenant soft-delete not yet implemented", e.Installation.ID)
	}
	return nil
}

func (h *Handler) handleInstallationRepositories(ctx context.Context, e *InstallationRepositoriesEvent) error {
	t, err := h.tenants.GetTenantByInstallation(ctx, e.Installation.ID)
	if err != nil {
		return fmt.Errorf("get tenant for installation %d: %w", e.Installation.ID, err)
	}

	for _, repo := range e.RepositoriesAdded {
		repoID := repo.ID
		_, err := h.tenants.UpsertRepository(ctx, t.ID, repo.FullName, &repoID, repo.DefaultBranch)
		if err != nil {
			return fmt.Errorf("upsert repository %s: %w", repo.FullName, err)
		}
		log.Printf("added repository %s for tenant %s", repo.FullName, t.ID)
	}

	// Removed repos: log only for now (soft-delete not yet implemented)
	for _, repo := range e.RepositoriesRemoved {
		log.Printf("repository %s removed from installation %d (no-op)", repo.FullName, e.Installation.ID)
	}

	return nil
}

// handlePullRequest surfaces the repository's most recent certification on the
// PR head commit as a GitHub check run.
func (h *Handler) handlePullRequest(ctx context.Context, e *PullRequestEvent) error {
	switch e.Action {
	case "opened", "synchronize", "reopened":
	default:
		return nil // ignore other PR actions
	}

	t, err := h.tenants.GetTenantByInstallation(ctx, e.Installation.ID)
	if err != nil {
		return fmt.Errorf("get tenant: %w", err)
	}

	repo, err := h.tenants.GetRepository(ctx, t.ID, e.Repository.FullName)
	if err != nil {
		return fmt.Errorf("get repository: %w", err)
	}

	row, err := h.tenants.LatestAssessment(ctx, repo.ID)
	if err != nil {
		log.Printf("no assessment on record for %s, skipping check run for PR #%d", e.Repository.FullName, e.Number)
		return nil
	}

	if h.publisher == nil {
		log.Printf("no GitHub App configured, skipping check run for PR #%d on %s", e.Number, e.Repository.FullName)
		return nil
	}

	a, err := h.assessments.Load(ctx, t.ID, row.AssessmentID)
	if err != nil {
		return fmt.Errorf("load assessment %s: %w", row.AssessmentID, err)
	}

	owner, name, ok := splitFullName(e.Repository.FullName)
	if !ok {
		return fmt.Errorf("malformed repository full name %q", e.Repository.FullName)
	}

	var cr surface.CheckRunRenderer
	data := cr.BuildCheckRunData(a)
	if err := h.publisher.PublishCheckRun(ctx, e.Installation.ID, owner, name, e.PullRequest.Head.SHA, data); err != nil {
		return fmt.Errorf("publish check run: %w", err)
	}

	// Comment once when the PR opens; synchronize updates only refresh the check run.
	if e.Action == "opened" {
		if err := h.publisher.PublishPRComment(ctx, e.Installation.ID, owner, name, e.Number, data.Summary); err != nil {
			log.Printf("publish PR comment for #%d on %s: %v", e.Number, e.Repository.FullName, err)
		}
	}

	log.Printf("published check run for PR #%d on %s (commit %s, %s)", e.Number, e.Repository.FullName, e.PullRequest.Head.SHA, row.Certification)
	return nil
}

// handlePush keeps the repository record current. Pushes to non-default
// branches are ignored.
func (h *Handler) handlePush(ctx context.Context, e *PushEvent) error {
	expectedRef := "refs/heads/" + e.Repository.DefaultBranch
	if e.Ref != expectedRef {
		return nil // only track the default branch
	}

	t, err := h.tenants.GetTenantByInstallation(ctx, e.Installation.ID)
	if err != nil {
		return fmt.Errorf("get tenant: %w", err)
	}

	repoID := e.Repository.ID
	repo, err := h.tenants.UpsertRepository(ctx, t.ID, e.Repository.FullName, &repoID, e.Repository.DefaultBranch)
	if err != nil {
		return fmt.Errorf("upsert repository %s: %w", e.Repository.FullName, err)
	}

	// Carry the last known certification forward onto the new head commit.
	if h.publisher != nil {
		if row, err := h.tenants.LatestAssessment(ctx, repo.ID); err == nil {
			owner, name, ok := splitFullName(e.Repository.FullName)
			if ok {
				state := "success"
				if row.Certification == "needs_improvement" {
					state = "failure"
				}
				desc := fmt.Sprintf("repocert: %.1f (%s)", row.OverallScore, row.Certification)
				if err := h.publisher.PublishCommitStatus(ctx, e.Installation.ID, owner, name, e.After, state, desc); err != nil {
					log.Printf("publish commit status for %s: %v", e.Repository.FullName, err)
				}
			}
		}
	}

	log.Printf("recorded push to %s on %s (commit %s)", e.Repository.DefaultBranch, e.Repository.FullName, e.After)
	return nil
}

// Package tenant manages multi-tenant state: tenants (GitHub App installations
// or plain organizations) and their tracked repositories.
package tenant

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Service provides tenant and repository management backed by Postgres.
type Service struct {
	db *sql.DB
}

// Tenant represents a GitHub App installation (one per org/user).
type Tenant struct {
	ID                   string
	DisplayName          string
	GitHubInstallationID *int64
	CredentialsRef       *string
	CreatedAt            time.Time
}

// Repository represents a repository tracked by repocert.
type Repository struct {
	ID            string
	TenantID      string
	GitHubRepoID  *int64
	FullName      string
	DefaultBranch string
	CreatedAt     time.Time
}

// NewService creates a new tenant Service.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// CreateTenant creates a new tenant for a GitHub App installation.
func (s *Service) CreateTenant(ctx context.Context, displayName string, installationID int64) (*Tenant, error) {
	t := &Tenant{}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO tenants (display_name, github_installation_id)
		 VALUES ($1, $2)
		 RETURNING id, display_name, github_installation_id, credentials_ref, created_at`,
		displayName, installationID,
	).Scan(&t.ID, &t.DisplayName, &t.GitHubInstallationID, &t.CredentialsRef, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create tenant: %w", err)
	}
	return t, nil
}

// GetTenantByInstallation looks up a tenant by GitHub App installation ID.
func (s *Service) GetTenantByInstallation(ctx context.Context, installationID int64) (*Tenant, error) {
	t := &Tenant{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, display_name, github_installation_id, credentials_ref, created_at
		 FROM tenants WHERE github_installation_id = $1`,
		installationID,
	).Scan(&t.ID, &t.DisplayName, &t.GitHubInstallationID, &t.CredentialsRef, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get tenant by installation %d: %w", installationID, err)
	}
	return t, nil
}

// GetTenantByName looks up a tenant by display name (for non-installation tenants).
func (s *Service) GetTenantByName(ctx context.Context, name string) (*Tenant, error) {
	t := &Tenant{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, display_name, github_installation_id, credentials_ref, created_at
		 FROM tenants WHERE display_name = $1`,
		name,
	).Scan(&t.ID, &t.DisplayName, &t.GitHubInstallationID, &t.CredentialsRef, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get tenant by name %s: %w", name, err)
	}
	return t, nil
}

// CreateTenantByName creates a tenant without an installation ID (for CLI submissions).
func (s *Service) CreateTenantByName(ctx context.Context, name string) (*Tenant, error) {
	t := &Tenant{}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO tenants (display_name)
		 VALUES ($1)
		 RETURNING id, display_name, github_installation_id, credentials_ref, created_at`,
		name,
	).Scan(&t.ID, &t.DisplayName, &t.GitHubInstallationID, &t.CredentialsRef, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create tenant by name: %w", err)
	}
	return t, nil
}

// EnsureTenantAndRepo gets or creates a tenant (by org name) and repository.
// Returns tenantID, repoID, and any error.
func (s *Service) EnsureTenantAndRepo(ctx context.Context, orgName, repoFullName, defaultBranch string) (string, string, error) {
	t, err := s.GetTenantByName(ctx, orgName)
	if err != nil {
		t, err = s.CreateTenantByName(ctx, orgName)
		if err != nil {
			// Could be a race condition; try getting again
			if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "unique") {
				t, err = s.GetTenantByName(ctx, orgName)
				if err != nil {
					return "", "", fmt.Errorf("ensure tenant: %w", err)
				}
			} else {
				return "", "", fmt.Errorf("ensure tenant: %w", err)
			}
		}
	}

	repo, err := s.UpsertRepository(ctx, t.ID, repoFullName, nil, defaultBranch)
	if err != nil {
		return "", "", fmt.Errorf("ensure repository: %w", err)
	}

	return t.ID, repo.ID, nil
}

// UpsertRepository creates or updates a repository record for a tenant.
func (s *Service) UpsertRepository(ctx context.Context, tenantID, fullName string, githubRepoID *int64, defaultBranch string) (*Repository, error) {
	r := &Repository{}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO repositories (tenant_id, full_name, github_repo_id, default_branch)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (tenant_id, full_name) DO UPDATE
		   SET github_repo_id = COALESCE(EXCLUDED.github_repo_id, repositories.github_repo_id),
		       default_branch = EXCLUDED.default_branch
		 RETURNING id, tenant_id, github_repo_id, full_name, default_branch, created_at`,
		tenantID, fullName, githubRepoID, defaultBranch,
	).Scan(&r.ID, &r.TenantID, &r.GitHubRepoID, &r.FullName, &r.DefaultBranch, &r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert repository %s: %w", fullName, err)
	}
	return r, nil
}

// GetRepository retrieves a repository by tenant ID and full name.
func (s *Service) GetRepository(ctx context.Context, tenantID, fullName string) (*Repository, error) {
	r := &Repository{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, github_repo_id, full_name, default_branch, created_at
		 FROM repositories WHERE tenant_id = $1 AND full_name = $2`,
		tenantID, fullName,
	).Scan(&r.ID, &r.TenantID, &r.GitHubRepoID, &r.FullName, &r.DefaultBranch, &r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get repository %s: %w", fullName, err)
	}
	return r, nil
}

// ListRepositories returns all repositories for a tenant.
func (s *Service) ListRepositories(ctx context.Context, tenantID string) ([]Repository, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tenant_id, github_repo_id, full_name, default_branch, created_at
		 FROM repositories WHERE tenant_id = $1 ORDER BY full_name`,
		tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("list repositories: %w", err)
	}
	defer rows.Close()

	var repos []Repository
	for rows.Next() {
		var r Repository
		if err := rows.Scan(&r.ID, &r.TenantID, &r.GitHubRepoID, &r.FullName, &r.DefaultBranch, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan repository: %w", err)
		}
		repos = append(repos, r)
	}
	return repos, rows.Err()
}

// ListAllRepos returns all repositories across all tenants.
func (s *Service) ListAllRepos(ctx context.Context) ([]Repository, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tenant_id, github_repo_id, full_name, default_branch, created_at
		 FROM repositories ORDER BY full_name`,
	)
	if err != nil {
		return nil, fmt.Errorf("list all repositories: %w", err)
	}
	defer rows.Close()

	var repos []Repository
	for rows.Next() {
		var r Repository
		if err := rows.Scan(&r.ID, &r.TenantID, &r.GitHubRepoID, &r.FullName, &r.DefaultBranch, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan repository: %w", err)
		}
		repos = append(repos, r)
	}
	return repos, rows.Err()
}

// AssessmentRow represents assessment metadata from the database. Full
// finding detail lives in blob storage at StorageRef.
type AssessmentRow struct {
	ID            string
	TenantID      string
	RepoID        string
	AssessmentID  string
	CommitSHA     string
	SchemaVersion string
	OverallScore  float64
	Certification string
	TierScores    json.RawMessage
	StorageRef    string
	CreatedAt     time.Time
}

// InsertAssessment records a submitted assessment's metadata.
func (s *Service) InsertAssessment(ctx context.Context, row *AssessmentRow) (*AssessmentRow, error) {
	out := &AssessmentRow{}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO assessments (tenant_id, repo_id, assessment_id, commit_sha,
		        schema_version, overall_score, certification, tier_scores, storage_ref)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, tenant_id, repo_id, assessment_id, commit_sha,
		        schema_version, overall_score, certification, tier_scores, storage_ref, created_at`,
		row.TenantID, row.RepoID, row.AssessmentID, row.CommitSHA,
		row.SchemaVersion, row.OverallScore, row.Certification, row.TierScores, row.StorageRef,
	).Scan(
		&out.ID, &out.TenantID, &out.RepoID, &out.AssessmentID, &out.CommitSHA,
		&out.SchemaVersion, &out.OverallScore, &out.Certification, &out.TierScores, &out.StorageRef, &out.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert assessment %s: %w", row.AssessmentID, err)
	}
	return out, nil
}

// ListAssessmentsByRepo returns assessments for a repository, newest first.
func (s *Service) ListAssessmentsByRepo(ctx context.Context, repoID string, limit int) ([]AssessmentRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tenant_id, repo_id, assessment_id, commit_sha,
		        schema_version, overall_score, certification, tier_scores, storage_ref, created_at
		 FROM assessments WHERE repo_id = $1 ORDER BY created_at DESC LIMIT $2`,
		repoID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	defer rows.Close()

	var out []AssessmentRow
	for rows.Next() {
		var a AssessmentRow
		if err := rows.Scan(
			&a.ID, &a.TenantID, &a.RepoID, &a.AssessmentID, &a.CommitSHA,
			&a.SchemaVersion, &a.OverallScore, &a.Certification, &a.TierScores, &a.StorageRef, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetAssessmentByID returns a single assessment by its client-assigned ID.
func (s *Service) GetAssessmentByID(ctx context.Context, assessmentID string) (*AssessmentRow, error) {
	a := &AssessmentRow{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, repo_id, assessment_id, commit_sha,
		        schema_version, overall_score, certification, tier_scores, storage_ref, created_at
		 FROM assessments WHERE assessment_id = $1`,
		assessmentID,
	).Scan(
		&a.ID, &a.TenantID, &a.RepoID, &a.AssessmentID, &a.CommitSHA,
		&a.SchemaVersion, &a.OverallScore, &a.Certification, &a.TierScores, &a.StorageRef, &a.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get assessment %s: %w", assessmentID, err)
	}
	return a, nil
}

// LatestAssessment returns the most recent assessment for a repository.
func (s *Service) LatestAssessment(ctx context.Context, repoID string) (*AssessmentRow, error) {
	a := &AssessmentRow{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, repo_id, assessment_id, commit_sha,
		        schema_version, overall_score, certification, tier_scores, storage_ref, created_at
		 FROM assessments WHERE repo_id = $1
		 ORDER BY created_at DESC LIMIT 1`,
		repoID,
	).Scan(
		&a.ID, &a.TenantID, &a.RepoID, &a.AssessmentID, &a.CommitSHA,
		&a.SchemaVersion, &a.OverallScore, &a.Certification, &a.TierScores, &a.StorageRef, &a.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("latest assessment for repo %s: %w", repoID, err)
	}
	return a, nil
}

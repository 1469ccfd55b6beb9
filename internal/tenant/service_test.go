package tenant

import (
	"encoding/json"
	"testing"
)

func TestTenantStruct(t *testing.T) {
	// Verify Tenant struct fields are accessible and correctly typed.
	tenant := Tenant{
		ID:          "tenant-uuid-1",
		DisplayName: "myorg",
	}

	if tenant.ID != "tenant-uuid-1" {
		t.Errorf("ID = %q, want %q", tenant.ID, "tenant-uuid-1")
	}
	if tenant.DisplayName != "myorg" {
		t.Errorf("DisplayName = %q, want %q", tenant.DisplayName, "myorg")
	}
	if tenant.GitHubInstallationID != nil {
		t.Errorf("GitHubInstallationID = %v, want nil", tenant.GitHubInstallationID)
	}
}

func TestRepositoryStruct(t *testing.T) {
	repoID := int64(42)
	repo := Repository{
		ID:            "repo-uuid-1",
		TenantID:      "tenant-uuid-1",
		GitHubRepoID:  &repoID,
		FullName:      "org/myrepo",
		DefaultBranch: "main",
	}

	if repo.FullName != "org/myrepo" {
		t.Errorf("FullName = %q, want %q", repo.FullName, "org/myrepo")
	}
	if *repo.GitHubRepoID != 42 {
		t.Errorf("GitHubRepoID = %d, want %d", *repo.GitHubRepoID, 42)
	}
	if repo.DefaultBranch != "main" {
		t.Errorf("DefaultBranch = %q, want %q", repo.DefaultBranch, "main")
	}
}

func TestNewService(t *testing.T) {
	// NewService should not panic with nil db (it just stores the reference).
	svc := NewService(nil)
	if svc == nil {
		t.Fatal("NewService returned nil")
	}
}

func TestAssessmentRowTierScoresJSON(t *testing.T) {
	raw := json.RawMessage(`[{"tier":1,"score":72.0,"weight_share":0.6}]`)
	row := AssessmentRow{
		AssessmentID:  "a-1",
		SchemaVersion: "1.0.0",
		OverallScore:  72,
		Certification: "silver",
		TierScores:    raw,
	}

	var parsed []map[string]any
	if err := json.Unmarshal(row.TierScores, &parsed); err != nil {
		t.Fatalf("tier scores should round-trip as JSON: %v", err)
	}
	if len(parsed) != 1 || parsed[0]["tier"].(float64) != 1 {
		t.Errorf("unexpected tier scores %v", parsed)
	}
}

func TestServiceMethodSet(t *testing.T) {
	// The tenant.Service methods all require a real Postgres database; the
	// method set itself is pinned here as a compile-time check.
	svc := &Service{}
	if svc.db != nil {
		t.Error("zero-value Service should have nil db")
	}

	_ = svc.CreateTenant
	_ = svc.GetTenantByInstallation
	_ = svc.EnsureTenantAndRepo
	_ = svc.UpsertRepository
	_ = svc.GetRepository
	_ = svc.ListRepositories
	_ = svc.InsertAssessment
	_ = svc.ListAssessmentsByRepo
	_ = svc.LatestAssessment
}

func TestTenantOptionalFields(t *testing.T) {
	installID := int64(12345)
	credRef := "vault://secret/github-app"

	tenant := Tenant{
		ID:                   "t-1",
		DisplayName:          "test-org",
		GitHubInstallationID: &installID,
		CredentialsRef:       &credRef,
	}

	if *tenant.GitHubInstallationID != 12345 {
		t.Errorf("GitHubInstallationID = %d, want %d", *tenant.GitHubInstallationID, 12345)
	}
	if *tenant.CredentialsRef != "vault://secret/github-app" {
		t.Errorf("CredentialsRef = %q, want %q", *tenant.CredentialsRef, "vault://secret/github-app")
	}
}

package history

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/repocert/repocert/internal/tenant"
	"github.com/repocert/repocert/pkg/assess"
	"github.com/repocert/repocert/pkg/surface"
)

// Service records submitted assessments and serves their history.
type Service struct {
	db      *sql.DB
	tenants *tenant.Service
	storage StorageClient
}

// NewService creates a new history Service.
func NewService(db *sql.DB, tenants *tenant.Service, storage StorageClient) *Service {
	return &Service{db: db, tenants: tenants, storage: storage}
}

// Record validates and stores one submitted assessment: the full document
// goes to blob storage, searchable metadata to Postgres, and the current
// badge is re-rendered.
func (s *Service) Record(ctx context.Context, a *assess.Assessment) (*tenant.AssessmentRow, error) {
	if a.ID == "" {
		return nil, fmt.Errorf("assessment has no id")
	}
	if a.Repository.Name == "" {
		return nil, fmt.Errorf("assessment has no repository name")
	}
	if a.SchemaVersion != assess.SchemaVersion {
		return nil, fmt.Errorf("assessment schema %q, service expects %q: %w",
			a.SchemaVersion, assess.SchemaVersion, assess.ErrSchemaMismatch)
	}

	org := orgOf(a.Repository.Name)
	tenantID, repoID, err := s.tenants.EnsureTenantAndRepo(ctx, org, a.Repository.Name, "main")
	if err != nil {
		return nil, fmt.Errorf("ensure tenant: %w", err)
	}

	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal assessment: %w", err)
	}
	if err := s.storage.PutAssessment(ctx, tenantID, a.ID, data); err != nil {
		return nil, fmt.Errorf("put assessment blob: %w", err)
	}

	tierScores, err := json.Marshal(a.TierScores)
	if err != nil {
		return nil, fmt.Errorf("marshal tier scores: %w", err)
	}

	row, err := s.tenants.InsertAssessment(ctx, &tenant.AssessmentRow{
		TenantID:      tenantID,
		RepoID:        repoID,
		AssessmentID:  a.ID,
		CommitSHA:     a.Repository.CommitSHA,
		SchemaVersion: a.SchemaVersion,
		OverallScore:  a.OverallScore,
		Certification: string(a.Certification),
		TierScores:    tierScores,
		StorageRef:    fmt.Sprintf("assessments/%s/%s.json", tenantID, a.ID),
	})
	if err != nil {
		return nil, err
	}

	// Badge refresh is best-effort; a failure never rejects the submission.
	var badge bytes.Buffer
	renderer := &surface.BadgeRenderer{}
	if err := renderer.Render(&badge, a); err != nil {
		log.Printf("render badge for %s: %v", a.Repository.Name, err)
	} else if err := s.storage.PutBadge(ctx, tenantID, repoID, badge.Bytes()); err != nil {
		log.Printf("store badge for %s: %v", a.Repository.Name, err)
	}

	log.Printf("recorded assessment %s for %s: %s %.1f", a.ID, a.Repository.Name, a.Certification, a.OverallScore)
	return row, nil
}

// Load retrieves a full assessment document from blob storage.
func (s *Service) Load(ctx context.Context, tenantID, assessmentID string) (*assess.Assessment, error) {
	data, err := s.storage.GetAssessment(ctx, tenantID, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("load assessment %s: %w", assessmentID, err)
	}
	var a assess.Assessment
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parse assessment %s: %w", assessmentID, err)
	}
	return &a, nil
}

// Badge returns the current badge SVG for a repository.
func (s *Service) Badge(ctx context.Context, tenantID, repoID string) ([]byte, error) {
	return s.storage.GetBadge(ctx, tenantID, repoID)
}

// TrendPoint is one assessment in a repository's score history.
type TrendPoint struct {
	AssessmentID  string    `json:"assessment_id"`
	CommitSHA     string    `json:"commit_sha,omitempty"`
	OverallScore  float64   `json:"overall_score"`
	Certification string    `json:"certification"`
	ScoreDelta    float64   `json:"score_delta"`
	CreatedAt     time.Time `json:"created_at"`
}

// Trend returns a repository's assessments oldest first, each annotated
// with the score change from its predecessor.
func (s *Service) Trend(ctx context.Context, repoID string, limit int) ([]TrendPoint, error) {
	rows, err := s.tenants.ListAssessmentsByRepo(ctx, repoID, limit)
	if err != nil {
		return nil, err
	}

	// ListAssessmentsByRepo returns newest first.
	points := make([]TrendPoint, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		r := rows[i]
		p := TrendPoint{
			AssessmentID:  r.AssessmentID,
			CommitSHA:     r.CommitSHA,
			OverallScore:  r.OverallScore,
			Certification: r.Certification,
			CreatedAt:     r.CreatedAt,
		}
		if n := len(points); n > 0 {
			p.ScoreDelta = p.OverallScore - points[n-1].OverallScore
		}
		points = append(points, p)
	}
	return points, nil
}

// orgOf extracts the owner from an "owner/repo" name, falling back to the
// whole name.
func orgOf(fullName string) string {
	if owner, _, ok := strings.Cut(fullName, "/"); ok && owner != "" {
		return owner
	}
	return fullName
}

package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/repocert/repocert/internal/history"
	"github.com/repocert/repocert/internal/tenant"
)

type repoResponse struct {
	ID            string `json:"id"`
	FullName      string `json:"full_name"`
	DefaultBranch string `json:"default_branch"`
}

type assessmentResponse struct {
	AssessmentID  string          `json:"assessment_id"`
	CommitSHA     string          `json:"commit_sha,omitempty"`
	SchemaVersion string          `json:"schema_version"`
	OverallScore  float64         `json:"overall_score"`
	Certification string          `json:"certification"`
	TierScores    json.RawMessage `json:"tier_scores"`
	CreatedAt     string          `json:"created_at"`
}

func assessmentRowToResponse(a *tenant.AssessmentRow) assessmentResponse {
	return assessmentResponse{
		AssessmentID:  a.AssessmentID,
		CommitSHA:     a.CommitSHA,
		SchemaVersion: a.SchemaVersion,
		OverallScore:  a.OverallScore,
		Certification: a.Certification,
		TierScores:    a.TierScores,
		CreatedAt:     a.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func (h *Handler) handleListRepos(w http.ResponseWriter, r *http.Request) {
	repos, err := h.tenantSvc.ListAllRepos(r.Context())
	if err != nil {
		writeJSON(w, http.StatusOK, []repoResponse{})
		return
	}

	var result []repoResponse
	for _, repo := range repos {
		result = append(result, repoResponse{
			ID:            repo.ID,
			FullName:      repo.FullName,
			DefaultBranch: repo.DefaultBranch,
		})
	}

	if result == nil {
		result = []repoResponse{}
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleListAssessments(w http.ResponseWriter, r *http.Request) {
	repoID := r.PathValue("repoID")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	rows, err := h.tenantSvc.ListAssessmentsByRepo(r.Context(), repoID, limit)
	if err != nil {
		writeJSON(w, http.StatusOK, []assessmentResponse{})
		return
	}

	var result []assessmentResponse
	for i := range rows {
		result = append(result, assessmentRowToResponse(&rows[i]))
	}

	if result == nil {
		result = []assessmentResponse{}
	}
	writeJSON(w, http.StatusOK, result)
}

// handleGetAssessment returns the full assessment document, findings
// included, from blob storage.
func (h *Handler) handleGetAssessment(w http.ResponseWriter, r *http.Request) {
	assessmentID := r.PathValue("assessmentID")

	row, err := h.tenantSvc.GetAssessmentByID(r.Context(), assessmentID)
	if err != nil {
		writeError(w, http.StatusNotFound, "assessment not found")
		return
	}
	if row.RepoID != r.PathValue("repoID") {
		writeError(w, http.StatusNotFound, "assessment not found")
		return
	}

	a, err := h.historySvc.Load(r.Context(), row.TenantID, row.AssessmentID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load assessment")
		return
	}

	writeJSON(w, http.StatusOK, a)
}

func (h *Handler) handleTrend(w http.ResponseWriter, r *http.Request) {
	repoID := r.PathValue("repoID")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	points, err := h.historySvc.Trend(r.Context(), repoID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to compute trend")
		return
	}
	if points == nil {
		points = []history.TrendPoint{}
	}
	writeJSON(w, http.StatusOK, points)
}

// handleBadge serves the stored badge SVG for a repository.
func (h *Handler) handleBadge(w http.ResponseWriter, r *http.Request) {
	repoID := r.PathValue("repoID")

	row, err := h.tenantSvc.LatestAssessment(r.Context(), repoID)
	if err != nil {
		writeError(w, http.StatusNotFound, "no assessments for repository")
		return
	}

	svg, err := h.historySvc.Badge(r.Context(), row.TenantID, repoID)
	if err != nil {
		writeError(w, http.StatusNotFound, "badge not found")
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache, max-age=300")
	_, _ = w.Write(svg)
}

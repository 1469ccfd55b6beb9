package api

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/repocert/repocert/pkg/assess"
)

// submitResponse is the JSON body returned by POST /api/v1/assessments.
type submitResponse struct {
	AssessmentID  string  `json:"assessment_id"`
	RepoID        string  `json:"repo_id"`
	OverallScore  float64 `json:"overall_score"`
	Certification string  `json:"certification"`
}

// handleSubmit accepts a complete assessment document produced by the CLI
// and records it. The body may be gzip-compressed.
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var body io.Reader = r.Body
	if r.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid gzip body: "+err.Error())
			return
		}
		defer gz.Close()
		body = gz
	}

	var a assess.Assessment
	if err := json.NewDecoder(body).Decode(&a); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	row, err := h.historySvc.Record(r.Context(), &a)
	if err != nil {
		switch {
		case errors.Is(err, assess.ErrSchemaMismatch):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		case isValidationError(err):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to record assessment: "+err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, submitResponse{
		AssessmentID:  row.AssessmentID,
		RepoID:        row.RepoID,
		OverallScore:  row.OverallScore,
		Certification: row.Certification,
	})
}

// isValidationError classifies Record failures caused by the submitted
// document rather than the service.
func isValidationError(err error) bool {
	msg := err.Error()
	return msg == "assessment has no id" || msg == "assessment has no repository name"
}

// Package api implements the hosted repocert REST API.
// It provides submission and read endpoints backed by Postgres and blob storage.
package api

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/repocert/repocert/internal/history"
	"github.com/repocert/repocert/internal/tenant"
)

// Handler is the top-level API handler for the hosted repocert service.
type Handler struct {
	db         *sql.DB
	tenantSvc  *tenant.Service
	historySvc *history.Service
}

// NewHandler creates a new API handler.
func NewHandler(db *sql.DB, tenantSvc *tenant.Service, historySvc *history.Service) *Handler {
	return &Handler{
		db:         db,
		tenantSvc:  tenantSvc,
		historySvc: historySvc,
	}
}

// RegisterRoutes registers all API routes on the given ServeMux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Write endpoints (auth-protected)
	mux.HandleFunc("POST /api/v1/assessments", h.handleSubmit)

	// Read endpoints
	mux.HandleFunc("GET /api/repos", h.handleListRepos)
	mux.HandleFunc("GET /api/repos/{repoID}/assessments", h.handleListAssessments)
	mux.HandleFunc("GET /api/repos/{repoID}/assessments/{assessmentID}", h.handleGetAssessment)
	mux.HandleFunc("GET /api/repos/{repoID}/trend", h.handleTrend)
	mux.HandleFunc("GET /api/repos/{repoID}/badge.svg", h.handleBadge)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

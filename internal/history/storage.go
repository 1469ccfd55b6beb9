// Package history stores submitted assessments and derives per-repository
// score trends.
package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// StorageClient abstracts blob storage for assessment documents and badges.
type StorageClient interface {
	PutAssessment(ctx context.Context, tenantID, assessmentID string, data []byte) error
	GetAssessment(ctx context.Context, tenantID, assessmentID string) ([]byte, error)
	PutBadge(ctx context.Context, tenantID, repoID string, data []byte) error
	GetBadge(ctx context.Context, tenantID, repoID string) ([]byte, error)
}

// LocalStorage implements StorageClient using the local filesystem.
// Useful for development and testing.
type LocalStorage struct {
	BaseDir string
}

// NewLocalStorage creates a LocalStorage rooted at the given directory.
func NewLocalStorage(baseDir string) *LocalStorage {
	return &LocalStorage{BaseDir: baseDir}
}

func (s *LocalStorage) path(tenantID, kind, id, ext string) string {
	return filepath.Join(s.BaseDir, tenantID, kind, id+ext)
}

func (s *LocalStorage) put(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// PutAssessment stores an assessment blob.
func (s *LocalStorage) PutAssessment(ctx context.Context, tenantID, assessmentID string, data []byte) error {
	return s.put(s.path(tenantID, "assessments", assessmentID, ".json"), data)
}

// GetAssessment retrieves an assessment blob.
func (s *LocalStorage) GetAssessment(ctx context.Context, tenantID, assessmentID string) ([]byte, error) {
	return os.ReadFile(s.path(tenantID, "assessments", assessmentID, ".json"))
}

// PutBadge stores a rendered badge for a repository.
func (s *LocalStorage) PutBadge(ctx context.Context, tenantID, repoID string, data []byte) error {
	return s.put(s.path(tenantID, "badges", repoID, ".svg"), data)
}

// GetBadge retrieves the current badge for a repository.
func (s *LocalStorage) GetBadge(ctx context.Context, tenantID, repoID string) ([]byte, error) {
	return os.ReadFile(s.path(tenantID, "badges", repoID, ".svg"))
}

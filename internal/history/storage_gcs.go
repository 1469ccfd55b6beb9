package history

import (
	"context"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
)

// GCSStorage implements StorageClient using Google Cloud Storage.
type GCSStorage struct {
	client *gcs.Client
	bucket string
}

// NewGCSStorage creates a GCS-backed StorageClient.
// It uses Application Default Credentials (works with Workload Identity, SA keys, gcloud auth).
func NewGCSStorage(ctx context.Context, bucket string) (*GCSStorage, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	return &GCSStorage{client: client, bucket: bucket}, nil
}

func (s *GCSStorage) key(tenantID, kind, id, ext string) string {
	return tenantID + "/" + kind + "/" + id + ext
}

func (s *GCSStorage) put(ctx context.Context, key, contentType string, data []byte) error {
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("gcs write %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs close %s: %w", key, err)
	}
	return nil
}

func (s *GCSStorage) get(ctx context.Context, key string) ([]byte, error) {
	r, err := s.client.Bucket(s.bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs read %s: %w", key, err)
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (s *GCSStorage) PutAssessment(ctx context.Context, tenantID, assessmentID string, data []byte) error {
	return s.put(ctx, s.key(tenantID, "assessments", assessmentID, ".json"), "application/json", data)
}

func (s *GCSStorage) GetAssessment(ctx context.Context, tenantID, assessmentID string) ([]byte, error) {
	return s.get(ctx, s.key(tenantID, "assessments", assessmentID, ".json"))
}

func (s *GCSStorage) PutBadge(ctx context.Context, tenantID, repoID string, data []byte) error {
	return s.put(ctx, s.key(tenantID, "badges", repoID, ".svg"), "image/svg+xml", data)
}

func (s *GCSStorage) GetBadge(ctx context.Context, tenantID, repoID string) ([]byte, error) {
	return s.get(ctx, s.key(tenantID, "badges", repoID, ".svg"))
}

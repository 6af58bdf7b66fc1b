package repository

import (
	"context"
	"fmt"

	"Cephu/internal/domain/models"
	domrepo "Cephu/internal/domain/repository"
)

// Uploader is satisfied by *gcs.Client.
type Uploader interface {
	Upload(ctx context.Context, name, contentType string, body []byte) (string, error)
}

// GCSStore publishes artifacts to a bucket.
type GCSStore struct {
	up Uploader
}

func NewGCSStore(up Uploader) *GCSStore {
	return &GCSStore{up: up}
}

var _ domrepo.ArtifactStore = (*GCSStore)(nil)

func (s *GCSStore) Save(ctx context.Context, a *models.Artifact) (string, error) {
	uri, err := s.up.Upload(ctx, a.Name, a.ContentType, a.Body)
	if err != nil {
		return "", fmt.Errorf("upload artifact %s: %w", a.Name, err)
	}
	return uri, nil
}

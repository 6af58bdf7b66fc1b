package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"Cephu/internal/domain/models"
	domrepo "Cephu/internal/domain/repository"
)

// FileStore writes artifacts into a local directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

var _ domrepo.ArtifactStore = (*FileStore)(nil)

// Save replaces dir/name atomically so auto-refreshing viewers never see a partial file.
func (s *FileStore) Save(ctx context.Context, a *models.Artifact) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if a.Name == "" || filepath.Base(a.Name) != a.Name {
		return "", fmt.Errorf("save artifact %q: %w", a.Name, models.ErrInvalidInput)
	}
	dst := filepath.Join(s.dir, a.Name)

	tmp, err := os.CreateTemp(s.dir, "."+a.Name+".*")
	if err != nil {
		return "", fmt.Errorf("save artifact: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(a.Body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("save artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("save artifact: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", fmt.Errorf("save artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("save artifact: %w", err)
	}
	if abs, err := filepath.Abs(dst); err == nil {
		return abs, nil
	}
	return dst, nil
}

package repository

import (
	"context"

	"Cephu/internal/domain/models"
	domrepo "Cephu/internal/domain/repository"
	applogger "Cephu/pkg/logger"
)

// MultiStore saves to a primary store and mirrors to the rest.
// Only a primary failure fails the save.
type MultiStore struct {
	primary domrepo.ArtifactStore
	mirrors []domrepo.ArtifactStore
	l       *applogger.Logger
}

func NewMultiStore(primary domrepo.ArtifactStore, mirrors ...domrepo.ArtifactStore) *MultiStore {
	return &MultiStore{primary: primary, mirrors: mirrors}
}

// SetLogger injects a structured logger.
func (s *MultiStore) SetLogger(l *applogger.Logger) { s.l = l }

var _ domrepo.ArtifactStore = (*MultiStore)(nil)

func (s *MultiStore) Save(ctx context.Context, a *models.Artifact) (string, error) {
	loc, err := s.primary.Save(ctx, a)
	if err != nil {
		return "", err
	}
	for _, m := range s.mirrors {
		where, err := m.Save(ctx, a)
		if err != nil {
			if s.l != nil {
				s.l.Warn("artifact mirror failed", applogger.String("name", a.Name), applogger.Error(err))
			}
			continue
		}
		if s.l != nil {
			s.l.Debug("artifact mirrored", applogger.String("name", a.Name), applogger.String("location", where))
		}
	}
	return loc, nil
}

package favorites

import (
	"context"
	"log/slog"

	"github.com/stagedoor-labs/stagedoor/domain/catalog"
	"github.com/stagedoor-labs/stagedoor/pkg/logger"
)

// Service handles business logic for favorites
type Service struct {
	repo    *Repository
	catalog *catalog.Repository
	log     *slog.Logger
}

// NewService creates a new favorites service
func NewService(repo *Repository, catalogRepo *catalog.Repository, log *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		catalog: catalogRepo,
		log:     log.With(logger.Scope("favorites.svc")),
	}
}

// AddMonologue favorites a monologue. Adding twice is a no-op on the
// second call; the denormalized counter only moves on real changes.
// An unknown monologue id comes back as not found via the foreign key.
func (s *Service) AddMonologue(ctx context.Context, userID, monologueID string) error {
	created, err := s.repo.AddMonologue(ctx, userID, monologueID)
	if err != nil {
		return err
	}
	if created {
		if err := s.catalog.AdjustFavoriteCount(ctx, monologueID, 1); err != nil {
			s.log.Warn("favorite count adjust failed", logger.Error(err))
		}
	}
	return nil
}

// RemoveMonologue unfavorites a monologue. Removing twice is a no-op on
// the second call.
func (s *Service) RemoveMonologue(ctx context.Context, userID, monologueID string) error {
	removed, err := s.repo.RemoveMonologue(ctx, userID, monologueID)
	if err != nil {
		return err
	}
	if removed {
		if err := s.catalog.AdjustFavoriteCount(ctx, monologueID, -1); err != nil {
			s.log.Warn("favorite count adjust failed", logger.Error(err))
		}
	}
	return nil
}

// List returns the user's favorites as DTOs
func (s *Service) List(ctx context.Context, userID string) ([]FavoriteDTO, error) {
	favs, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]FavoriteDTO, 0, len(favs))
	for i := range favs {
		out = append(out, favs[i].ToDTO())
	}
	return out, nil
}

// MonologueIDSet exposes the boost signal for the rank merger
func (s *Service) MonologueIDSet(ctx context.Context, userID string) (map[string]bool, error) {
	return s.repo.MonologueIDSet(ctx, userID)
}

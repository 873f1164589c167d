package profile

import (
	"context"
	"log/slog"

	"github.com/stagedoor-labs/stagedoor/pkg/logger"
)

// Service handles business logic for actor profiles
type Service struct {
	repo *Repository
	log  *slog.Logger
}

// NewService creates a new actor profile service
func NewService(repo *Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With(logger.Scope("profile.svc")),
	}
}

// Get retrieves the user's profile as a DTO, defaulting when never saved.
func (s *Service) Get(ctx context.Context, userID string) (*ProfileDTO, error) {
	p, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return &ProfileDTO{
			PreferredGenres:    []string{},
			ProfileBiasEnabled: true,
		}, nil
	}

	dto := p.ToDTO()
	return &dto, nil
}

// GetEntity retrieves the raw profile row for the rank merger, or nil when
// the user has no saved profile.
func (s *Service) GetEntity(ctx context.Context, userID string) (*ActorProfile, error) {
	return s.repo.GetByUserID(ctx, userID)
}

// Update applies the provided fields and returns the resulting DTO
func (s *Service) Update(ctx context.Context, userID string, req *UpdateProfileRequest) (*ProfileDTO, error) {
	p, err := s.repo.Upsert(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	dto := p.ToDTO()
	return &dto, nil
}

package catalog

import (
	"context"
	"log/slog"

	"github.com/stagedoor-labs/stagedoor/pkg/logger"
)

// Service handles business logic for the catalog
type Service struct {
	repo *Repository
	log  *slog.Logger
}

// NewService creates a new catalog service
func NewService(repo *Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With(logger.Scope("catalog.svc")),
	}
}

// GetMonologue returns a monologue DTO and bumps its view counter
func (s *Service) GetMonologue(ctx context.Context, id string) (*MonologueDTO, error) {
	m, err := s.repo.GetMonologue(ctx, id)
	if err != nil {
		return nil, err
	}

	s.repo.IncrementViewCount(ctx, id)

	dto := m.ToDTO()
	dto.ViewCount++ // reflect the bump without a second read
	return &dto, nil
}

// MonologuesByIDs hydrates DTOs for an ordered id list, preserving the
// list's order and skipping ids that no longer exist.
func (s *Service) MonologuesByIDs(ctx context.Context, ids []string) ([]MonologueDTO, error) {
	ms, err := s.repo.GetMonologuesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*Monologue, len(ms))
	for i := range ms {
		byID[ms[i].ID] = &ms[i]
	}

	out := make([]MonologueDTO, 0, len(ids))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			out = append(out, m.ToDTO())
		}
	}
	return out, nil
}

// FilmTVByIDs hydrates film/TV DTOs for an ordered id list
func (s *Service) FilmTVByIDs(ctx context.Context, ids []string) ([]FilmTVDTO, error) {
	fs, err := s.repo.GetFilmTVByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*FilmTVReference, len(fs))
	for i := range fs {
		byID[fs[i].ID] = &fs[i]
	}

	out := make([]FilmTVDTO, 0, len(ids))
	for _, id := range ids {
		if f, ok := byID[id]; ok {
			out = append(out, f.ToDTO())
		}
	}
	return out, nil
}

// RandomBrowse returns a random monologue sample for the empty-query
// discover path.
func (s *Service) RandomBrowse(ctx context.Context, limit int, excludeOverdone bool) ([]MonologueDTO, error) {
	maxOverdone := 1.0
	if excludeOverdone {
		maxOverdone = 0.3
	}

	ms, err := s.repo.RandomMonologues(ctx, limit, maxOverdone)
	if err != nil {
		return nil, err
	}

	out := make([]MonologueDTO, 0, len(ms))
	for i := range ms {
		out = append(out, ms[i].ToDTO())
	}
	return out, nil
}

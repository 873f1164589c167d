package catalog

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/uptrace/bun"

	"github.com/stagedoor-labs/stagedoor/pkg/apperror"
	"github.com/stagedoor-labs/stagedoor/pkg/logger"
)

// Repository handles database operations for the catalog
type Repository struct {
	db  bun.IDB
	log *slog.Logger
}

// NewRepository creates a new catalog repository
func NewRepository(db bun.IDB, log *slog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With(logger.Scope("catalog.repo")),
	}
}

// GetMonologue retrieves a monologue with its work
func (r *Repository) GetMonologue(ctx context.Context, id string) (*Monologue, error) {
	var m Monologue
	err := r.db.NewSelect().
		Model(&m).
		Relation("Work").
		Where("m.id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NewNotFound("monologue", id)
		}
		r.log.Error("failed to get monologue", logger.Error(err))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}

	return &m, nil
}

// GetMonologuesByIDs retrieves monologues with their works. Order is not
// guaranteed; callers re-order against their id list.
func (r *Repository) GetMonologuesByIDs(ctx context.Context, ids []string) ([]Monologue, error) {
	if len(ids) == 0 {
		return []Monologue{}, nil
	}

	var ms []Monologue
	err := r.db.NewSelect().
		Model(&ms).
		Relation("Work").
		Where("m.id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		r.log.Error("failed to get monologues by ids", logger.Error(err))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}

	return ms, nil
}

// GetFilmTVByIDs retrieves film/TV references by id
func (r *Repository) GetFilmTVByIDs(ctx context.Context, ids []string) ([]FilmTVReference, error) {
	if len(ids) == 0 {
		return []FilmTVReference{}, nil
	}

	var fs []FilmTVReference
	err := r.db.NewSelect().
		Model(&fs).
		Where("f.id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		r.log.Error("failed to get film/tv references by ids", logger.Error(err))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}

	return fs, nil
}

// RandomMonologues returns a random browse sample. maxOverdone < 1 filters
// out overused material; pass 1 to include everything.
func (r *Repository) RandomMonologues(ctx context.Context, limit int, maxOverdone float64) ([]Monologue, error) {
	var ms []Monologue
	err := r.db.NewSelect().
		Model(&ms).
		Relation("Work").
		Where("m.overdone_score <= ?", maxOverdone).
		OrderExpr("random()").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		r.log.Error("failed to browse monologues", logger.Error(err))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}

	return ms, nil
}

// IncrementViewCount bumps a monologue's view counter. Best-effort; a
// failed bump never fails the read path.
func (r *Repository) IncrementViewCount(ctx context.Context, id string) {
	_, err := r.db.NewUpdate().
		Model((*Monologue)(nil)).
		Set("view_count = view_count + 1").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		r.log.Warn("failed to increment view count", slog.String("id", id), logger.Error(err))
	}
}

// AdjustFavoriteCount moves a monologue's favorite counter by delta,
// flooring at zero.
func (r *Repository) AdjustFavoriteCount(ctx context.Context, id string, delta int) error {
	_, err := r.db.NewUpdate().
		Model((*Monologue)(nil)).
		Set("favorite_count = GREATEST(favorite_count + ?, 0)", delta).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		r.log.Error("failed to adjust favorite count", logger.Error(err))
		return apperror.ErrDatabase.WithInternal(err)
	}
	return nil
}

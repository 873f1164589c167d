package favorites

import (
	"context"
	"log/slog"
	"time"

	"github.com/uptrace/bun"

	"github.com/stagedoor-labs/stagedoor/pkg/apperror"
	"github.com/stagedoor-labs/stagedoor/pkg/logger"
	"github.com/stagedoor-labs/stagedoor/pkg/pgutils"
)

// Repository handles database operations for favorites
type Repository struct {
	db  bun.IDB
	log *slog.Logger
}

// NewRepository creates a new favorites repository
func NewRepository(db bun.IDB, log *slog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With(logger.Scope("favorites.repo")),
	}
}

// AddMonologue inserts a favorite, reporting whether a row was actually
// created. The partial unique index makes the insert idempotent.
func (r *Repository) AddMonologue(ctx context.Context, userID, monologueID string) (bool, error) {
	fav := &Favorite{
		UserID:      userID,
		MonologueID: &monologueID,
		CreatedAt:   time.Now(),
	}

	res, err := r.db.NewInsert().
		Model(fav).
		On("CONFLICT (user_id, monologue_id) WHERE monologue_id IS NOT NULL DO NOTHING").
		Exec(ctx)
	if err != nil {
		if pgutils.IsForeignKeyViolation(err) {
			return false, apperror.NewNotFound("monologue", monologueID)
		}
		r.log.Error("failed to add favorite", logger.Error(err))
		return false, apperror.ErrDatabase.WithInternal(err)
	}

	n, _ := res.RowsAffected()
	return n > 0, nil
}

// RemoveMonologue deletes a favorite, reporting whether a row existed
func (r *Repository) RemoveMonologue(ctx context.Context, userID, monologueID string) (bool, error) {
	res, err := r.db.NewDelete().
		Model((*Favorite)(nil)).
		Where("user_id = ?", userID).
		Where("monologue_id = ?", monologueID).
		Exec(ctx)
	if err != nil {
		r.log.Error("failed to remove favorite", logger.Error(err))
		return false, apperror.ErrDatabase.WithInternal(err)
	}

	n, _ := res.RowsAffected()
	return n > 0, nil
}

// List returns the user's favorites, newest first
func (r *Repository) List(ctx context.Context, userID string) ([]Favorite, error) {
	var favs []Favorite
	err := r.db.NewSelect().
		Model(&favs).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		r.log.Error("failed to list favorites", logger.Error(err))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return favs, nil
}

// MonologueIDSet returns the set of monologue ids the user has favorited.
// The rank merger consumes this for the bookmark boost.
func (r *Repository) MonologueIDSet(ctx context.Context, userID string) (map[string]bool, error) {
	var ids []string
	err := r.db.NewSelect().
		Model((*Favorite)(nil)).
		Column("monologue_id").
		Where("user_id = ?", userID).
		Where("monologue_id IS NOT NULL").
		Scan(ctx, &ids)
	if err != nil {
		r.log.Error("failed to load favorite id set", logger.Error(err))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}

	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

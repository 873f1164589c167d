package quota

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/uptrace/bun"

	"github.com/stagedoor-labs/stagedoor/pkg/apperror"
	"github.com/stagedoor-labs/stagedoor/pkg/logger"
)

// Store is the persistence surface the gate consumes
type Store interface {
	MonthToDateUsage(ctx context.Context, userID string, feature Feature) (int, error)
	IncrementToday(ctx context.Context, userID string, feature Feature) error
	TierFor(ctx context.Context, userID string) (string, error)
	OverrideFor(ctx context.Context, userID string, feature Feature) (*TierOverride, error)
}

// Repository implements Store over the stage schema
type Repository struct {
	db  bun.IDB
	log *slog.Logger
}

// NewRepository creates a new quota repository
func NewRepository(db bun.IDB, log *slog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With(logger.Scope("quota.repo")),
	}
}

// MonthToDateUsage sums the user's counters from the first of the month
// through today.
func (r *Repository) MonthToDateUsage(ctx context.Context, userID string, feature Feature) (int, error) {
	var total int
	err := r.db.NewSelect().
		Model((*UsageCounter)(nil)).
		ColumnExpr("COALESCE(SUM(count), 0)").
		Where("user_id = ?", userID).
		Where("feature = ?", feature).
		Where("date >= date_trunc('month', CURRENT_DATE)").
		Where("date <= CURRENT_DATE").
		Scan(ctx, &total)
	if err != nil {
		r.log.Error("failed to sum usage", logger.Error(err))
		return 0, apperror.ErrDatabase.WithInternal(err)
	}
	return total, nil
}

// IncrementToday atomically bumps today's counter, creating the row on
// first use.
func (r *Repository) IncrementToday(ctx context.Context, userID string, feature Feature) error {
	counter := &UsageCounter{
		UserID:  userID,
		Date:    time.Now().Truncate(24 * time.Hour),
		Feature: feature,
		Count:   1,
	}

	_, err := r.db.NewInsert().
		Model(counter).
		On("CONFLICT (user_id, date, feature) DO UPDATE").
		Set("count = uc.count + 1").
		Exec(ctx)
	if err != nil {
		r.log.Error("failed to increment usage counter", logger.Error(err))
		return apperror.ErrDatabase.WithInternal(err)
	}
	return nil
}

// TierFor returns the user's subscription tier, defaulting to free
func (r *Repository) TierFor(ctx context.Context, userID string) (string, error) {
	var ut UserTier
	err := r.db.NewSelect().
		Model(&ut).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "free", nil
		}
		r.log.Error("failed to get user tier", logger.Error(err))
		return "", apperror.ErrDatabase.WithInternal(err)
	}
	return ut.Tier, nil
}

// OverrideFor returns the user's override for a feature, or nil
func (r *Repository) OverrideFor(ctx context.Context, userID string, feature Feature) (*TierOverride, error) {
	var o TierOverride
	err := r.db.NewSelect().
		Model(&o).
		Where("user_id = ?", userID).
		Where("feature = ?", feature).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.log.Error("failed to get tier override", logger.Error(err))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return &o, nil
}

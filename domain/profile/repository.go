package profile

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

// Repository handles database operations for actor profiles
type Repository struct {
	db  bun.IDB
	log *slog.Logger
}

// NewRepository creates a new actor profile repository
func NewRepository(db bun.IDB, log *slog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With(logger.Scope("profile.repo")),
	}
}

// GetByUserID retrieves an actor profile. Returns nil without error when the
// user has never saved one; callers fall back to defaults.
func (r *Repository) GetByUserID(ctx context.Context, userID string) (*ActorProfile, error) {
	var p ActorProfile
	err := r.db.NewSelect().
		Model(&p).
		Where("user_id = ?", userID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.log.Error("failed to get actor profile", logger.Error(err))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}

	return &p, nil
}

// Upsert writes the provided fields, creating the row on first save.
func (r *Repository) Upsert(ctx context.Context, userID string, req *UpdateProfileRequest) (*ActorProfile, error) {
	existing, err := r.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	p := existing
	if p == nil {
		p = &ActorProfile{
			UserID:             userID,
			ProfileBiasEnabled: true,
			CreatedAt:          time.Now(),
		}
	}

	if req.Gender != nil {
		p.Gender = req.Gender
	}
	if req.AgeRange != nil {
		p.AgeRange = req.AgeRange
	}
	if req.ExperienceLevel != nil {
		p.ExperienceLevel = req.ExperienceLevel
	}
	if req.PreferredGenres != nil {
		p.PreferredGenres = *req.PreferredGenres
	}
	if req.OverdoneAlertSensitivity != nil {
		p.OverdoneAlertSensitivity = *req.OverdoneAlertSensitivity
	}
	if req.ProfileBiasEnabled != nil {
		p.ProfileBiasEnabled = *req.ProfileBiasEnabled
	}
	p.UpdatedAt = time.Now()

	_, err = r.db.NewInsert().
		Model(p).
		On("CONFLICT (user_id) DO UPDATE").
		Set("gender = EXCLUDED.gender").
		Set("age_range = EXCLUDED.age_range").
		Set("experience_level = EXCLUDED.experience_level").
		Set("preferred_genres = EXCLUDED.preferred_genres").
		Set("overdone_alert_sensitivity = EXCLUDED.overdone_alert_sensitivity").
		Set("profile_bias_enabled = EXCLUDED.profile_bias_enabled").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		r.log.Error("failed to upsert actor profile", logger.Error(err))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}

	return p, nil
}

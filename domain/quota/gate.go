package quota

import (
	"context"
	"log/slog"
	"time"

	"github.com/stagedoor-labs/stagedoor/internal/config"
	"github.com/stagedoor-labs/stagedoor/pkg/auth"
	"github.com/stagedoor-labs/stagedoor/pkg/logger"
)

// Gate decides whether a user may spend one unit of a feature this month.
// Check and Record are split so a request that fails before producing a
// response never burns quota: the orchestrator calls Record only after the
// payload is assembled.
type Gate struct {
	store Store
	cfg   *config.Config
	log   *slog.Logger
}

// NewGate creates a quota gate
func NewGate(store Store, cfg *config.Config, log *slog.Logger) *Gate {
	return &Gate{
		store: store,
		cfg:   cfg,
		log:   log.With(logger.Scope("quota.gate")),
	}
}

// Check evaluates the user's limit for a feature without spending quota.
// Superusers and local environments always pass.
func (g *Gate) Check(ctx context.Context, user *auth.AuthUser, feature Feature) (Decision, error) {
	if user.Superuser || g.cfg.IsLocal() {
		return Decision{Allowed: true, Limit: LimitUnlimited}, nil
	}

	limit, err := g.effectiveLimit(ctx, user.ID, feature)
	if err != nil {
		return Decision{}, err
	}

	if limit == LimitForbidden {
		return Decision{Allowed: false, Reason: ReasonFeatureNotAvailable, Limit: limit}, nil
	}
	if limit == LimitUnlimited {
		return Decision{Allowed: true, Limit: limit}, nil
	}

	used, err := g.store.MonthToDateUsage(ctx, user.ID, feature)
	if err != nil {
		return Decision{}, err
	}

	if used >= limit {
		return Decision{Allowed: false, Reason: ReasonQuotaExceeded, Limit: limit, Used: used}, nil
	}
	return Decision{Allowed: true, Limit: limit, Used: used}, nil
}

// Record spends one unit. Failures are logged and swallowed; counter
// increments are never user-facing.
func (g *Gate) Record(ctx context.Context, userID string, feature Feature) {
	if err := g.store.IncrementToday(ctx, userID, feature); err != nil {
		g.log.Warn("usage increment failed",
			slog.String("user_id", userID),
			slog.String("feature", string(feature)),
			logger.Error(err),
		)
	}
}

// Usage returns the current limit and month-to-date usage for one feature
func (g *Gate) Usage(ctx context.Context, userID string, feature Feature) (limit, used int, err error) {
	limit, err = g.effectiveLimit(ctx, userID, feature)
	if err != nil {
		return 0, 0, err
	}
	used, err = g.store.MonthToDateUsage(ctx, userID, feature)
	if err != nil {
		return 0, 0, err
	}
	return limit, used, nil
}

// effectiveLimit resolves the tier limit, letting an active override win
func (g *Gate) effectiveLimit(ctx context.Context, userID string, feature Feature) (int, error) {
	override, err := g.store.OverrideFor(ctx, userID, feature)
	if err != nil {
		return 0, err
	}
	if override != nil && override.Active(time.Now()) {
		return override.LimitValue, nil
	}

	tier, err := g.store.TierFor(ctx, userID)
	if err != nil {
		return 0, err
	}
	return LimitFor(tier, feature), nil
}

package quota

import (
	"time"

	"github.com/uptrace/bun"
)

// Feature is a gated platform capability
type Feature string

const (
	FeatureAISearch     Feature = "ai_search"
	FeatureTotalSearch  Feature = "total_search"
	FeatureScenePartner Feature = "scene_partner"
	FeatureCraftCoach   Feature = "craft_coach"
)

// Limit sentinels: -1 is unlimited, 0 is forbidden, >0 is a monthly quota.
const (
	LimitUnlimited = -1
	LimitForbidden = 0
)

// tierLimits maps each subscription tier to its per-feature monthly limits.
// Unknown tiers fall back to free.
var tierLimits = map[string]map[Feature]int{
	"free": {
		FeatureAISearch:     25,
		FeatureTotalSearch:  LimitUnlimited,
		FeatureScenePartner: LimitForbidden,
		FeatureCraftCoach:   LimitForbidden,
	},
	"pro": {
		FeatureAISearch:     300,
		FeatureTotalSearch:  LimitUnlimited,
		FeatureScenePartner: 50,
		FeatureCraftCoach:   50,
	},
	"premium": {
		FeatureAISearch:     LimitUnlimited,
		FeatureTotalSearch:  LimitUnlimited,
		FeatureScenePartner: LimitUnlimited,
		FeatureCraftCoach:   LimitUnlimited,
	},
}

// LimitFor returns the monthly limit for a tier and feature
func LimitFor(tier string, feature Feature) int {
	limits, ok := tierLimits[tier]
	if !ok {
		limits = tierLimits["free"]
	}
	limit, ok := limits[feature]
	if !ok {
		return LimitForbidden
	}
	return limit
}

// UsageCounter is one user's usage of one feature on one day
type UsageCounter struct {
	bun.BaseModel `bun:"table:stage.usage_counters,alias:uc"`

	UserID  string    `bun:"user_id,pk,type:uuid"`
	Date    time.Time `bun:"date,pk,type:date"`
	Feature Feature   `bun:"feature,pk"`
	Count   int       `bun:"count"`
}

// TierOverride grants a user a custom limit for one feature, optionally
// expiring.
type TierOverride struct {
	bun.BaseModel `bun:"table:stage.tier_overrides,alias:to"`

	ID         string     `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	UserID     string     `bun:"user_id,type:uuid"`
	Feature    Feature    `bun:"feature"`
	LimitValue int        `bun:"limit_value"`
	Revoked    bool       `bun:"revoked"`
	ExpiresAt  *time.Time `bun:"expires_at"`
	CreatedAt  time.Time  `bun:"created_at"`
}

// Active reports whether the override currently applies
func (o *TierOverride) Active(now time.Time) bool {
	if o.Revoked {
		return false
	}
	if o.ExpiresAt != nil && !o.ExpiresAt.After(now) {
		return false
	}
	return true
}

// UserTier is a user's subscription tier row
type UserTier struct {
	bun.BaseModel `bun:"table:stage.user_tiers,alias:ut"`

	UserID    string    `bun:"user_id,pk,type:uuid"`
	Tier      string    `bun:"tier"`
	UpdatedAt time.Time `bun:"updated_at"`
}

// Decision is the outcome of a gate check
type Decision struct {
	Allowed bool
	Reason  string
	Limit   int
	Used    int
}

// Deny reasons surfaced in the 403 body
const (
	ReasonQuotaExceeded       = "ai_searches_count_limit_exceeded"
	ReasonFeatureNotAvailable = "feature_not_available"
)

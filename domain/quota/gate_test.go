package quota

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagedoor-labs/stagedoor/internal/config"
	"github.com/stagedoor-labs/stagedoor/pkg/auth"
)

type fakeStore struct {
	tier       string
	usage      int
	override   *TierOverride
	increments int
}

func (f *fakeStore) MonthToDateUsage(ctx context.Context, userID string, feature Feature) (int, error) {
	return f.usage, nil
}

func (f *fakeStore) IncrementToday(ctx context.Context, userID string, feature Feature) error {
	f.increments++
	return nil
}

func (f *fakeStore) TierFor(ctx context.Context, userID string) (string, error) {
	if f.tier == "" {
		return "free", nil
	}
	return f.tier, nil
}

func (f *fakeStore) OverrideFor(ctx context.Context, userID string, feature Feature) (*TierOverride, error) {
	return f.override, nil
}

func newTestGate(store Store, env string) *Gate {
	cfg := &config.Config{Environment: env}
	return NewGate(store, cfg, slog.Default())
}

func TestGateAllowsUnderLimit(t *testing.T) {
	store := &fakeStore{tier: "free", usage: 10}
	gate := newTestGate(store, "prod")

	d, err := gate.Check(context.Background(), &auth.AuthUser{ID: "u"}, FeatureAISearch)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 25, d.Limit)
	assert.Equal(t, 10, d.Used)
}

func TestGateDeniesAtLimit(t *testing.T) {
	store := &fakeStore{tier: "free", usage: 25}
	gate := newTestGate(store, "prod")

	d, err := gate.Check(context.Background(), &auth.AuthUser{ID: "u"}, FeatureAISearch)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonQuotaExceeded, d.Reason)
	assert.Equal(t, 25, d.Limit)
	assert.Equal(t, 25, d.Used)
}

func TestGateForbiddenFeature(t *testing.T) {
	store := &fakeStore{tier: "free"}
	gate := newTestGate(store, "prod")

	d, err := gate.Check(context.Background(), &auth.AuthUser{ID: "u"}, FeatureScenePartner)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonFeatureNotAvailable, d.Reason)
}

func TestGateUnlimitedSkipsUsageLookup(t *testing.T) {
	store := &fakeStore{tier: "premium", usage: 99999}
	gate := newTestGate(store, "prod")

	d, err := gate.Check(context.Background(), &auth.AuthUser{ID: "u"}, FeatureAISearch)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, LimitUnlimited, d.Limit)
}

func TestGateOverrideWins(t *testing.T) {
	store := &fakeStore{
		tier:     "free",
		usage:    30,
		override: &TierOverride{LimitValue: 100},
	}
	gate := newTestGate(store, "prod")

	d, err := gate.Check(context.Background(), &auth.AuthUser{ID: "u"}, FeatureAISearch)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 100, d.Limit)
}

func TestGateExpiredOverrideIgnored(t *testing.T) {
	expired := time.Now().Add(-time.Hour)
	store := &fakeStore{
		tier:     "free",
		usage:    30,
		override: &TierOverride{LimitValue: 100, ExpiresAt: &expired},
	}
	gate := newTestGate(store, "prod")

	d, err := gate.Check(context.Background(), &auth.AuthUser{ID: "u"}, FeatureAISearch)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonQuotaExceeded, d.Reason)
}

func TestGateRevokedOverrideIgnored(t *testing.T) {
	store := &fakeStore{
		tier:     "free",
		usage:    30,
		override: &TierOverride{LimitValue: 100, Revoked: true},
	}
	gate := newTestGate(store, "prod")

	d, err := gate.Check(context.Background(), &auth.AuthUser{ID: "u"}, FeatureAISearch)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
}

func TestGateSuperuserBypass(t *testing.T) {
	store := &fakeStore{tier: "free", usage: 9999}
	gate := newTestGate(store, "prod")

	d, err := gate.Check(context.Background(), &auth.AuthUser{ID: "u", Superuser: true}, FeatureAISearch)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestGateLocalEnvironmentBypass(t *testing.T) {
	store := &fakeStore{tier: "free", usage: 9999}
	gate := newTestGate(store, "local")

	d, err := gate.Check(context.Background(), &auth.AuthUser{ID: "u"}, FeatureAISearch)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestGateRecordIncrements(t *testing.T) {
	store := &fakeStore{}
	gate := newTestGate(store, "prod")

	gate.Record(context.Background(), "u", FeatureAISearch)
	gate.Record(context.Background(), "u", FeatureAISearch)
	assert.Equal(t, 2, store.increments)
}

func TestUnknownTierFallsBackToFree(t *testing.T) {
	assert.Equal(t, 25, LimitFor("enterprise", FeatureAISearch))
	assert.Equal(t, LimitForbidden, LimitFor("free", FeatureCraftCoach))
}

func TestDemoLimiter(t *testing.T) {
	d := NewDemoLimiter(5 * time.Minute)

	assert.True(t, d.Allow("1.2.3.4"))
	assert.False(t, d.Allow("1.2.3.4"), "second request within the window is throttled")
	assert.True(t, d.Allow("5.6.7.8"), "different IPs are independent")
}

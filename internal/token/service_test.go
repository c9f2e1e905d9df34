package token

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/otavioajr/shaving-project/internal/model"
	"github.com/otavioajr/shaving-project/pkg/cache"
	"github.com/otavioajr/shaving-project/pkg/jwtutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errCacheDown = errors.New("connection refused")

// brokenCache fails every operation, simulating an unreachable Redis.
type brokenCache struct{}

func (brokenCache) Get(context.Context, string) (string, error) { return "", errCacheDown }
func (brokenCache) Set(context.Context, string, string, time.Duration) error {
	return errCacheDown
}
func (brokenCache) Delete(context.Context, string) error       { return errCacheDown }
func (brokenCache) DeletePrefix(context.Context, string) error { return errCacheDown }
func (brokenCache) Increment(context.Context, string, time.Duration) (int64, error) {
	return 0, errCacheDown
}

func newTestService(c cache.Cache) *Service {
	jwt := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey: "test-signing-key",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	})
	return NewService(jwt, c, 7*24*time.Hour, zap.NewNop())
}

func testProfessional() *model.Professional {
	return &model.Professional{
		ID:    "prof-1",
		Email: "barber@shop.test",
		Role:  model.RoleBarber,
	}
}

func TestIssuePairAndRefresh(t *testing.T) {
	s := newTestService(cache.NewMemoryCache())

	pair, err := s.IssuePair(context.Background(), testProfessional(), "shop-1")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	accessToken, err := s.Refresh(context.Background(), pair.RefreshToken, "shop-1")
	require.NoError(t, err)
	assert.NotEmpty(t, accessToken)
}

func TestIssuePairFailsWhenStoreUnavailable(t *testing.T) {
	s := newTestService(brokenCache{})

	_, err := s.IssuePair(context.Background(), testProfessional(), "shop-1")
	assert.Error(t, err)
}

func TestRefreshRejectsGarbageToken(t *testing.T) {
	s := newTestService(cache.NewMemoryCache())

	_, err := s.Refresh(context.Background(), "not-a-jwt", "shop-1")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	s := newTestService(cache.NewMemoryCache())

	pair, err := s.IssuePair(context.Background(), testProfessional(), "shop-1")
	require.NoError(t, err)

	// An access token has a valid signature but the wrong token type.
	_, err = s.Refresh(context.Background(), pair.AccessToken, "shop-1")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshRejectsCrossTenantReplay(t *testing.T) {
	s := newTestService(cache.NewMemoryCache())

	pair, err := s.IssuePair(context.Background(), testProfessional(), "shop-1")
	require.NoError(t, err)

	_, err = s.Refresh(context.Background(), pair.RefreshToken, "shop-2")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshAfterRevoke(t *testing.T) {
	s := newTestService(cache.NewMemoryCache())

	pair, err := s.IssuePair(context.Background(), testProfessional(), "shop-1")
	require.NoError(t, err)

	require.NoError(t, s.Revoke(context.Background(), "prof-1", "shop-1"))

	_, err = s.Refresh(context.Background(), pair.RefreshToken, "shop-1")
	assert.ErrorIs(t, err, ErrRevoked)
}

func TestNewIssuanceSupersedesOldRefreshToken(t *testing.T) {
	s := newTestService(cache.NewMemoryCache())

	first, err := s.IssuePair(context.Background(), testProfessional(), "shop-1")
	require.NoError(t, err)

	// Tokens embed issue time at second precision; step past it so the
	// second issuance signs a different string.
	time.Sleep(1100 * time.Millisecond)

	second, err := s.IssuePair(context.Background(), testProfessional(), "shop-1")
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = s.Refresh(context.Background(), first.RefreshToken, "shop-1")
	assert.ErrorIs(t, err, ErrRevoked)

	_, err = s.Refresh(context.Background(), second.RefreshToken, "shop-1")
	assert.NoError(t, err)
}

func TestRevokeAllCoversEveryTenant(t *testing.T) {
	s := newTestService(cache.NewMemoryCache())

	one, err := s.IssuePair(context.Background(), testProfessional(), "shop-1")
	require.NoError(t, err)
	two, err := s.IssuePair(context.Background(), testProfessional(), "shop-2")
	require.NoError(t, err)

	require.NoError(t, s.RevokeAll(context.Background(), "prof-1"))

	_, err = s.Refresh(context.Background(), one.RefreshToken, "shop-1")
	assert.ErrorIs(t, err, ErrRevoked)
	_, err = s.Refresh(context.Background(), two.RefreshToken, "shop-2")
	assert.ErrorIs(t, err, ErrRevoked)
}

func TestRefreshFailsClosedWhenStoreUnavailable(t *testing.T) {
	healthy := cache.NewMemoryCache()
	s := newTestService(healthy)

	pair, err := s.IssuePair(context.Background(), testProfessional(), "shop-1")
	require.NoError(t, err)

	// Same signing key, unreachable store: the refresh must be denied
	// with a real error, not ErrRevoked.
	down := newTestService(brokenCache{})
	_, err = down.Refresh(context.Background(), pair.RefreshToken, "shop-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRevoked)
	assert.NotErrorIs(t, err, ErrInvalidToken)
}

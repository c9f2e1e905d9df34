package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/otavioajr/shaving-project/pkg/cache"
	"github.com/otavioajr/shaving-project/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errCounterDown = errors.New("connection refused")

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) (string, error) { return "", cache.ErrCacheMiss }
func (brokenCache) Set(context.Context, string, string, time.Duration) error {
	return nil
}
func (brokenCache) Delete(context.Context, string) error       { return nil }
func (brokenCache) DeletePrefix(context.Context, string) error { return nil }
func (brokenCache) Increment(context.Context, string, time.Duration) (int64, error) {
	return 0, errCounterDown
}

// brokenReadCache counts fine but cannot read bucket counters back.
type brokenReadCache struct{ cache.Cache }

func (brokenReadCache) Get(context.Context, string) (string, error) {
	return "", errCounterDown
}

func testConfig() config.RateLimitConfig {
	return config.RateLimitConfig{
		IPLimit:      3,
		IPWindow:     time.Minute,
		TenantLimit:  5,
		TenantWindow: time.Minute,
	}
}

// newTestLimiter pins the limiter's clock so bucket boundaries are
// deterministic. The zero offset lands mid-bucket.
func newTestLimiter(c cache.Cache, offset time.Duration) *Limiter {
	l := NewLimiter(c, testConfig(), zap.NewNop())
	at := time.UnixMilli(0).Add(90*time.Second + offset)
	l.now = func() time.Time { return at }
	return l
}

func TestCheckAllowsWithinIPLimit(t *testing.T) {
	l := newTestLimiter(cache.NewMemoryCache(), 0)

	for i := 0; i < 3; i++ {
		result, err := l.Check(context.Background(), "1.2.3.4", "")
		require.NoError(t, err)
		assert.True(t, result.Allowed)
		assert.Equal(t, ScopeIP, result.Scope)
		assert.Equal(t, 3-(i+1), result.Remaining)
	}
}

func TestCheckDeniesOverIPLimit(t *testing.T) {
	l := newTestLimiter(cache.NewMemoryCache(), 0)

	for i := 0; i < 3; i++ {
		_, err := l.Check(context.Background(), "1.2.3.4", "")
		require.NoError(t, err)
	}

	result, err := l.Check(context.Background(), "1.2.3.4", "")
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, ScopeIP, result.Scope)
	assert.Equal(t, 0, result.Remaining)
	assert.False(t, result.Reset.IsZero())
}

func TestCheckDeniesBurstAcrossWindowBoundary(t *testing.T) {
	mem := cache.NewMemoryCache()

	// Exhaust the window right before a bucket boundary.
	l := newTestLimiter(mem, 24*time.Second)
	for i := 0; i < 3; i++ {
		result, err := l.Check(context.Background(), "1.2.3.4", "")
		require.NoError(t, err)
		require.True(t, result.Allowed)
	}

	// Shortly after the boundary the previous bucket still dominates
	// the trailing window, so the burst may not simply start over.
	l = newTestLimiter(mem, 36*time.Second)
	result, err := l.Check(context.Background(), "1.2.3.4", "")
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, ScopeIP, result.Scope)
	assert.Equal(t, 0, result.Remaining)
}

func TestCheckAllowsAfterPreviousWindowDecays(t *testing.T) {
	mem := cache.NewMemoryCache()

	l := newTestLimiter(mem, 0)
	for i := 0; i < 3; i++ {
		_, err := l.Check(context.Background(), "1.2.3.4", "")
		require.NoError(t, err)
	}

	// Two buckets later the old counts no longer overlap the window.
	l = newTestLimiter(mem, 2*time.Minute)
	result, err := l.Check(context.Background(), "1.2.3.4", "")
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, 2, result.Remaining)
}

func TestCheckIsolatesIPs(t *testing.T) {
	l := newTestLimiter(cache.NewMemoryCache(), 0)

	for i := 0; i < 3; i++ {
		_, err := l.Check(context.Background(), "1.2.3.4", "")
		require.NoError(t, err)
	}

	result, err := l.Check(context.Background(), "5.6.7.8", "")
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestCheckReportsTenantWindowWhenTenantKnown(t *testing.T) {
	l := newTestLimiter(cache.NewMemoryCache(), 0)

	result, err := l.Check(context.Background(), "1.2.3.4", "shop-1")
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, ScopeTenant, result.Scope)
	assert.Equal(t, 5, result.Limit)
	assert.Equal(t, 4, result.Remaining)
}

func TestCheckDeniesOverTenantLimit(t *testing.T) {
	l := newTestLimiter(cache.NewMemoryCache(), 0)

	// Rotate IPs so only the shared tenant window fills up.
	ips := []string{"1.1.1.1", "2.2.2.2", "3.3.3.3", "4.4.4.4", "5.5.5.5", "6.6.6.6"}
	var last Result
	for _, ip := range ips {
		var err error
		last, err = l.Check(context.Background(), ip, "shop-1")
		require.NoError(t, err)
	}

	assert.False(t, last.Allowed)
	assert.Equal(t, ScopeTenant, last.Scope)
	assert.Equal(t, 0, last.Remaining)
}

func TestCheckIPDenialSkipsTenantWindow(t *testing.T) {
	l := newTestLimiter(cache.NewMemoryCache(), 0)

	for i := 0; i < 4; i++ {
		_, err := l.Check(context.Background(), "1.2.3.4", "shop-1")
		require.NoError(t, err)
	}

	// Three requests entered the tenant window; the IP-denied fourth
	// must not have consumed a tenant unit, leaving one for this IP.
	result, err := l.Check(context.Background(), "5.6.7.8", "shop-1")
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, ScopeTenant, result.Scope)
	assert.Equal(t, 1, result.Remaining)
}

func TestCheckFailsClosedWhenCounterUnavailable(t *testing.T) {
	l := newTestLimiter(brokenCache{}, 0)

	_, err := l.Check(context.Background(), "1.2.3.4", "shop-1")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestCheckFailsClosedWhenPreviousBucketUnreadable(t *testing.T) {
	l := newTestLimiter(brokenReadCache{cache.NewMemoryCache()}, 0)

	_, err := l.Check(context.Background(), "1.2.3.4", "")
	assert.ErrorIs(t, err, ErrUnavailable)
}

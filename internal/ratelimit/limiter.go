// Package ratelimit implements the dual-scope request limiter: a
// per-IP window checked first and a per-tenant window checked once the
// tenant is known. Counters live in the cache service so every
// instance shares the same windows.
package ratelimit

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/otavioajr/shaving-project/pkg/cache"
	"github.com/otavioajr/shaving-project/pkg/config"
	"go.uber.org/zap"
)

// Limiter scopes.
const (
	ScopeIP     = "ip"
	ScopeTenant = "tenant"
)

const (
	ipKeyPrefix     = "barbershop:ratelimit:ip:"
	tenantKeyPrefix = "barbershop:ratelimit:tenant:"
)

// ErrUnavailable is returned when the cache backend cannot be reached.
// The limiter fails closed in that case: callers must deny the request.
var ErrUnavailable = errors.New("rate limiter unavailable")

// Result reports the outcome of a limit check. When the request is
// denied, Scope names the window that rejected it; when allowed, the
// numbers reflect the tenant window if a tenant was present, otherwise
// the IP window.
type Result struct {
	Allowed   bool
	Scope     string
	Limit     int
	Remaining int
	Reset     time.Time
}

// Limiter enforces the per-IP and per-tenant windows. Each window is a
// sliding window approximated from two fixed buckets: the previous
// bucket's count is weighted by how much of it still overlaps the
// trailing window and added to the current bucket's count.
type Limiter struct {
	cache cache.Cache
	cfg   config.RateLimitConfig
	log   *zap.Logger
	now   func() time.Time
}

// NewLimiter creates a limiter with the given window configuration.
func NewLimiter(c cache.Cache, cfg config.RateLimitConfig, log *zap.Logger) *Limiter {
	return &Limiter{
		cache: c,
		cfg:   cfg,
		log:   log,
		now:   time.Now,
	}
}

// Check consumes one request unit. The IP window is always consulted
// first; if it denies, the tenant window is not touched. barbershopID
// may be empty when tenant resolution did not run for the request.
func (l *Limiter) Check(ctx context.Context, ip, barbershopID string) (Result, error) {
	ipResult, err := l.consume(ctx, ipKeyPrefix+ip, ScopeIP, l.cfg.IPLimit, l.cfg.IPWindow)
	if err != nil {
		return Result{Scope: ScopeIP, Limit: l.cfg.IPLimit}, ErrUnavailable
	}
	if !ipResult.Allowed {
		return ipResult, nil
	}

	if barbershopID == "" {
		return ipResult, nil
	}

	tenantResult, err := l.consume(ctx, tenantKeyPrefix+barbershopID, ScopeTenant, l.cfg.TenantLimit, l.cfg.TenantWindow)
	if err != nil {
		return Result{Scope: ScopeTenant, Limit: l.cfg.TenantLimit}, ErrUnavailable
	}

	// Tenant numbers are the reported ceiling once a tenant is known,
	// whether or not the request passed.
	return tenantResult, nil
}

func (l *Limiter) consume(ctx context.Context, key, scope string, limit int, window time.Duration) (Result, error) {
	now := l.now()
	windowMs := window.Milliseconds()
	bucket := now.UnixMilli() / windowMs

	// Bucket counters live twice the window so the previous bucket is
	// still readable for the whole of the current one.
	count, err := l.cache.Increment(ctx, bucketKey(key, bucket), 2*window)
	if err != nil {
		l.log.Error("rate limit counter unavailable",
			zap.String("scope", scope),
			zap.Error(err))
		return Result{}, err
	}

	previous, err := l.bucketCount(ctx, bucketKey(key, bucket-1))
	if err != nil {
		l.log.Error("rate limit counter unavailable",
			zap.String("scope", scope),
			zap.Error(err))
		return Result{}, err
	}

	elapsed := float64(now.UnixMilli()-bucket*windowMs) / float64(windowMs)
	weighted := float64(previous)*(1-elapsed) + float64(count)

	remaining := limit - int(math.Ceil(weighted))
	if remaining < 0 {
		remaining = 0
	}

	return Result{
		Allowed:   weighted <= float64(limit),
		Scope:     scope,
		Limit:     limit,
		Remaining: remaining,
		Reset:     time.UnixMilli((bucket + 1) * windowMs),
	}, nil
}

func bucketKey(key string, bucket int64) string {
	return key + ":" + strconv.FormatInt(bucket, 10)
}

func (l *Limiter) bucketCount(ctx context.Context, key string) (int64, error) {
	value, err := l.cache.Get(ctx, key)
	if errors.Is(err, cache.ErrCacheMiss) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	count, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, nil
	}
	return count, nil
}

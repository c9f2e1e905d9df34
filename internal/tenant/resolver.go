// Package tenant resolves the x-tenant-slug request header to an
// internal barbershop id using cache-aside over the persistent store.
package tenant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/otavioajr/shaving-project/internal/model"
	"github.com/otavioajr/shaving-project/pkg/cache"
	"github.com/otavioajr/shaving-project/prometheus"
	"go.uber.org/zap"
)

// ErrNotFound is returned when the slug does not map to an active
// barbershop. Inactive tenants are deliberately indistinguishable from
// missing ones so disabled shops cannot be enumerated by slug.
var ErrNotFound = errors.New("tenant not found")

const cacheKeyPrefix = "barbershop:tenant:"

// Store is the persistence lookup the resolver falls back to on a
// cache miss.
type Store interface {
	FindBarbershopBySlug(ctx context.Context, slug string) (*model.Barbershop, error)
}

// Resolver maps tenant slugs to barbershop ids.
type Resolver struct {
	store Store
	cache cache.Cache
	ttl   time.Duration
	log   *zap.Logger
}

// NewResolver creates a new tenant resolver.
func NewResolver(store Store, c cache.Cache, ttl time.Duration, log *zap.Logger) *Resolver {
	return &Resolver{
		store: store,
		cache: c,
		ttl:   ttl,
		log:   log,
	}
}

// Resolve returns the barbershop id for slug. Unknown and inactive
// slugs yield ErrNotFound; a failing store yields the store's error.
// Only active barbershops are ever cached, so a cache hit implies
// active. Cache failures degrade to direct store lookups; they never
// fail the request.
func (r *Resolver) Resolve(ctx context.Context, slug string) (string, error) {
	key := cacheKeyPrefix + slug

	id, err := r.cache.Get(ctx, key)
	if err == nil {
		prometheus.TenantCacheCounter.WithLabelValues("hit").Inc()
		return id, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		// Cache is unhealthy; the persistent store remains the source
		// of truth for tenant resolution.
		r.log.Warn("tenant cache lookup failed, falling back to database",
			zap.String("slug", slug),
			zap.Error(err))
	}
	prometheus.TenantCacheCounter.WithLabelValues("miss").Inc()

	barbershop, err := r.store.FindBarbershopBySlug(ctx, slug)
	if err != nil {
		// A store failure is not a missing tenant; callers map it to a
		// server error instead of a 404.
		return "", fmt.Errorf("failed to look up tenant %s: %w", slug, err)
	}
	if barbershop == nil || !barbershop.IsActive {
		return "", ErrNotFound
	}

	// Best-effort population: a cache write failure must not fail the
	// triggering request.
	if err := r.cache.Set(ctx, key, barbershop.ID, r.ttl); err != nil {
		r.log.Warn("failed to populate tenant cache",
			zap.String("slug", slug),
			zap.Error(err))
	}

	return barbershop.ID, nil
}

// Invalidate drops the cached entry for slug. Called when a
// barbershop's active flag changes so the next request re-derives it.
func (r *Resolver) Invalidate(ctx context.Context, slug string) error {
	return r.cache.Delete(ctx, cacheKeyPrefix+slug)
}

package tenant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/otavioajr/shaving-project/internal/model"
	"github.com/otavioajr/shaving-project/pkg/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubStore serves barbershops from a map and counts lookups.
type stubStore struct {
	shops   map[string]*model.Barbershop
	lookups int
}

func (s *stubStore) FindBarbershopBySlug(_ context.Context, slug string) (*model.Barbershop, error) {
	s.lookups++
	return s.shops[slug], nil
}

var errStoreDown = errors.New("connection refused")

type failingStore struct{}

func (failingStore) FindBarbershopBySlug(context.Context, string) (*model.Barbershop, error) {
	return nil, errStoreDown
}

// brokenCache fails reads and writes but never panics the resolver.
type brokenCache struct{}

func (brokenCache) Get(context.Context, string) (string, error) {
	return "", errors.New("connection refused")
}
func (brokenCache) Set(context.Context, string, string, time.Duration) error {
	return errors.New("connection refused")
}
func (brokenCache) Delete(context.Context, string) error       { return nil }
func (brokenCache) DeletePrefix(context.Context, string) error { return nil }
func (brokenCache) Increment(context.Context, string, time.Duration) (int64, error) {
	return 0, errors.New("connection refused")
}

func activeShop() *model.Barbershop {
	return &model.Barbershop{
		ID:       "shop-1",
		Name:     "Fade Factory",
		Slug:     "fade-factory",
		IsActive: true,
	}
}

func TestResolvePopulatesCache(t *testing.T) {
	store := &stubStore{shops: map[string]*model.Barbershop{"fade-factory": activeShop()}}
	r := NewResolver(store, cache.NewMemoryCache(), 5*time.Minute, zap.NewNop())

	id, err := r.Resolve(context.Background(), "fade-factory")
	require.NoError(t, err)
	assert.Equal(t, "shop-1", id)
	assert.Equal(t, 1, store.lookups)

	// Second resolution is served from the cache.
	id, err = r.Resolve(context.Background(), "fade-factory")
	require.NoError(t, err)
	assert.Equal(t, "shop-1", id)
	assert.Equal(t, 1, store.lookups)
}

func TestResolveUnknownSlug(t *testing.T) {
	store := &stubStore{shops: map[string]*model.Barbershop{}}
	r := NewResolver(store, cache.NewMemoryCache(), 5*time.Minute, zap.NewNop())

	_, err := r.Resolve(context.Background(), "no-such-shop")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveInactiveShopIndistinguishableFromMissing(t *testing.T) {
	shop := activeShop()
	shop.IsActive = false
	store := &stubStore{shops: map[string]*model.Barbershop{"fade-factory": shop}}
	mem := cache.NewMemoryCache()
	r := NewResolver(store, mem, 5*time.Minute, zap.NewNop())

	_, err := r.Resolve(context.Background(), "fade-factory")
	assert.ErrorIs(t, err, ErrNotFound)

	// Inactive shops are never cached.
	_, err = mem.Get(context.Background(), "barbershop:tenant:fade-factory")
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}

func TestResolveStoreFailure(t *testing.T) {
	r := NewResolver(failingStore{}, cache.NewMemoryCache(), 5*time.Minute, zap.NewNop())

	// A store outage must stay distinguishable from a missing tenant so
	// callers do not serve it as a 404.
	_, err := r.Resolve(context.Background(), "fade-factory")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, errStoreDown)
}

func TestResolveFallsBackWhenCacheUnhealthy(t *testing.T) {
	store := &stubStore{shops: map[string]*model.Barbershop{"fade-factory": activeShop()}}
	r := NewResolver(store, brokenCache{}, 5*time.Minute, zap.NewNop())

	// Cache read and write both fail; the store still answers.
	id, err := r.Resolve(context.Background(), "fade-factory")
	require.NoError(t, err)
	assert.Equal(t, "shop-1", id)
}

func TestInvalidateForcesReresolution(t *testing.T) {
	shop := activeShop()
	store := &stubStore{shops: map[string]*model.Barbershop{"fade-factory": shop}}
	r := NewResolver(store, cache.NewMemoryCache(), 5*time.Minute, zap.NewNop())

	_, err := r.Resolve(context.Background(), "fade-factory")
	require.NoError(t, err)

	shop.IsActive = false
	require.NoError(t, r.Invalidate(context.Background(), "fade-factory"))

	_, err = r.Resolve(context.Background(), "fade-factory")
	assert.ErrorIs(t, err, ErrNotFound)
}

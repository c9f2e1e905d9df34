package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/otavioajr/shaving-project/internal/model"
	"github.com/otavioajr/shaving-project/internal/tenant"
	"github.com/otavioajr/shaving-project/pkg/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubStore struct {
	shops map[string]*model.Barbershop
}

func (s *stubStore) FindBarbershopBySlug(_ context.Context, slug string) (*model.Barbershop, error) {
	return s.shops[slug], nil
}

type downStore struct{}

func (downStore) FindBarbershopBySlug(context.Context, string) (*model.Barbershop, error) {
	return nil, errors.New("connection refused")
}

func testResolver() *tenant.Resolver {
	store := &stubStore{shops: map[string]*model.Barbershop{
		"fade-factory": {ID: "shop-1", Name: "Fade Factory", Slug: "fade-factory", IsActive: true},
	}}
	return tenant.NewResolver(store, cache.NewMemoryCache(), 5*time.Minute, zap.NewNop())
}

func newTenantTestServer(resolver *tenant.Resolver) *echo.Echo {
	e := echo.New()
	e.Use(TenantMiddleware(resolver))
	handler := func(c echo.Context) error {
		id, _ := TenantID(c)
		return c.String(http.StatusOK, id)
	}
	e.GET("/", handler)
	e.GET("/health", handler)
	e.GET("/api/appointments", handler)
	e.POST("/api/barbershops", handler)
	e.GET("/api/barbershops/:slug", handler)
	e.PATCH("/api/barbershops/:slug", handler)
	return e
}

func TestTenantMiddlewareResolvesSlug(t *testing.T) {
	e := newTenantTestServer(testResolver())

	req := httptest.NewRequest(http.MethodGet, "/api/appointments", nil)
	req.Header.Set(TenantHeader, "fade-factory")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "shop-1", rec.Body.String())
}

func TestTenantMiddlewareMissingHeader(t *testing.T) {
	e := newTenantTestServer(testResolver())

	req := httptest.NewRequest(http.MethodGet, "/api/appointments", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Missing x-tenant-slug header")
}

func TestTenantMiddlewareUnknownSlug(t *testing.T) {
	e := newTenantTestServer(testResolver())

	req := httptest.NewRequest(http.MethodGet, "/api/appointments", nil)
	req.Header.Set(TenantHeader, "no-such-shop")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTenantMiddlewareSkipsPublicRoutes(t *testing.T) {
	e := newTenantTestServer(testResolver())

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/"},
		{http.MethodGet, "/health"},
		{http.MethodPost, "/api/barbershops"},
		{http.MethodGet, "/api/barbershops/fade-factory"},
	} {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestTenantMiddlewareWritesToSlugPathNeedTenant(t *testing.T) {
	e := newTenantTestServer(testResolver())

	// Only GET on the slug path is public; other methods still resolve
	// the tenant header.
	req := httptest.NewRequest(http.MethodPatch, "/api/barbershops/fade-factory", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Missing x-tenant-slug header")
}

func TestTenantMiddlewareStoreFailureIsServerError(t *testing.T) {
	resolver := tenant.NewResolver(downStore{}, cache.NewMemoryCache(), 5*time.Minute, zap.NewNop())
	e := newTenantTestServer(resolver)

	// A database outage must not masquerade as an unknown tenant.
	req := httptest.NewRequest(http.MethodGet, "/api/appointments", nil)
	req.Header.Set(TenantHeader, "fade-factory")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "Service unavailable")
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/otavioajr/shaving-project/pkg/jwtutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTUtil() *jwtutil.JWTUtil {
	return jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey: "test-signing-key",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	})
}

func newAuthTestServer(j *jwtutil.JWTUtil) *echo.Echo {
	e := echo.New()

	// Simulate the tenant middleware having resolved shop-1.
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(tenantIDKey, "shop-1")
			return next(c)
		}
	})

	handler := func(c echo.Context) error {
		claims, _ := CurrentUser(c)
		return c.String(http.StatusOK, claims.ProfessionalID)
	}
	e.GET("/api/appointments", handler, RequireAuth(j))
	e.POST("/api/professionals", handler, RequireAuth(j), RequireAdmin())
	return e
}

func TestRequireAuthAcceptsValidToken(t *testing.T) {
	j := testJWTUtil()
	e := newAuthTestServer(j)

	token, err := j.GenerateAccessToken("prof-1", "barber@shop.test", "shop-1", "BARBER")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/appointments", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "prof-1", rec.Body.String())
}

func TestRequireAuthRejectsMissingHeader(t *testing.T) {
	e := newAuthTestServer(testJWTUtil())

	req := httptest.NewRequest(http.MethodGet, "/api/appointments", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthRejectsMalformedHeader(t *testing.T) {
	e := newAuthTestServer(testJWTUtil())

	req := httptest.NewRequest(http.MethodGet, "/api/appointments", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthRejectsRefreshToken(t *testing.T) {
	j := testJWTUtil()
	e := newAuthTestServer(j)

	refresh, err := j.GenerateRefreshToken("prof-1", "barber@shop.test", "shop-1", "BARBER")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/appointments", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthRejectsCrossTenantToken(t *testing.T) {
	j := testJWTUtil()
	e := newAuthTestServer(j)

	token, err := j.GenerateAccessToken("prof-1", "barber@shop.test", "shop-2", "BARBER")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/appointments", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	j := testJWTUtil()
	e := newAuthTestServer(j)

	barber, err := j.GenerateAccessToken("prof-1", "barber@shop.test", "shop-1", "BARBER")
	require.NoError(t, err)
	admin, err := j.GenerateAccessToken("prof-2", "owner@shop.test", "shop-1", "ADMIN")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/professionals", nil)
	req.Header.Set("Authorization", "Bearer "+barber)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/professionals", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

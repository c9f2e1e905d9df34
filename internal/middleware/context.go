package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/otavioajr/shaving-project/pkg/jwtutil"
)

// Context keys set by the tenant and auth middleware. Handlers read
// them through the typed accessors below instead of poking at the
// request.
const (
	tenantIDKey   = "tenant_id"
	tenantSlugKey = "tenant_slug"
	userKey       = "user"
)

// TenantID returns the resolved barbershop id for the request.
func TenantID(c echo.Context) (string, bool) {
	id, ok := c.Get(tenantIDKey).(string)
	return id, ok && id != ""
}

// TenantSlug returns the tenant slug the request was resolved from.
func TenantSlug(c echo.Context) (string, bool) {
	slug, ok := c.Get(tenantSlugKey).(string)
	return slug, ok && slug != ""
}

// CurrentUser returns the authenticated professional's claims.
func CurrentUser(c echo.Context) (*jwtutil.AuthClaims, bool) {
	claims, ok := c.Get(userKey).(*jwtutil.AuthClaims)
	return claims, ok
}

package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/otavioajr/shaving-project/internal/tenant"
	"github.com/otavioajr/shaving-project/pkg/logger"
	"go.uber.org/zap"
)

// TenantHeader is the request header carrying the tenant slug.
const TenantHeader = "x-tenant-slug"

// publicPaths never require a tenant context and are never rate
// limited.
var publicPaths = map[string]bool{
	"/":        true,
	"/health":  true,
	"/docs":    true,
	"/metrics": true,
}

// publicBarbershopPattern matches the public tenant-info-by-slug route.
var publicBarbershopPattern = regexp.MustCompile(`^/api/barbershops/[a-z0-9-]+$`)

// isPublicPath reports whether path bypasses tenant resolution and
// rate limiting. Callers strip the query string first.
func isPublicPath(path string) bool {
	return publicPaths[path] || strings.HasPrefix(path, "/docs/")
}

// isPublicBarbershopRoute reports whether the request is tenant self-
// registration or the public info-by-slug endpoint, which carry no
// tenant context by design. Only those exact method/path pairs bypass
// resolution; a PATCH or DELETE on a slug path still needs a tenant.
func isPublicBarbershopRoute(method, path string) bool {
	if method == http.MethodPost && path == "/api/barbershops" {
		return true
	}
	return method == http.MethodGet && publicBarbershopPattern.MatchString(path)
}

// TenantMiddleware resolves the x-tenant-slug header to a barbershop
// id and stores it on the request context. A missing or unknown slug
// is a 404; inactive tenants look identical to missing ones. A store
// failure is a 503, never a 404.
func TenantMiddleware(resolver *tenant.Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path

			if isPublicPath(path) || isPublicBarbershopRoute(c.Request().Method, path) {
				return next(c)
			}

			slug := c.Request().Header.Get(TenantHeader)
			if slug == "" {
				return c.JSON(http.StatusNotFound, echo.Map{
					"error":   "Tenant not found",
					"message": "Missing x-tenant-slug header",
				})
			}

			barbershopID, err := resolver.Resolve(c.Request().Context(), slug)
			if err != nil {
				if !errors.Is(err, tenant.ErrNotFound) {
					// Store outage, not a missing tenant.
					logger.FromEcho(c).Error("tenant resolution failed", zap.Error(err))
					return c.JSON(http.StatusServiceUnavailable, echo.Map{
						"error":   "Service unavailable",
						"message": "Could not resolve tenant, try again later",
					})
				}
				return c.JSON(http.StatusNotFound, echo.Map{
					"error":   "Tenant not found",
					"message": fmt.Sprintf("Barbershop with slug %q does not exist", slug),
				})
			}

			c.Set(tenantIDKey, barbershopID)
			c.Set(tenantSlugKey, slug)

			return next(c)
		}
	}
}

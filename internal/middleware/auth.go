package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/otavioajr/shaving-project/pkg/jwtutil"
	"github.com/otavioajr/shaving-project/pkg/logger"
	"go.uber.org/zap"
)

// RequireAuth validates the Bearer access token and rejects tokens
// issued for a different tenant than the one this request resolved to.
func RequireAuth(jwtUtil *jwtutil.JWTUtil) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Authentication required"})
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				log.Warn("Invalid authorization header format")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid authorization header format"})
			}

			claims, err := jwtUtil.ValidateToken(parts[1], jwtutil.TokenTypeAccess)
			if err != nil {
				log.Warn("Invalid or expired token", zap.Error(err))
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid or expired token"})
			}

			// A token from one barbershop must not work on another, even
			// with a valid signature.
			if barbershopID, ok := TenantID(c); ok && claims.BarbershopID != barbershopID {
				log.Warn("Token tenant mismatch",
					zap.String("token_tenant", claims.BarbershopID),
					zap.String("request_tenant", barbershopID))
				return c.JSON(http.StatusForbidden, echo.Map{"error": "Tenant mismatch"})
			}

			c.Set(userKey, claims)

			return next(c)
		}
	}
}

// RequireAdmin allows only professionals with the ADMIN role. Must run
// after RequireAuth.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := CurrentUser(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Authentication required"})
			}
			if claims.Role != "ADMIN" {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "Admin role required"})
			}
			return next(c)
		}
	}
}

package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/otavioajr/shaving-project/internal/ratelimit"
	"github.com/otavioajr/shaving-project/pkg/logger"
	"github.com/otavioajr/shaving-project/prometheus"
	"go.uber.org/zap"
)

// RateLimitMiddleware enforces the per-IP and per-tenant windows and
// annotates responses with X-RateLimit-* headers for the active scope.
// Runs after TenantMiddleware so the tenant window applies when the
// tenant is known. The limiter failing entirely denies the request.
func RateLimitMiddleware(limiter *ratelimit.Limiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if isPublicPath(c.Request().URL.Path) {
				return next(c)
			}

			ip := clientIP(c.Request())
			barbershopID, _ := TenantID(c)

			result, err := limiter.Check(c.Request().Context(), ip, barbershopID)
			if err != nil {
				logger.FromEcho(c).Error("rate limiter check failed", zap.Error(err))
				return c.JSON(http.StatusServiceUnavailable, echo.Map{
					"error":   "Service Unavailable",
					"message": "Rate limiting is temporarily unavailable. Please try again later.",
				})
			}

			setRateLimitHeaders(c, result)

			if !result.Allowed {
				prometheus.RateLimitDeniedCounter.WithLabelValues(result.Scope).Inc()
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error":   "Too Many Requests",
					"message": "Rate limit exceeded. Please try again later.",
				})
			}

			return next(c)
		}
	}
}

func setRateLimitHeaders(c echo.Context, result ratelimit.Result) {
	header := c.Response().Header()
	header.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	header.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	header.Set("X-RateLimit-Reset", strconv.FormatInt(result.Reset.Unix(), 10))
}

// clientIP derives the client address: first x-forwarded-for entry,
// then x-real-ip, then the transport peer address, then "unknown".
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if trimmed := strings.TrimSpace(first); trimmed != "" {
			return trimmed
		}
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}

	return "unknown"
}

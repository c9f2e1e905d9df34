package prometheus

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// Login counter
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "barbershop_login_total",
			Help: "Total number of login attempts",
		},
	)

	// Barbershop self-registration counter
	RegisterCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "barbershop_register_total",
			Help: "Total number of barbershop self-registrations",
		},
	)

	// OTP counters
	OTPRequestCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "barbershop_otp_requests_total",
			Help: "Total number of OTP requests",
		},
	)

	OTPVerifyCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barbershop_otp_verifications_total",
			Help: "Total number of OTP verification attempts",
		},
		[]string{"result"}, // "success" or "failure"
	)

	// Token refresh counter
	TokenRefreshCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "barbershop_token_refresh_total",
			Help: "Total number of token refresh attempts",
		},
	)

	// Rate limit denials by scope
	RateLimitDeniedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barbershop_ratelimit_denied_total",
			Help: "Total number of rate-limited requests by scope",
		},
		[]string{"scope"}, // "ip" or "tenant"
	)

	// Tenant cache lookups
	TenantCacheCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barbershop_tenant_cache_total",
			Help: "Total number of tenant cache lookups by result",
		},
		[]string{"result"}, // "hit" or "miss"
	)

	// Scheduling conflicts rejected
	AppointmentConflictCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "barbershop_appointment_conflicts_total",
			Help: "Total number of appointments rejected due to scheduling conflicts",
		},
	)

	// Error counters
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barbershop_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"}, // "invalid_request", "invalid_credentials", "invalid_token", "revoked_token" etc.
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barbershop_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"path", "method", "status"},
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "barbershop_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "barbershop_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // "query", "insert", "update", "delete"
	)
)

// InitMetrics registers all metrics with the default registry
func InitMetrics() {
	prometheus.MustRegister(
		LoginCounter,
		RegisterCounter,
		OTPRequestCounter,
		OTPVerifyCounter,
		TokenRefreshCounter,
		RateLimitDeniedCounter,
		TenantCacheCounter,
		AppointmentConflictCounter,
		AuthErrorCounter,
		HTTPRequestCounter,
		RequestDuration,
		DBOperationDuration,
	)
}

// RecordAuthError increments the auth error counter for the given type
func RecordAuthError(errorType string) {
	AuthErrorCounter.WithLabelValues(errorType).Inc()
}

// TrackDBOperation returns a function that records the duration of a
// database operation when called. Use with defer:
//
//	defer prometheus.TrackDBOperation("query")(time.Now())
func TrackDBOperation(operation string) func(time.Time) {
	return func(start time.Time) {
		DBOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

// Middleware returns an Echo middleware that records request counts and
// durations per route.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			status := c.Response().Status
			if err != nil {
				if httpErr, ok := err.(*echo.HTTPError); ok {
					status = httpErr.Code
				}
			}

			// Use the route pattern, not the raw URL, to bound label cardinality
			path := c.Path()
			method := c.Request().Method
			statusLabel := strconv.Itoa(status)

			HTTPRequestCounter.WithLabelValues(path, method, statusLabel).Inc()
			RequestDuration.WithLabelValues(path, method, statusLabel).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

// GetPrometheusHandler returns the HTTP handler for the metrics endpoint
func GetPrometheusHandler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}

package handler

import (
	"errors"
	"net/http"
	"regexp"

	"github.com/labstack/echo/v4"
	"github.com/otavioajr/shaving-project/internal/middleware"
	"github.com/otavioajr/shaving-project/internal/otp"
	"github.com/otavioajr/shaving-project/internal/repository"
	"github.com/otavioajr/shaving-project/internal/token"
	"github.com/otavioajr/shaving-project/pkg/logger"
	"github.com/otavioajr/shaving-project/prometheus"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var otpCodePattern = regexp.MustCompile(`^\d{6}$`)

// AuthHandler serves login, token refresh, logout and the OTP flow.
type AuthHandler struct {
	repo   *repository.Repository
	tokens *token.Service
	otp    *otp.Service
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(repo *repository.Repository, tokens *token.Service, otpService *otp.Service) *AuthHandler {
	return &AuthHandler{
		repo:   repo,
		tokens: tokens,
		otp:    otpService,
	}
}

// Login authenticates a professional with email and password and
// issues a token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.LoginCounter.Inc()

	barbershopID, ok := middleware.TenantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Tenant not identified"})
	}

	// Parse request
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Validation failed"})
	}

	if req.Email == "" || req.Password == "" {
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Validation failed", "message": "email and password are required"})
	}

	professional, err := h.repo.FindProfessionalByEmail(c.Request().Context(), req.Email, barbershopID)
	if err != nil {
		log.Error("Failed to look up professional", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Login failed"})
	}
	if professional == nil {
		prometheus.RecordAuthError("invalid_credentials")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid credentials"})
	}

	if !professional.IsActive {
		prometheus.RecordAuthError("inactive_professional")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Account is disabled"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(professional.PasswordHash), []byte(req.Password)); err != nil {
		log.Warn("Invalid password", zap.String("email", req.Email))
		prometheus.RecordAuthError("invalid_credentials")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid credentials"})
	}

	pair, err := h.tokens.IssuePair(c.Request().Context(), professional, barbershopID)
	if err != nil {
		log.Error("Failed to issue token pair", zap.Error(err))
		prometheus.RecordAuthError("token_issue_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Login failed"})
	}

	log.Info("Professional logged in",
		zap.String("professional_id", professional.ID),
		zap.String("barbershop_id", barbershopID))

	return c.JSON(http.StatusOK, echo.Map{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"professional":  professional.Public(),
	})
}

// Refresh exchanges a valid, non-revoked refresh token for a new
// access token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.TokenRefreshCounter.Inc()

	barbershopID, ok := middleware.TenantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Tenant not identified"})
	}

	var req struct {
		RefreshToken string `json:"refresh_token"`
	}

	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Validation failed", "message": "refresh_token is required"})
	}

	accessToken, err := h.tokens.Refresh(c.Request().Context(), req.RefreshToken, barbershopID)
	if errors.Is(err, token.ErrInvalidToken) {
		prometheus.RecordAuthError("invalid_token")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid refresh token"})
	}
	if errors.Is(err, token.ErrRevoked) {
		prometheus.RecordAuthError("revoked_token")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Refresh token expired or revoked"})
	}
	if err != nil {
		// The refresh store could not be consulted; denying is the
		// safe answer.
		log.Error("Failed to refresh token", zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "Token refresh temporarily unavailable"})
	}

	return c.JSON(http.StatusOK, echo.Map{"access_token": accessToken})
}

// Logout revokes the caller's refresh token for this tenant.
func (h *AuthHandler) Logout(c echo.Context) error {
	log := logger.FromEcho(c)

	barbershopID, ok := middleware.TenantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Tenant not identified"})
	}

	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Authentication required"})
	}

	if err := h.tokens.Revoke(c.Request().Context(), claims.ProfessionalID, barbershopID); err != nil {
		log.Error("Failed to revoke refresh token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Logout failed"})
	}

	log.Info("Professional logged out", zap.String("professional_id", claims.ProfessionalID))

	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out successfully"})
}

// RequestOTP generates a login code for the given email. The response
// never discloses whether the account exists.
func (h *AuthHandler) RequestOTP(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.OTPRequestCounter.Inc()

	barbershopID, ok := middleware.TenantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Tenant not identified"})
	}

	var req struct {
		Email string `json:"email"`
	}

	if err := c.Bind(&req); err != nil || req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Validation failed", "message": "email is required"})
	}

	professional, err := h.repo.FindProfessionalByEmail(c.Request().Context(), req.Email, barbershopID)
	if err != nil {
		log.Error("Failed to look up professional for OTP", zap.Error(err))
	}
	if professional != nil && err == nil {
		if err := h.otp.Request(c.Request().Context(), barbershopID, req.Email); err != nil {
			log.Error("Failed to create OTP", zap.Error(err))
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "If the account exists, an OTP was sent"})
}

// VerifyOTP consumes a code and, on success, issues a token pair.
func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	log := logger.FromEcho(c)

	barbershopID, ok := middleware.TenantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Tenant not identified"})
	}

	var req struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}

	if err := c.Bind(&req); err != nil || req.Email == "" || !otpCodePattern.MatchString(req.OTP) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Validation failed", "message": "email and a 6-digit otp are required"})
	}

	valid, err := h.otp.Verify(c.Request().Context(), barbershopID, req.Email, req.OTP)
	if err != nil {
		log.Error("Failed to verify OTP", zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "OTP verification temporarily unavailable"})
	}
	if !valid {
		prometheus.OTPVerifyCounter.WithLabelValues("failure").Inc()
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid OTP"})
	}

	professional, err := h.repo.FindProfessionalByEmail(c.Request().Context(), req.Email, barbershopID)
	if err != nil {
		log.Error("Failed to look up professional", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "OTP verification failed"})
	}
	if professional == nil {
		prometheus.OTPVerifyCounter.WithLabelValues("failure").Inc()
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid OTP"})
	}

	pair, err := h.tokens.IssuePair(c.Request().Context(), professional, barbershopID)
	if err != nil {
		log.Error("Failed to issue token pair", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "OTP verification failed"})
	}

	prometheus.OTPVerifyCounter.WithLabelValues("success").Inc()
	log.Info("Professional logged in via OTP",
		zap.String("professional_id", professional.ID),
		zap.String("barbershop_id", barbershopID))

	return c.JSON(http.StatusOK, echo.Map{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"professional":  professional.Public(),
	})
}

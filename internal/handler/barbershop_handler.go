package handler

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/otavioajr/shaving-project/internal/middleware"
	"github.com/otavioajr/shaving-project/internal/model"
	"github.com/otavioajr/shaving-project/internal/repository"
	"github.com/otavioajr/shaving-project/internal/tenant"
	"github.com/otavioajr/shaving-project/internal/token"
	"github.com/otavioajr/shaving-project/pkg/logger"
	"github.com/otavioajr/shaving-project/prometheus"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Slug rules: lowercase letters, numbers and single hyphens, 3-50
// chars, no leading or trailing hyphen.
var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// BarbershopHandler serves tenant self-registration, the public
// info-by-slug endpoint and tenant management.
type BarbershopHandler struct {
	repo     *repository.Repository
	tokens   *token.Service
	resolver *tenant.Resolver
}

// NewBarbershopHandler creates a barbershop handler.
func NewBarbershopHandler(repo *repository.Repository, tokens *token.Service, resolver *tenant.Resolver) *BarbershopHandler {
	return &BarbershopHandler{
		repo:     repo,
		tokens:   tokens,
		resolver: resolver,
	}
}

// Register is the public tenant self-registration endpoint. It creates
// the barbershop and its first ADMIN professional and issues a token
// pair so the admin is logged in immediately.
func (h *BarbershopHandler) Register(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RegisterCounter.Inc()

	var req struct {
		Name          string `json:"name"`
		Slug          string `json:"slug"`
		AdminName     string `json:"admin_name"`
		AdminEmail    string `json:"admin_email"`
		AdminPassword string `json:"admin_password"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse registration request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Validation failed"})
	}

	req.Slug = strings.ToLower(req.Slug)

	if req.Name == "" || req.AdminName == "" || req.AdminEmail == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Validation failed", "message": "name, admin_name and admin_email are required"})
	}
	if len(req.Slug) < 3 || len(req.Slug) > 50 || !slugPattern.MatchString(req.Slug) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Slug must contain only lowercase letters, numbers, and hyphens"})
	}
	if len(req.AdminPassword) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Validation failed", "message": "password must be at least 8 characters"})
	}

	ctx := c.Request().Context()

	// Slug uniqueness
	existing, err := h.repo.FindBarbershopBySlug(ctx, req.Slug)
	if err != nil {
		log.Error("Failed to check slug", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Registration failed"})
	}
	if existing != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "Slug already in use"})
	}

	// Admin email is globally unique at registration time so one person
	// cannot silently own admin accounts across shops.
	emailTaken, err := h.repo.ProfessionalEmailExists(ctx, req.AdminEmail)
	if err != nil {
		log.Error("Failed to check admin email", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Registration failed"})
	}
	if emailTaken {
		return c.JSON(http.StatusConflict, echo.Map{"error": "Email already registered"})
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Registration failed"})
	}

	barbershop := &model.Barbershop{
		ID:       uuid.New().String(),
		Name:     req.Name,
		Slug:     req.Slug,
		IsActive: true,
	}
	admin := &model.Professional{
		ID:           uuid.New().String(),
		BarbershopID: barbershop.ID,
		Name:         req.AdminName,
		Email:        req.AdminEmail,
		PasswordHash: string(passwordHash),
		Role:         model.RoleAdmin,
		IsActive:     true,
	}

	if err := h.repo.RegisterBarbershop(ctx, barbershop, admin); err != nil {
		log.Error("Failed to register barbershop", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Registration failed"})
	}

	pair, err := h.tokens.IssuePair(ctx, admin, barbershop.ID)
	if err != nil {
		log.Error("Failed to issue token pair after registration", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Registration failed"})
	}

	log.Info("Barbershop registered",
		zap.String("barbershop_id", barbershop.ID),
		zap.String("slug", barbershop.Slug))

	return c.JSON(http.StatusCreated, echo.Map{
		"barbershop":    barbershop,
		"admin":         admin.Public(),
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

// GetPublicInfo is the public tenant-info-by-slug endpoint. It bypasses
// tenant resolution entirely.
func (h *BarbershopHandler) GetPublicInfo(c echo.Context) error {
	slug := c.Param("slug")

	barbershop, err := h.repo.FindBarbershopBySlug(c.Request().Context(), slug)
	if err != nil {
		logger.FromEcho(c).Error("Failed to look up barbershop", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Lookup failed"})
	}
	if barbershop == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Barbershop not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"id":        barbershop.ID,
		"name":      barbershop.Name,
		"slug":      barbershop.Slug,
		"is_active": barbershop.IsActive,
	})
}

// Get returns the authenticated tenant's own record.
func (h *BarbershopHandler) Get(c echo.Context) error {
	barbershopID, ok := middleware.TenantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Tenant not identified"})
	}

	barbershop, err := h.repo.FindBarbershopByID(c.Request().Context(), barbershopID)
	if err != nil {
		logger.FromEcho(c).Error("Failed to look up barbershop", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Lookup failed"})
	}
	if barbershop == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Barbershop not found"})
	}

	return c.JSON(http.StatusOK, barbershop)
}

// Update changes the name or active flag. Deactivating (or
// reactivating) a shop invalidates its tenant cache entry so the
// change takes effect on the next request, not after the cache TTL.
func (h *BarbershopHandler) Update(c echo.Context) error {
	log := logger.FromEcho(c)

	barbershopID, ok := middleware.TenantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Tenant not identified"})
	}

	var req struct {
		Name     *string `json:"name"`
		IsActive *bool   `json:"is_active"`
	}

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Validation failed"})
	}
	if req.Name != nil && *req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Validation failed", "message": "name must not be empty"})
	}

	ctx := c.Request().Context()

	barbershop, err := h.repo.FindBarbershopByID(ctx, barbershopID)
	if err != nil {
		log.Error("Failed to look up barbershop", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Update failed"})
	}
	if barbershop == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Barbershop not found"})
	}

	activeChanged := req.IsActive != nil && *req.IsActive != barbershop.IsActive

	if req.Name != nil {
		barbershop.Name = *req.Name
	}
	if req.IsActive != nil {
		barbershop.IsActive = *req.IsActive
	}

	if err := h.repo.UpdateBarbershop(ctx, barbershop); err != nil {
		log.Error("Failed to update barbershop", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Update failed"})
	}

	if activeChanged {
		if err := h.resolver.Invalidate(ctx, barbershop.Slug); err != nil {
			log.Warn("Failed to invalidate tenant cache", zap.String("slug", barbershop.Slug), zap.Error(err))
		}
	}

	log.Info("Barbershop updated", zap.String("barbershop_id", barbershop.ID))

	return c.JSON(http.StatusOK, barbershop)
}

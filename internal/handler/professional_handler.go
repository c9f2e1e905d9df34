package handler

import (
	"net/http"
	"regexp"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/otavioajr/shaving-project/internal/middleware"
	"github.com/otavioajr/shaving-project/internal/model"
	"github.com/otavioajr/shaving-project/internal/repository"
	"github.com/otavioajr/shaving-project/internal/token"
	"github.com/otavioajr/shaving-project/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ProfessionalHandler manages the staff of a barbershop. Create and
// Delete require the ADMIN role.
type ProfessionalHandler struct {
	repo   *repository.Repository
	tokens *token.Service
}

// NewProfessionalHandler creates a professional handler.
func NewProfessionalHandler(repo *repository.Repository, tokens *token.Service) *ProfessionalHandler {
	return &ProfessionalHandler{repo: repo, tokens: tokens}
}

// List returns a page of the barbershop's professionals.
func (h *ProfessionalHandler) List(c echo.Context) error {
	barbershopID, ok := middleware.TenantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Tenant not identified"})
	}

	page, limit := 1, 20
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(c.QueryParam("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}

	professionals, total, err := h.repo.ListProfessionals(c.Request().Context(), barbershopID, page, limit)
	if err != nil {
		logger.FromEcho(c).Error("Failed to list professionals", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Operation failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data": professionals,
		"pagination": echo.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// Get returns a single professional.
func (h *ProfessionalHandler) Get(c echo.Context) error {
	barbershopID, ok := middleware.TenantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Tenant not identified"})
	}

	professional, err := h.repo.FindProfessionalByID(c.Request().Context(), c.Param("id"), barbershopID)
	if err != nil {
		logger.FromEcho(c).Error("Failed to find professional", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Operation failed"})
	}
	if professional == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Professional not found"})
	}

	return c.JSON(http.StatusOK, professional)
}

// Create adds a professional to the barbershop. Admin only.
func (h *ProfessionalHandler) Create(c echo.Context) error {
	barbershopID, ok := middleware.TenantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Tenant not identified"})
	}

	var req struct {
		Name           string  `json:"name"`
		Email          string  `json:"email"`
		Password       string  `json:"password"`
		Role           string  `json:"role"`
		CommissionRate float64 `json:"commission_rate"`
	}

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Validation failed"})
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Validation failed", "message": "name, email and password are required"})
	}
	if !emailPattern.MatchString(req.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Validation failed", "message": "invalid email"})
	}
	if len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Validation failed", "message": "password must be at least 8 characters"})
	}
	if req.Role == "" {
		req.Role = model.RoleBarber
	}
	if req.Role != model.RoleAdmin && req.Role != model.RoleBarber {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Validation failed", "message": "role must be ADMIN or BARBER"})
	}
	if req.CommissionRate < 0 || req.CommissionRate > 100 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Validation failed", "message": "commission_rate must be between 0 and 100"})
	}

	existing, err := h.repo.FindProfessionalByEmail(c.Request().Context(), req.Email, barbershopID)
	if err != nil {
		logger.FromEcho(c).Error("Failed to check professional email", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Operation failed"})
	}
	if existing != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "Email already registered"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.FromEcho(c).Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Operation failed"})
	}

	professional := &model.Professional{
		ID:             uuid.New().String(),
		BarbershopID:   barbershopID,
		Name:           req.Name,
		Email:          req.Email,
		PasswordHash:   string(hash),
		Role:           req.Role,
		CommissionRate: req.CommissionRate,
		IsActive:       true,
	}

	if err := h.repo.CreateProfessional(c.Request().Context(), professional); err != nil {
		logger.FromEcho(c).Error("Failed to create professional", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Operation failed"})
	}

	return c.JSON(http.StatusCreated, professional)
}

// Update applies a partial update to a professional. Deactivation and
// password changes revoke every refresh token of the professional.
func (h *ProfessionalHandler) Update(c echo.Context) error {
	barbershopID, ok := middleware.TenantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Tenant not identified"})
	}

	var req struct {
		Name           *string  `json:"name"`
		Password       *string  `json:"password"`
		CommissionRate *float64 `json:"commission_rate"`
		IsActive       *bool    `json:"is_active"`
	}

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Validation failed"})
	}

	professional, err := h.repo.FindProfessionalByID(c.Request().Context(), c.Param("id"), barbershopID)
	if err != nil {
		logger.FromEcho(c).Error("Failed to find professional", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Operation failed"})
	}
	if professional == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Professional not found"})
	}

	revoke := false
	if req.Name != nil && *req.Name != "" {
		professional.Name = *req.Name
	}
	if req.Password != nil {
		if len(*req.Password) < 8 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Validation failed", "message": "password must be at least 8 characters"})
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			logger.FromEcho(c).Error("Failed to hash password", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Operation failed"})
		}
		professional.PasswordHash = string(hash)
		revoke = true
	}
	if req.CommissionRate != nil {
		if *req.CommissionRate < 0 || *req.CommissionRate > 100 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Validation failed", "message": "commission_rate must be between 0 and 100"})
		}
		professional.CommissionRate = *req.CommissionRate
	}
	if req.IsActive != nil {
		if professional.IsActive && !*req.IsActive {
			revoke = true
		}
		professional.IsActive = *req.IsActive
	}

	if err := h.repo.UpdateProfessional(c.Request().Context(), professional); err != nil {
		logger.FromEcho(c).Error("Failed to update professional", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Operation failed"})
	}

	if revoke {
		if err := h.tokens.RevokeAll(c.Request().Context(), professional.ID); err != nil {
			logger.FromEcho(c).Warn("Failed to revoke refresh tokens", zap.Error(err), zap.String("professional_id", professional.ID))
		}
	}

	return c.JSON(http.StatusOK, professional)
}

// Delete removes a professional and revokes their refresh tokens.
// Admin only.
func (h *ProfessionalHandler) Delete(c echo.Context) error {
	barbershopID, ok := middleware.TenantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Tenant not identified"})
	}
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Authentication required"})
	}

	id := c.Param("id")
	if id == claims.ProfessionalID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Validation failed", "message": "cannot delete your own account"})
	}

	professional, err := h.repo.FindProfessionalByID(c.Request().Context(), id, barbershopID)
	if err != nil {
		logger.FromEcho(c).Error("Failed to find professional", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Operation failed"})
	}
	if professional == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Professional not found"})
	}

	if err := h.repo.DeleteProfessional(c.Request().Context(), id, barbershopID); err != nil {
		logger.FromEcho(c).Error("Failed to delete professional", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Operation failed"})
	}

	if err := h.tokens.RevokeAll(c.Request().Context(), id); err != nil {
		logger.FromEcho(c).Warn("Failed to revoke refresh tokens", zap.Error(err), zap.String("professional_id", id))
	}

	return c.NoContent(http.StatusNoContent)
}

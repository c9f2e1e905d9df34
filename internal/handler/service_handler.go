package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/otavioajr/shaving-project/internal/middleware"
	"github.com/otavioajr/shaving-project/internal/model"
	"github.com/otavioajr/shaving-project/internal/repository"
	"github.com/otavioajr/shaving-project/pkg/logger"
	"go.uber.org/zap"
)

// ServiceHandler manages the barbershop's bookable services.
type ServiceHandler struct {
	repo *repository.Repository
}

// NewServiceHandler creates a service handler.
func NewServiceHandler(repo *repository.Repository) *ServiceHandler {
	return &ServiceHandler{repo: repo}
}

// List returns a page of the barbershop's services.
func (h *ServiceHandler) List(c echo.Context) error {
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

	services, total, err := h.repo.ListServices(c.Request().Context(), barbershopID, page, limit)
	if err != nil {
		logger.FromEcho(c).Error("Failed to list services", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Operation failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data": services,
		"pagination": echo.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// Get returns a single service.
func (h *ServiceHandler) Get(c echo.Context) error {
	barbershopID, ok := middleware.TenantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Tenant not identified"})
	}

	service, err := h.repo.FindServiceByID(c.Request().Context(), c.Param("id"), barbershopID)
	if err != nil {
		logger.FromEcho(c).Error("Failed to find service", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Operation failed"})
	}
	if service == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Service not found"})
	}

	return c.JSON(http.StatusOK, service)
}

// Create registers a new bookable service.
func (h *ServiceHandler) Create(c echo.Context) error {
	barbershopID, ok := middleware.TenantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Tenant not identified"})
	}

	var req struct {
		Name            string  `json:"name"`
		Price           float64 `json:"price"`
		DurationMinutes int     `json:"duration_minutes"`
	}

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Validation failed"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Validation failed", "message": "name is required"})
	}
	if req.Price < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Validation failed", "message": "price must not be negative"})
	}
	if req.DurationMinutes <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Validation failed", "message": "duration_minutes must be positive"})
	}

	service := &model.Service{
		ID:              uuid.New().String(),
		BarbershopID:    barbershopID,
		Name:            req.Name,
		Price:           req.Price,
		DurationMinutes: req.DurationMinutes,
		IsActive:        true,
	}

	if err := h.repo.CreateService(c.Request().Context(), service); err != nil {
		logger.FromEcho(c).Error("Failed to create service", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Operation failed"})
	}

	return c.JSON(http.StatusCreated, service)
}

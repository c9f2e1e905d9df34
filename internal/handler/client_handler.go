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

// ClientHandler manages the barbershop's customer records.
type ClientHandler struct {
	repo *repository.Repository
}

// NewClientHandler creates a client handler.
func NewClientHandler(repo *repository.Repository) *ClientHandler {
	return &ClientHandler{repo: repo}
}

// List returns a page of the barbershop's clients.
func (h *ClientHandler) List(c echo.Context) error {
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

	clients, total, err := h.repo.ListClients(c.Request().Context(), barbershopID, page, limit)
	if err != nil {
		logger.FromEcho(c).Error("Failed to list clients", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Operation failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data": clients,
		"pagination": echo.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// Get returns a single client.
func (h *ClientHandler) Get(c echo.Context) error {
	barbershopID, ok := middleware.TenantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Tenant not identified"})
	}

	client, err := h.repo.FindClientByID(c.Request().Context(), c.Param("id"), barbershopID)
	if err != nil {
		logger.FromEcho(c).Error("Failed to find client", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Operation failed"})
	}
	if client == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Client not found"})
	}

	return c.JSON(http.StatusOK, client)
}

// Create registers a new client.
func (h *ClientHandler) Create(c echo.Context) error {
	barbershopID, ok := middleware.TenantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Tenant not identified"})
	}

	var req struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
		Email string `json:"email"`
	}

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Validation failed"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Validation failed", "message": "name is required"})
	}
	if req.Email != "" && !emailPattern.MatchString(req.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Validation failed", "message": "invalid email"})
	}

	client := &model.Client{
		ID:           uuid.New().String(),
		BarbershopID: barbershopID,
		Name:         req.Name,
		Phone:        req.Phone,
		Email:        req.Email,
	}

	if err := h.repo.CreateClient(c.Request().Context(), client); err != nil {
		logger.FromEcho(c).Error("Failed to create client", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Operation failed"})
	}

	return c.JSON(http.StatusCreated, client)
}

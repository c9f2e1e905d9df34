package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/otavioajr/shaving-project/pkg/cache"
	"github.com/otavioajr/shaving-project/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HealthHandler reports service liveness, with optional dependency
// checks via the check query parameter.
type HealthHandler struct {
	db    *gorm.DB
	cache cache.Cache
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(db *gorm.DB, c cache.Cache) *HealthHandler {
	return &HealthHandler{db: db, cache: c}
}

// Check handles the health check endpoint
func (h *HealthHandler) Check(c echo.Context) error {
	log := logger.FromEcho(c)

	response := echo.Map{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	}

	// Check database connection if requested
	if c.QueryParam("check") == "db" {
		sqlDB, err := h.db.DB()
		if err != nil {
			log.Error("Database connection error", zap.Error(err))
			response["status"] = "error"
			response["db_status"] = "error"
			return c.JSON(http.StatusInternalServerError, response)
		}

		if err := sqlDB.Ping(); err != nil {
			log.Error("Database ping error", zap.Error(err))
			response["status"] = "error"
			response["db_status"] = "error"
			return c.JSON(http.StatusInternalServerError, response)
		}

		response["db_status"] = "ok"
	}

	// Check cache connection if requested
	if c.QueryParam("check") == "cache" {
		ctx := c.Request().Context()
		if err := h.cache.Set(ctx, "barbershop:health:probe", "ok", time.Minute); err != nil {
			log.Error("Cache probe error", zap.Error(err))
			response["status"] = "error"
			response["cache_status"] = "error"
			return c.JSON(http.StatusInternalServerError, response)
		}
		response["cache_status"] = "ok"
	}

	return c.JSON(http.StatusOK, response)
}

// Hello returns a simple welcome message
func Hello(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Welcome to Barbershop API",
		"version": "1.0.0",
	})
}

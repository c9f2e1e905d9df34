package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/otavioajr/shaving-project/internal/middleware"
	"github.com/otavioajr/shaving-project/internal/scheduler"
	"github.com/otavioajr/shaving-project/pkg/logger"
	"github.com/otavioajr/shaving-project/prometheus"
	"go.uber.org/zap"
)

// AppointmentHandler serves the appointment booking endpoints on top of
// the scheduler.
type AppointmentHandler struct {
	scheduler *scheduler.Scheduler
}

// NewAppointmentHandler creates an appointment handler.
func NewAppointmentHandler(s *scheduler.Scheduler) *AppointmentHandler {
	return &AppointmentHandler{scheduler: s}
}

// schedulerError maps scheduler errors to HTTP responses.
func schedulerError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, scheduler.ErrAppointmentNotFound),
		errors.Is(err, scheduler.ErrProfessionalNotFound),
		errors.Is(err, scheduler.ErrClientNotFound),
		errors.Is(err, scheduler.ErrServiceNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, scheduler.ErrConflict):
		prometheus.AppointmentConflictCounter.Inc()
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, scheduler.ErrInvalidTransition):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	default:
		logger.FromEcho(c).Error("Appointment operation failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Operation failed"})
	}
}

// List returns a page of appointments with optional filters.
func (h *AppointmentHandler) List(c echo.Context) error {
	barbershopID, ok := middleware.TenantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Tenant not identified"})
	}

	params := scheduler.ListParams{
		Page:           1,
		Limit:          20,
		Status:         c.QueryParam("status"),
		ProfessionalID: c.QueryParam("professional_id"),
		ClientID:       c.QueryParam("client_id"),
	}

	if page, err := strconv.Atoi(c.QueryParam("page")); err == nil && page > 0 {
		params.Page = page
	}
	if limit, err := strconv.Atoi(c.QueryParam("limit")); err == nil && limit > 0 && limit <= 100 {
		params.Limit = limit
	}
	if params.Status != "" && !scheduler.ValidStatus(params.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Validation failed", "message": "invalid status filter"})
	}
	if start, err := time.Parse(time.RFC3339, c.QueryParam("start_date")); err == nil {
		if end, err := time.Parse(time.RFC3339, c.QueryParam("end_date")); err == nil {
			params.StartDate = &start
			params.EndDate = &end
		}
	}

	appointments, total, err := h.scheduler.List(c.Request().Context(), barbershopID, params)
	if err != nil {
		return schedulerError(c, err)
	}

	totalPages := total / int64(params.Limit)
	if total%int64(params.Limit) != 0 {
		totalPages++
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data": appointments,
		"pagination": echo.Map{
			"page":        params.Page,
			"limit":       params.Limit,
			"total":       total,
			"total_pages": totalPages,
		},
	})
}

// Get returns a single appointment.
func (h *AppointmentHandler) Get(c echo.Context) error {
	barbershopID, ok := middleware.TenantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Tenant not identified"})
	}

	appointment, err := h.scheduler.Get(c.Request().Context(), c.Param("id"), barbershopID)
	if err != nil {
		return schedulerError(c, err)
	}

	return c.JSON(http.StatusOK, appointment)
}

// Create books a new appointment.
func (h *AppointmentHandler) Create(c echo.Context) error {
	barbershopID, ok := middleware.TenantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Tenant not identified"})
	}
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Authentication required"})
	}

	var req struct {
		ProfessionalID string `json:"professional_id"`
		ClientID       string `json:"client_id"`
		ServiceID      string `json:"service_id"`
		Date           string `json:"date"`
		Notes          string `json:"notes"`
	}

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Validation failed"})
	}
	if req.ProfessionalID == "" || req.ClientID == "" || req.ServiceID == "" || req.Date == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Validation failed", "message": "professional_id, client_id, service_id and date are required"})
	}

	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Validation failed", "message": "date must be RFC 3339"})
	}

	appointment, err := h.scheduler.Create(c.Request().Context(), scheduler.CreateInput{
		BarbershopID:   barbershopID,
		ProfessionalID: req.ProfessionalID,
		ClientID:       req.ClientID,
		ServiceID:      req.ServiceID,
		Date:           date,
		Notes:          req.Notes,
		CreatedByID:    claims.ProfessionalID,
	})
	if err != nil {
		return schedulerError(c, err)
	}

	return c.JSON(http.StatusCreated, appointment)
}

// Update applies a partial appointment update.
func (h *AppointmentHandler) Update(c echo.Context) error {
	barbershopID, ok := middleware.TenantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Tenant not identified"})
	}

	var req struct {
		ProfessionalID *string `json:"professional_id"`
		ClientID       *string `json:"client_id"`
		ServiceID      *string `json:"service_id"`
		Date           *string `json:"date"`
		Notes          *string `json:"notes"`
	}

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Validation failed"})
	}

	input := scheduler.UpdateInput{
		ProfessionalID: req.ProfessionalID,
		ClientID:       req.ClientID,
		ServiceID:      req.ServiceID,
		Notes:          req.Notes,
	}
	if req.Date != nil {
		date, err := time.Parse(time.RFC3339, *req.Date)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Validation failed", "message": "date must be RFC 3339"})
		}
		input.Date = &date
	}

	appointment, err := h.scheduler.Update(c.Request().Context(), c.Param("id"), barbershopID, input)
	if err != nil {
		return schedulerError(c, err)
	}

	return c.JSON(http.StatusOK, appointment)
}

// UpdateStatus moves an appointment through the status state machine.
func (h *AppointmentHandler) UpdateStatus(c echo.Context) error {
	barbershopID, ok := middleware.TenantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Tenant not identified"})
	}

	var req struct {
		Status string `json:"status"`
	}

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Validation failed"})
	}
	if !scheduler.ValidStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Validation failed", "message": "invalid status"})
	}

	appointment, err := h.scheduler.UpdateStatus(c.Request().Context(), c.Param("id"), barbershopID, req.Status)
	if err != nil {
		return schedulerError(c, err)
	}

	return c.JSON(http.StatusOK, appointment)
}

// Delete cancels an appointment. Terminal appointments cannot be
// deleted; the attempt is rejected as an invalid transition.
func (h *AppointmentHandler) Delete(c echo.Context) error {
	barbershopID, ok := middleware.TenantID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Tenant not identified"})
	}

	if err := h.scheduler.Cancel(c.Request().Context(), c.Param("id"), barbershopID); err != nil {
		return schedulerError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

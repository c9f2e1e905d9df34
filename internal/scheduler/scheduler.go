// Package scheduler implements appointment booking: conflict detection
// over half-open time intervals, the status state machine and the
// one-shot commission computation on completion.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/otavioajr/shaving-project/internal/model"
	"go.uber.org/zap"
)

// Scheduler errors mapped to client responses by the handlers.
var (
	ErrAppointmentNotFound  = errors.New("appointment not found")
	ErrProfessionalNotFound = errors.New("professional not found")
	ErrClientNotFound       = errors.New("client not found")
	ErrServiceNotFound      = errors.New("service not found")
	ErrConflict             = errors.New("professional has a conflicting appointment at this time")
	ErrInvalidTransition    = errors.New("invalid appointment status transition")
)

// conflictWindow bounds the prefetch around a candidate interval so
// conflict checks never scan the whole table.
const conflictWindow = 8 * time.Hour

// AppointmentStore is the tenant-scoped persistence interface for
// appointments. Lookups return (nil, nil) when no row matches.
type AppointmentStore interface {
	FindAppointmentByID(ctx context.Context, id, barbershopID string) (*model.Appointment, error)
	FindAppointmentsInWindow(ctx context.Context, barbershopID, professionalID string, from, to time.Time, excludeID string) ([]model.Appointment, error)
	ListAppointments(ctx context.Context, barbershopID string, params ListParams) ([]model.Appointment, int64, error)
	CreateAppointment(ctx context.Context, appointment *model.Appointment) error
	UpdateAppointment(ctx context.Context, appointment *model.Appointment) error
}

// ProfessionalStore looks up professionals within a tenant.
type ProfessionalStore interface {
	FindProfessionalByID(ctx context.Context, id, barbershopID string) (*model.Professional, error)
}

// ClientStore looks up clients within a tenant.
type ClientStore interface {
	FindClientByID(ctx context.Context, id, barbershopID string) (*model.Client, error)
}

// ServiceStore looks up services within a tenant.
type ServiceStore interface {
	FindServiceByID(ctx context.Context, id, barbershopID string) (*model.Service, error)
}

// CreateInput carries a new appointment request.
type CreateInput struct {
	BarbershopID   string
	ProfessionalID string
	ClientID       string
	ServiceID      string
	Date           time.Time
	Notes          string
	CreatedByID    string
}

// UpdateInput carries a partial appointment update; nil fields are
// left unchanged.
type UpdateInput struct {
	ProfessionalID *string
	ClientID       *string
	ServiceID      *string
	Date           *time.Time
	Notes          *string
}

// ListParams holds pagination and filtering for appointment listings.
type ListParams struct {
	Page           int
	Limit          int
	Status         string
	ProfessionalID string
	ClientID       string
	StartDate      *time.Time
	EndDate        *time.Time
}

// Scheduler coordinates appointment writes for one barbershop at a
// time. It re-queries at decision time instead of holding locks.
type Scheduler struct {
	appointments  AppointmentStore
	professionals ProfessionalStore
	clients       ClientStore
	services      ServiceStore
	log           *zap.Logger
}

// NewScheduler creates a scheduler over the given stores.
func NewScheduler(
	appointments AppointmentStore,
	professionals ProfessionalStore,
	clients ClientStore,
	services ServiceStore,
	log *zap.Logger,
) *Scheduler {
	return &Scheduler{
		appointments:  appointments,
		professionals: professionals,
		clients:       clients,
		services:      services,
		log:           log,
	}
}

// Get returns an appointment within the tenant scope.
func (s *Scheduler) Get(ctx context.Context, id, barbershopID string) (*model.Appointment, error) {
	appointment, err := s.appointments.FindAppointmentByID(ctx, id, barbershopID)
	if err != nil {
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	return appointment, nil
}

// List returns a page of appointments and the total row count.
func (s *Scheduler) List(ctx context.Context, barbershopID string, params ListParams) ([]model.Appointment, int64, error) {
	return s.appointments.ListAppointments(ctx, barbershopID, params)
}

// HasConflict reports whether the candidate interval overlaps an
// existing non-cancelled booking for the professional. Intervals are
// half-open, so a booking starting exactly when another ends does not
// conflict.
func (s *Scheduler) HasConflict(ctx context.Context, barbershopID, professionalID string, start time.Time, durationMinutes int, excludeID string) (bool, error) {
	end := start.Add(time.Duration(durationMinutes) * time.Minute)

	existing, err := s.appointments.FindAppointmentsInWindow(ctx, barbershopID, professionalID,
		start.Add(-conflictWindow), end.Add(conflictWindow), excludeID)
	if err != nil {
		return false, err
	}

	for i := range existing {
		other := &existing[i]
		if start.Before(other.End()) && other.Date.Before(end) {
			return true, nil
		}
	}
	return false, nil
}

// Create books a new appointment in PENDING status, snapshotting the
// service's price and duration. Every referenced entity is validated
// before anything is written.
func (s *Scheduler) Create(ctx context.Context, input CreateInput) (*model.Appointment, error) {
	professional, err := s.professionals.FindProfessionalByID(ctx, input.ProfessionalID, input.BarbershopID)
	if err != nil {
		return nil, err
	}
	if professional == nil {
		return nil, ErrProfessionalNotFound
	}

	client, err := s.clients.FindClientByID(ctx, input.ClientID, input.BarbershopID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, ErrClientNotFound
	}

	service, err := s.services.FindServiceByID(ctx, input.ServiceID, input.BarbershopID)
	if err != nil {
		return nil, err
	}
	if service == nil {
		return nil, ErrServiceNotFound
	}

	conflict, err := s.HasConflict(ctx, input.BarbershopID, input.ProfessionalID, input.Date, service.DurationMinutes, "")
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, ErrConflict
	}

	appointment := &model.Appointment{
		ID:              uuid.New().String(),
		BarbershopID:    input.BarbershopID,
		ProfessionalID:  input.ProfessionalID,
		ClientID:        input.ClientID,
		ServiceID:       input.ServiceID,
		Date:            input.Date,
		DurationMinutes: service.DurationMinutes,
		Price:           service.Price,
		Status:          model.StatusPending,
		Notes:           input.Notes,
		CreatedByID:     input.CreatedByID,
	}

	if err := s.appointments.CreateAppointment(ctx, appointment); err != nil {
		return nil, err
	}

	s.log.Info("appointment created",
		zap.String("appointment_id", appointment.ID),
		zap.String("barbershop_id", appointment.BarbershopID),
		zap.String("professional_id", appointment.ProfessionalID),
		zap.Time("date", appointment.Date))

	return appointment, nil
}

// Update applies a partial update, re-running the conflict check when
// the date, professional or service changes and re-snapshotting price
// and duration when the service changes.
func (s *Scheduler) Update(ctx context.Context, id, barbershopID string, input UpdateInput) (*model.Appointment, error) {
	appointment, err := s.Get(ctx, id, barbershopID)
	if err != nil {
		return nil, err
	}

	professionalID := appointment.ProfessionalID
	if input.ProfessionalID != nil {
		professional, err := s.professionals.FindProfessionalByID(ctx, *input.ProfessionalID, barbershopID)
		if err != nil {
			return nil, err
		}
		if professional == nil {
			return nil, ErrProfessionalNotFound
		}
		professionalID = *input.ProfessionalID
	}

	if input.ClientID != nil {
		client, err := s.clients.FindClientByID(ctx, *input.ClientID, barbershopID)
		if err != nil {
			return nil, err
		}
		if client == nil {
			return nil, ErrClientNotFound
		}
	}

	duration := appointment.DurationMinutes
	price := appointment.Price
	if input.ServiceID != nil {
		service, err := s.services.FindServiceByID(ctx, *input.ServiceID, barbershopID)
		if err != nil {
			return nil, err
		}
		if service == nil {
			return nil, ErrServiceNotFound
		}
		duration = service.DurationMinutes
		price = service.Price
	}

	date := appointment.Date
	if input.Date != nil {
		date = *input.Date
	}

	if input.Date != nil || input.ProfessionalID != nil || input.ServiceID != nil {
		conflict, err := s.HasConflict(ctx, barbershopID, professionalID, date, duration, appointment.ID)
		if err != nil {
			return nil, err
		}
		if conflict {
			return nil, ErrConflict
		}
	}

	appointment.ProfessionalID = professionalID
	if input.ClientID != nil {
		appointment.ClientID = *input.ClientID
	}
	if input.ServiceID != nil {
		appointment.ServiceID = *input.ServiceID
	}
	appointment.Date = date
	appointment.DurationMinutes = duration
	appointment.Price = price
	if input.Notes != nil {
		appointment.Notes = *input.Notes
	}

	if err := s.appointments.UpdateAppointment(ctx, appointment); err != nil {
		return nil, err
	}
	return appointment, nil
}

// UpdateStatus moves an appointment through the state machine. Moving
// into COMPLETED computes the commission from the price snapshot,
// exactly once.
func (s *Scheduler) UpdateStatus(ctx context.Context, id, barbershopID, status string) (*model.Appointment, error) {
	appointment, err := s.Get(ctx, id, barbershopID)
	if err != nil {
		return nil, err
	}

	if !CanTransition(appointment.Status, status) {
		return nil, ErrInvalidTransition
	}

	if status == model.StatusCompleted && appointment.CommissionValue == nil {
		professional, err := s.professionals.FindProfessionalByID(ctx, appointment.ProfessionalID, barbershopID)
		if err != nil {
			return nil, err
		}
		if professional == nil {
			return nil, ErrProfessionalNotFound
		}

		commission := appointment.Price * (professional.CommissionRate / 100)
		appointment.CommissionValue = &commission
	}

	appointment.Status = status
	if err := s.appointments.UpdateAppointment(ctx, appointment); err != nil {
		return nil, err
	}

	s.log.Info("appointment status updated",
		zap.String("appointment_id", appointment.ID),
		zap.String("status", appointment.Status))

	return appointment, nil
}

// Cancel implements deletion at the boundary: a transition to
// CANCELLED, valid only from PENDING or CONFIRMED.
func (s *Scheduler) Cancel(ctx context.Context, id, barbershopID string) error {
	_, err := s.UpdateStatus(ctx, id, barbershopID, model.StatusCancelled)
	return err
}

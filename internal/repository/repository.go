// Package repository provides the gorm-backed persistence layer. Every
// query is scoped by barbershop id; lookups return (nil, nil) when no
// row matches so callers can distinguish absence from failure.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/otavioajr/shaving-project/internal/model"
	"github.com/otavioajr/shaving-project/internal/scheduler"
	"github.com/otavioajr/shaving-project/prometheus"
	"gorm.io/gorm"
)

// Repository wraps the database handle.
type Repository struct {
	db *gorm.DB
}

// New creates a repository over the given database.
func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// --- barbershops ---

// FindBarbershopBySlug returns the barbershop with the given slug.
func (r *Repository) FindBarbershopBySlug(ctx context.Context, slug string) (*model.Barbershop, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var barbershop model.Barbershop
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&barbershop).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find barbershop by slug: %w", err)
	}
	return &barbershop, nil
}

// FindBarbershopByID returns the barbershop with the given id.
func (r *Repository) FindBarbershopByID(ctx context.Context, id string) (*model.Barbershop, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var barbershop model.Barbershop
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&barbershop).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find barbershop: %w", err)
	}
	return &barbershop, nil
}

// RegisterBarbershop creates a barbershop and its first ADMIN
// professional in one transaction; either both rows exist afterwards or
// neither does.
func (r *Repository) RegisterBarbershop(ctx context.Context, barbershop *model.Barbershop, admin *model.Professional) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(barbershop).Error; err != nil {
			return fmt.Errorf("failed to create barbershop: %w", err)
		}
		if err := tx.Create(admin).Error; err != nil {
			return fmt.Errorf("failed to create admin professional: %w", err)
		}
		return nil
	})
}

// UpdateBarbershop persists name/active changes.
func (r *Repository) UpdateBarbershop(ctx context.Context, barbershop *model.Barbershop) error {
	defer prometheus.TrackDBOperation("update")(time.Now())

	if err := r.db.WithContext(ctx).Save(barbershop).Error; err != nil {
		return fmt.Errorf("failed to update barbershop: %w", err)
	}
	return nil
}

// --- professionals ---

// FindProfessionalByID returns the professional within the tenant scope.
func (r *Repository) FindProfessionalByID(ctx context.Context, id, barbershopID string) (*model.Professional, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var professional model.Professional
	err := r.db.WithContext(ctx).
		Where("id = ? AND barbershop_id = ?", id, barbershopID).
		First(&professional).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find professional: %w", err)
	}
	return &professional, nil
}

// FindProfessionalByEmail returns the professional with the given email
// within the tenant scope.
func (r *Repository) FindProfessionalByEmail(ctx context.Context, email, barbershopID string) (*model.Professional, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var professional model.Professional
	err := r.db.WithContext(ctx).
		Where("email = ? AND barbershop_id = ?", email, barbershopID).
		First(&professional).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find professional by email: %w", err)
	}
	return &professional, nil
}

// ProfessionalEmailExists reports whether any professional, in any
// barbershop, uses the given email. Checked at tenant self-registration
// to keep admin emails globally unique.
func (r *Repository) ProfessionalEmailExists(ctx context.Context, email string) (bool, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var count int64
	err := r.db.WithContext(ctx).Model(&model.Professional{}).
		Where("email = ?", email).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check professional email: %w", err)
	}
	return count > 0, nil
}

// CreateProfessional inserts a professional.
func (r *Repository) CreateProfessional(ctx context.Context, professional *model.Professional) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())

	if err := r.db.WithContext(ctx).Create(professional).Error; err != nil {
		return fmt.Errorf("failed to create professional: %w", err)
	}
	return nil
}

// UpdateProfessional persists professional changes.
func (r *Repository) UpdateProfessional(ctx context.Context, professional *model.Professional) error {
	defer prometheus.TrackDBOperation("update")(time.Now())

	if err := r.db.WithContext(ctx).Save(professional).Error; err != nil {
		return fmt.Errorf("failed to update professional: %w", err)
	}
	return nil
}

// DeleteProfessional removes a professional within the tenant scope.
func (r *Repository) DeleteProfessional(ctx context.Context, id, barbershopID string) error {
	defer prometheus.TrackDBOperation("delete")(time.Now())

	err := r.db.WithContext(ctx).
		Where("id = ? AND barbershop_id = ?", id, barbershopID).
		Delete(&model.Professional{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete professional: %w", err)
	}
	return nil
}

// ListProfessionals returns a page of professionals and the total count.
func (r *Repository) ListProfessionals(ctx context.Context, barbershopID string, page, limit int) ([]model.Professional, int64, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var professionals []model.Professional
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Professional{}).
		Where("barbershop_id = ?", barbershopID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count professionals: %w", err)
	}
	err := query.Order("name asc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&professionals).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list professionals: %w", err)
	}
	return professionals, total, nil
}

// --- clients ---

// FindClientByID returns the client within the tenant scope.
func (r *Repository) FindClientByID(ctx context.Context, id, barbershopID string) (*model.Client, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var client model.Client
	err := r.db.WithContext(ctx).
		Where("id = ? AND barbershop_id = ?", id, barbershopID).
		First(&client).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find client: %w", err)
	}
	return &client, nil
}

// CreateClient inserts a client.
func (r *Repository) CreateClient(ctx context.Context, client *model.Client) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())

	if err := r.db.WithContext(ctx).Create(client).Error; err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

// ListClients returns a page of clients and the total count.
func (r *Repository) ListClients(ctx context.Context, barbershopID string, page, limit int) ([]model.Client, int64, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var clients []model.Client
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Client{}).
		Where("barbershop_id = ?", barbershopID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count clients: %w", err)
	}
	err := query.Order("name asc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&clients).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, total, nil
}

// --- services ---

// FindServiceByID returns the service within the tenant scope.
func (r *Repository) FindServiceByID(ctx context.Context, id, barbershopID string) (*model.Service, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var service model.Service
	err := r.db.WithContext(ctx).
		Where("id = ? AND barbershop_id = ?", id, barbershopID).
		First(&service).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find service: %w", err)
	}
	return &service, nil
}

// CreateService inserts a service.
func (r *Repository) CreateService(ctx context.Context, service *model.Service) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())

	if err := r.db.WithContext(ctx).Create(service).Error; err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	return nil
}

// ListServices returns a page of services and the total count.
func (r *Repository) ListServices(ctx context.Context, barbershopID string, page, limit int) ([]model.Service, int64, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var services []model.Service
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Service{}).
		Where("barbershop_id = ?", barbershopID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count services: %w", err)
	}
	err := query.Order("name asc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&services).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list services: %w", err)
	}
	return services, total, nil
}

// --- appointments ---

// FindAppointmentByID returns the appointment within the tenant scope.
func (r *Repository) FindAppointmentByID(ctx context.Context, id, barbershopID string) (*model.Appointment, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var appointment model.Appointment
	err := r.db.WithContext(ctx).
		Where("id = ? AND barbershop_id = ?", id, barbershopID).
		First(&appointment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find appointment: %w", err)
	}
	return &appointment, nil
}

// FindAppointmentsInWindow returns the professional's non-cancelled
// appointments whose start lies in [from, to], excluding excludeID when
// set. Used by the scheduler's conflict check.
func (r *Repository) FindAppointmentsInWindow(ctx context.Context, barbershopID, professionalID string, from, to time.Time, excludeID string) ([]model.Appointment, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	query := r.db.WithContext(ctx).
		Where("barbershop_id = ? AND professional_id = ?", barbershopID, professionalID).
		Where("status <> ?", model.StatusCancelled).
		Where("date >= ? AND date <= ?", from, to)

	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	var appointments []model.Appointment
	if err := query.Find(&appointments).Error; err != nil {
		return nil, fmt.Errorf("failed to find appointments in window: %w", err)
	}
	return appointments, nil
}

// ListAppointments returns a page of appointments matching the filters
// and the total count.
func (r *Repository) ListAppointments(ctx context.Context, barbershopID string, params scheduler.ListParams) ([]model.Appointment, int64, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	query := r.db.WithContext(ctx).Model(&model.Appointment{}).
		Where("barbershop_id = ?", barbershopID)

	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.ProfessionalID != "" {
		query = query.Where("professional_id = ?", params.ProfessionalID)
	}
	if params.ClientID != "" {
		query = query.Where("client_id = ?", params.ClientID)
	}
	if params.StartDate != nil && params.EndDate != nil {
		query = query.Where("date >= ? AND date <= ?", *params.StartDate, *params.EndDate)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count appointments: %w", err)
	}

	var appointments []model.Appointment
	err := query.Order("date asc").
		Offset((params.Page - 1) * params.Limit).
		Limit(params.Limit).
		Find(&appointments).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, total, nil
}

// CreateAppointment inserts an appointment.
func (r *Repository) CreateAppointment(ctx context.Context, appointment *model.Appointment) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())

	if err := r.db.WithContext(ctx).Create(appointment).Error; err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

// UpdateAppointment persists appointment changes.
func (r *Repository) UpdateAppointment(ctx context.Context, appointment *model.Appointment) error {
	defer prometheus.TrackDBOperation("update")(time.Now())

	if err := r.db.WithContext(ctx).Save(appointment).Error; err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	return nil
}

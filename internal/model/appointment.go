package model

import (
	"time"
)

// Appointment status values. The scheduler enforces the transitions
// between them; COMPLETED, CANCELLED and NO_SHOW are terminal.
const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
	StatusNoShow    = "NO_SHOW"
)

// Appointment is a booking of a professional for a client. Price and
// DurationMinutes are snapshots of the referenced service taken at
// creation/update time. CommissionValue is set exactly once, when the
// appointment transitions into COMPLETED.
type Appointment struct {
	ID              string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	BarbershopID    string    `json:"barbershop_id" gorm:"type:varchar(36);index;not null"`
	ProfessionalID  string    `json:"professional_id" gorm:"type:varchar(36);index;not null"`
	ClientID        string    `json:"client_id" gorm:"type:varchar(36);index;not null"`
	ServiceID       string    `json:"service_id" gorm:"type:varchar(36);not null"`
	Date            time.Time `json:"date" gorm:"index;not null"`
	DurationMinutes int       `json:"duration_minutes" gorm:"not null"`
	Price           float64   `json:"price" gorm:"not null"`
	Status          string    `json:"status" gorm:"type:varchar(20);not null;default:'PENDING'"`
	CommissionValue *float64  `json:"commission_value,omitempty"`
	Notes           string    `json:"notes,omitempty" gorm:"type:text"`
	CreatedByID     string    `json:"created_by_id" gorm:"type:varchar(36);not null"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// End returns the exclusive end of the appointment interval, computed
// from the snapshotted duration.
func (a *Appointment) End() time.Time {
	return a.Date.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

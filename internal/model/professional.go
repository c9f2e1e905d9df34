package model

import (
	"time"
)

// Professional roles. The first professional of a barbershop is always
// an ADMIN, created during tenant self-registration.
const (
	RoleAdmin  = "ADMIN"
	RoleBarber = "BARBER"
)

// Professional represents a staff member of a barbershop. Email is
// unique per barbershop for login purposes.
type Professional struct {
	ID             string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	BarbershopID   string    `json:"barbershop_id" gorm:"type:varchar(36);index;not null;uniqueIndex:idx_professional_email"`
	Name           string    `json:"name" gorm:"type:varchar(100);not null"`
	Email          string    `json:"email" gorm:"type:varchar(100);not null;uniqueIndex:idx_professional_email"`
	PasswordHash   string    `json:"-" gorm:"type:varchar(255);not null"`
	Role           string    `json:"role" gorm:"type:varchar(20);not null;default:'BARBER'"`
	CommissionRate float64   `json:"commission_rate" gorm:"not null;default:0"`
	IsActive       bool      `json:"is_active" gorm:"default:true"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// PublicProfile is the client-facing projection returned with token
// pairs; it never carries the password hash.
type PublicProfile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Public returns the professional's public profile.
func (p *Professional) Public() PublicProfile {
	return PublicProfile{
		ID:    p.ID,
		Name:  p.Name,
		Email: p.Email,
		Role:  p.Role,
	}
}

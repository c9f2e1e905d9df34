package model

import (
	"time"
)

// Service is a bookable offering. Appointments snapshot its price and
// duration at booking time, so later edits here never rewrite history.
type Service struct {
	ID              string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	BarbershopID    string    `json:"barbershop_id" gorm:"type:varchar(36);index;not null"`
	Name            string    `json:"name" gorm:"type:varchar(100);not null"`
	Price           float64   `json:"price" gorm:"not null"`
	DurationMinutes int       `json:"duration_minutes" gorm:"not null"`
	IsActive        bool      `json:"is_active" gorm:"default:true"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

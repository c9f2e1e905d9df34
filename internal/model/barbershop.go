package model

import (
	"time"
)

// Barbershop is the tenant record. Every durable row in the system is
// scoped to exactly one barbershop; the slug is the external lookup
// key and never changes after registration.
type Barbershop struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	Slug      string    `json:"slug" gorm:"type:varchar(100);uniqueIndex;not null"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

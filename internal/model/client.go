package model

import (
	"time"
)

// Client represents a customer of a barbershop.
type Client struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	BarbershopID string    `json:"barbershop_id" gorm:"type:varchar(36);index;not null"`
	Name         string    `json:"name" gorm:"type:varchar(100);not null"`
	Phone        string    `json:"phone" gorm:"type:varchar(30)"`
	Email        string    `json:"email,omitempty" gorm:"type:varchar(100)"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Restaurant represents a donor organization profile owned by a user.
type Restaurant struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name           string    `gorm:"column:name;not null"`
	OwnerID        uuid.UUID `gorm:"column:owner_id;type:uuid;not null;index"`
	Email          string    `gorm:"type:text;not null;uniqueIndex"`
	Phone          *string   `gorm:"column:phone"`
	Address        string    `gorm:"column:address;not null"`
	CuisineType    *string   `gorm:"column:cuisine_type"`
	OperatingHours *string   `gorm:"column:operating_hours"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mealbridge/mealbridge-backend/pkg/enums"
)

// FoodDonation is the core marketplace entity. Status moves one way
// through pending, available, reserved, collected, completed; ReceiverID
// is set exactly once, by the winning reservation.
type FoodDonation struct {
	ID                  uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	DonorID             uuid.UUID            `gorm:"column:donor_id;type:uuid;not null;index:idx_food_donations_donor_status"`
	DonorType           enums.DonorType      `gorm:"column:donor_type;type:donor_type_enum;not null"`
	OrganizationName    string               `gorm:"column:organization_name;not null"`
	FoodType            enums.FoodType       `gorm:"column:food_type;type:food_type_enum;not null"`
	Quantity            int                  `gorm:"column:quantity;not null"`
	ExpiryDate          time.Time            `gorm:"column:expiry_date;not null"`
	Description         string               `gorm:"column:description;not null"`
	PickupAddress       string               `gorm:"column:pickup_address;not null"`
	PickupTime          time.Time            `gorm:"column:pickup_time;not null;index"`
	SpecialInstructions *string              `gorm:"column:special_instructions"`
	Status              enums.DonationStatus `gorm:"column:status;type:donation_status_enum;not null;default:'pending';index;index:idx_food_donations_donor_status"`
	ReceiverID          *uuid.UUID           `gorm:"column:receiver_id;type:uuid"`
	ReservedAt          *time.Time           `gorm:"column:reserved_at"`
	CollectedAt         *time.Time           `gorm:"column:collected_at"`
	CompletedAt         *time.Time           `gorm:"column:completed_at"`
	CreatedAt           time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

package donations

import (
	"time"

	"github.com/google/uuid"

	"github.com/mealbridge/mealbridge-backend/pkg/db/models"
	"github.com/mealbridge/mealbridge-backend/pkg/enums"
)

// DonationDTO is the transport representation of a food donation.
type DonationDTO struct {
	ID                  uuid.UUID            `json:"id"`
	DonorID             uuid.UUID            `json:"donor_id"`
	DonorType           enums.DonorType      `json:"donor_type"`
	OrganizationName    string               `json:"organization_name"`
	FoodType            enums.FoodType       `json:"food_type"`
	Quantity            int                  `json:"quantity"`
	ExpiryDate          time.Time            `json:"expiry_date"`
	Description         string               `json:"description"`
	PickupAddress       string               `json:"pickup_address"`
	PickupTime          time.Time            `json:"pickup_time"`
	SpecialInstructions *string              `json:"special_instructions,omitempty"`
	Status              enums.DonationStatus `json:"status"`
	ReceiverID          *uuid.UUID           `json:"receiver_id,omitempty"`
	ReservedAt          *time.Time           `json:"reserved_at,omitempty"`
	CollectedAt         *time.Time           `json:"collected_at,omitempty"`
	CompletedAt         *time.Time           `json:"completed_at,omitempty"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

func FromModel(m *models.FoodDonation) *DonationDTO {
	if m == nil {
		return nil
	}
	return &DonationDTO{
		ID:                  m.ID,
		DonorID:             m.DonorID,
		DonorType:           m.DonorType,
		OrganizationName:    m.OrganizationName,
		FoodType:            m.FoodType,
		Quantity:            m.Quantity,
		ExpiryDate:          m.ExpiryDate,
		Description:         m.Description,
		PickupAddress:       m.PickupAddress,
		PickupTime:          m.PickupTime,
		SpecialInstructions: m.SpecialInstructions,
		Status:              m.Status,
		ReceiverID:          m.ReceiverID,
		ReservedAt:          m.ReservedAt,
		CollectedAt:         m.CollectedAt,
		CompletedAt:         m.CompletedAt,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

func FromModels(rows []models.FoodDonation) []DonationDTO {
	out := make([]DonationDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}

// AvailableFilters describe the inputs supported by the available listing.
type AvailableFilters struct {
	FoodType  *enums.FoodType
	DonorType *enums.DonorType
	Now       time.Time
}

// DonationList wraps a donation page plus the next page cursor.
type DonationList struct {
	Donations  []DonationDTO `json:"donations"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// StatusCount pairs a lifecycle status with its row count and summed quantity.
type StatusCount struct {
	Status        enums.DonationStatus `json:"status"`
	Count         int64                `json:"count"`
	TotalQuantity int64                `json:"total_quantity"`
}

// DashboardStats aggregates a donor's activity.
type DashboardStats struct {
	TotalDonations int64         `json:"total_donations"`
	TotalQuantity  int64         `json:"total_quantity"`
	ByStatus       []StatusCount `json:"by_status"`
	Recent         []DonationDTO `json:"recent"`
}

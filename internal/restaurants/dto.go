package restaurants

import (
	"time"

	"github.com/google/uuid"

	"github.com/mealbridge/mealbridge-backend/pkg/db/models"
)

// RestaurantDTO is the transport representation of a restaurant profile.
type RestaurantDTO struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	OwnerID        uuid.UUID `json:"owner_id"`
	Email          string    `json:"email"`
	Phone          *string   `json:"phone,omitempty"`
	Address        string    `json:"address"`
	CuisineType    *string   `json:"cuisine_type,omitempty"`
	OperatingHours *string   `json:"operating_hours,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CreateRestaurantDTO holds the fields the repo needs to persist a restaurant.
type CreateRestaurantDTO struct {
	Name           string
	OwnerID        uuid.UUID
	Email          string
	Phone          *string
	Address        string
	CuisineType    *string
	OperatingHours *string
}

func FromModel(m *models.Restaurant) *RestaurantDTO {
	if m == nil {
		return nil
	}
	return &RestaurantDTO{
		ID:             m.ID,
		Name:           m.Name,
		OwnerID:        m.OwnerID,
		Email:          m.Email,
		Phone:          m.Phone,
		Address:        m.Address,
		CuisineType:    m.CuisineType,
		OperatingHours: m.OperatingHours,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func FromModels(rows []models.Restaurant) []RestaurantDTO {
	out := make([]RestaurantDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}

func (c CreateRestaurantDTO) ToModel() *models.Restaurant {
	return &models.Restaurant{
		Name:           c.Name,
		OwnerID:        c.OwnerID,
		Email:          c.Email,
		Phone:          c.Phone,
		Address:        c.Address,
		CuisineType:    c.CuisineType,
		OperatingHours: c.OperatingHours,
	}
}

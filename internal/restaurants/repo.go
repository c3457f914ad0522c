package restaurants

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mealbridge/mealbridge-backend/pkg/db/models"
)

// Repository handles restaurant persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to restaurant operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new restaurant row.
func (r *Repository) Create(ctx context.Context, dto CreateRestaurantDTO) (*models.Restaurant, error) {
	restaurant := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(restaurant).Error; err != nil {
		return nil, err
	}
	return restaurant, nil
}

// FindByID loads a restaurant by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	if err := r.db.WithContext(ctx).First(&restaurant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &restaurant, nil
}

// FindByOwner returns all restaurants owned by the provided user.
func (r *Repository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Restaurant, error) {
	var rows []models.Restaurant
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// List returns all restaurant profiles ordered by newest first.
func (r *Repository) List(ctx context.Context) ([]models.Restaurant, error) {
	var rows []models.Restaurant
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Update saves the provided restaurant.
func (r *Repository) Update(ctx context.Context, restaurant *models.Restaurant) error {
	if restaurant == nil {
		return fmt.Errorf("restaurant is required")
	}
	return r.db.WithContext(ctx).Save(restaurant).Error
}

// Delete removes the restaurant row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Restaurant{}, "id = ?", id).Error
}

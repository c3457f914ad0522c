package donations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mealbridge/mealbridge-backend/pkg/db/models"
	"github.com/mealbridge/mealbridge-backend/pkg/enums"
	"github.com/mealbridge/mealbridge-backend/pkg/pagination"
)

// TransitionParams describe a guarded status move. The update only lands
// when the row still carries FromStatus, which is what makes concurrent
// reservations race-safe.
type TransitionParams struct {
	DonationID      uuid.UUID
	FromStatus      enums.DonationStatus
	ToStatus        enums.DonationStatus
	SetReceiver     *uuid.UUID
	Timestamp       time.Time
	TimestampColumn string
}

// Repository defines persistence operations for food donations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, donation *models.FoodDonation) (*models.FoodDonation, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.FoodDonation, error)
	ListAvailable(ctx context.Context, params pagination.Params, filters AvailableFilters) ([]models.FoodDonation, *pagination.Cursor, error)
	ListByDonor(ctx context.Context, donorID uuid.UUID, params pagination.Params) ([]models.FoodDonation, *pagination.Cursor, error)
	ListByReceiver(ctx context.Context, receiverID uuid.UUID, params pagination.Params) ([]models.FoodDonation, *pagination.Cursor, error)
	Transition(ctx context.Context, params TransitionParams) (bool, error)
	CountByStatus(ctx context.Context, donorID uuid.UUID) ([]StatusCount, error)
	FindRecentByDonor(ctx context.Context, donorID uuid.UUID, limit int) ([]models.FoodDonation, error)
	FindReservedPickupsBetween(ctx context.Context, from, to time.Time) ([]models.FoodDonation, error)
}

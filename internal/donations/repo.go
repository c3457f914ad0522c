package donations

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mealbridge/mealbridge-backend/pkg/db/models"
	"github.com/mealbridge/mealbridge-backend/pkg/enums"
	"github.com/mealbridge/mealbridge-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a donations repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, donation *models.FoodDonation) (*models.FoodDonation, error) {
	if err := r.db.WithContext(ctx).Create(donation).Error; err != nil {
		return nil, err
	}
	return donation, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.FoodDonation, error) {
	var donation models.FoodDonation
	if err := r.db.WithContext(ctx).First(&donation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &donation, nil
}

func (r *repository) ListAvailable(ctx context.Context, params pagination.Params, filters AvailableFilters) ([]models.FoodDonation, *pagination.Cursor, error) {
	now := filters.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	query := r.db.WithContext(ctx).
		Model(&models.FoodDonation{}).
		Where("status = ?", enums.DonationAvailable).
		Where("expiry_date > ?", now)
	if filters.FoodType != nil {
		query = query.Where("food_type = ?", *filters.FoodType)
	}
	if filters.DonorType != nil {
		query = query.Where("donor_type = ?", *filters.DonorType)
	}
	return r.page(query, params)
}

func (r *repository) ListByDonor(ctx context.Context, donorID uuid.UUID, params pagination.Params) ([]models.FoodDonation, *pagination.Cursor, error) {
	query := r.db.WithContext(ctx).
		Model(&models.FoodDonation{}).
		Where("donor_id = ?", donorID)
	return r.page(query, params)
}

func (r *repository) ListByReceiver(ctx context.Context, receiverID uuid.UUID, params pagination.Params) ([]models.FoodDonation, *pagination.Cursor, error) {
	query := r.db.WithContext(ctx).
		Model(&models.FoodDonation{}).
		Where("receiver_id = ?", receiverID)
	return r.page(query, params)
}

func (r *repository) page(query *gorm.DB, params pagination.Params) ([]models.FoodDonation, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, nil, err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.FoodDonation
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) > normalized {
		rows = rows[:normalized]
		last := rows[normalized-1]
		return rows, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return rows, nil, nil
}

// Transition performs the guarded status move. It reports false when the
// row was not in FromStatus anymore, which callers translate into a state
// conflict.
func (r *repository) Transition(ctx context.Context, params TransitionParams) (bool, error) {
	updates := map[string]any{
		"status":     params.ToStatus,
		"updated_at": params.Timestamp,
	}
	if params.TimestampColumn != "" {
		updates[params.TimestampColumn] = params.Timestamp
	}
	if params.SetReceiver != nil {
		updates["receiver_id"] = *params.SetReceiver
	}

	result := r.db.WithContext(ctx).
		Model(&models.FoodDonation{}).
		Where("id = ? AND status = ?", params.DonationID, params.FromStatus).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) CountByStatus(ctx context.Context, donorID uuid.UUID) ([]StatusCount, error) {
	var counts []StatusCount
	err := r.db.WithContext(ctx).
		Model(&models.FoodDonation{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(quantity), 0) AS total_quantity").
		Where("donor_id = ?", donorID).
		Group("status").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *repository) FindRecentByDonor(ctx context.Context, donorID uuid.UUID, limit int) ([]models.FoodDonation, error) {
	if limit <= 0 {
		limit = 5
	}
	var rows []models.FoodDonation
	err := r.db.WithContext(ctx).
		Where("donor_id = ?", donorID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindReservedPickupsBetween(ctx context.Context, from, to time.Time) ([]models.FoodDonation, error) {
	if !to.After(from) {
		return nil, fmt.Errorf("invalid pickup window")
	}
	var rows []models.FoodDonation
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.DonationReserved).
		Where("pickup_time >= ? AND pickup_time < ?", from, to).
		Order("pickup_time ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

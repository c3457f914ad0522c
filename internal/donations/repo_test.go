package donations

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mealbridge/mealbridge-backend/pkg/db/models"
	"github.com/mealbridge/mealbridge-backend/pkg/enums"
	"github.com/mealbridge/mealbridge-backend/pkg/pagination"
)

func setupDonationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS food_donations (
  id TEXT PRIMARY KEY,
  donor_id TEXT NOT NULL,
  donor_type TEXT NOT NULL,
  organization_name TEXT NOT NULL,
  food_type TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  expiry_date DATETIME NOT NULL,
  description TEXT NOT NULL,
  pickup_address TEXT NOT NULL,
  pickup_time DATETIME NOT NULL,
  special_instructions TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  receiver_id TEXT,
  reserved_at DATETIME,
  collected_at DATETIME,
  completed_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	t.Cleanup(func() {
		_ = db.Exec("DELETE FROM food_donations").Error
	})
	return db
}

func newDonation(t *testing.T, db *gorm.DB, donorID uuid.UUID, status enums.DonationStatus, createdAt time.Time) *models.FoodDonation {
	t.Helper()
	donation := &models.FoodDonation{
		ID:               uuid.New(),
		DonorID:          donorID,
		DonorType:        enums.DonorRestaurant,
		OrganizationName: "Harvest Table",
		FoodType:         enums.FoodPrepared,
		Quantity:         12,
		ExpiryDate:       createdAt.Add(48 * time.Hour),
		Description:      "Trays of prepared meals from tonight's service",
		PickupAddress:    "512 Elm Ave",
		PickupTime:       createdAt.Add(24 * time.Hour),
		Status:           status,
		CreatedAt:        createdAt,
		UpdatedAt:        createdAt,
	}
	require.NoError(t, db.Create(donation).Error)
	return donation
}

func TestRepositoryCreateAndFind(t *testing.T) {
	db := setupDonationsTestDB(t)
	repo := NewRepository(db)

	created := newDonation(t, db, uuid.New(), enums.DonationPending, time.Now().UTC())

	found, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, enums.DonationPending, found.Status)
	assert.Equal(t, 12, found.Quantity)
}

func TestRepositoryTransitionGuardsStatus(t *testing.T) {
	db := setupDonationsTestDB(t)
	repo := NewRepository(db)

	donation := newDonation(t, db, uuid.New(), enums.DonationAvailable, time.Now().UTC())
	receiverA := uuid.New()
	receiverB := uuid.New()
	now := time.Now().UTC()

	ok, err := repo.Transition(context.Background(), TransitionParams{
		DonationID:      donation.ID,
		FromStatus:      enums.DonationAvailable,
		ToStatus:        enums.DonationReserved,
		SetReceiver:     &receiverA,
		Timestamp:       now,
		TimestampColumn: "reserved_at",
	})
	require.NoError(t, err)
	assert.True(t, ok)

	// The losing racer sees zero rows affected and no state change.
	ok, err = repo.Transition(context.Background(), TransitionParams{
		DonationID:      donation.ID,
		FromStatus:      enums.DonationAvailable,
		ToStatus:        enums.DonationReserved,
		SetReceiver:     &receiverB,
		Timestamp:       now,
		TimestampColumn: "reserved_at",
	})
	require.NoError(t, err)
	assert.False(t, ok)

	found, err := repo.FindByID(context.Background(), donation.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.DonationReserved, found.Status)
	require.NotNil(t, found.ReceiverID)
	assert.Equal(t, receiverA, *found.ReceiverID)
	require.NotNil(t, found.ReservedAt)
}

func TestRepositoryListAvailableFiltersExpired(t *testing.T) {
	db := setupDonationsTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	fresh := newDonation(t, db, uuid.New(), enums.DonationAvailable, now.Add(-time.Hour))
	stale := newDonation(t, db, uuid.New(), enums.DonationAvailable, now.Add(-2*time.Hour))
	require.NoError(t, db.Model(stale).UpdateColumn("expiry_date", now.Add(-time.Minute)).Error)
	newDonation(t, db, uuid.New(), enums.DonationPending, now.Add(-3*time.Hour))

	rows, next, err := repo.ListAvailable(context.Background(), pagination.Params{Limit: 10}, AvailableFilters{Now: now})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, fresh.ID, rows[0].ID)
	assert.Nil(t, next)
}

func TestRepositoryListAvailablePagination(t *testing.T) {
	db := setupDonationsTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	older := newDonation(t, db, uuid.New(), enums.DonationAvailable, now.Add(-2*time.Hour))
	newer := newDonation(t, db, uuid.New(), enums.DonationAvailable, now.Add(-time.Hour))

	first, next, err := repo.ListAvailable(context.Background(), pagination.Params{Limit: 1}, AvailableFilters{Now: now})
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, newer.ID, first[0].ID)
	require.NotNil(t, next)

	second, last, err := repo.ListAvailable(context.Background(), pagination.Params{
		Limit:  1,
		Cursor: pagination.EncodeCursor(*next),
	}, AvailableFilters{Now: now})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, older.ID, second[0].ID)
	assert.Nil(t, last)
}

func TestRepositoryListAvailableFoodTypeFilter(t *testing.T) {
	db := setupDonationsTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	prepared := newDonation(t, db, uuid.New(), enums.DonationAvailable, now.Add(-time.Hour))
	beverages := newDonation(t, db, uuid.New(), enums.DonationAvailable, now.Add(-2*time.Hour))
	require.NoError(t, db.Model(beverages).UpdateColumn("food_type", enums.FoodBeverages).Error)

	foodType := enums.FoodPrepared
	rows, _, err := repo.ListAvailable(context.Background(), pagination.Params{Limit: 10}, AvailableFilters{
		Now:      now,
		FoodType: &foodType,
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, prepared.ID, rows[0].ID)
}

func TestRepositoryListByReceiver(t *testing.T) {
	db := setupDonationsTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	receiverID := uuid.New()
	reserved := newDonation(t, db, uuid.New(), enums.DonationReserved, now.Add(-time.Hour))
	require.NoError(t, db.Model(reserved).UpdateColumn("receiver_id", receiverID).Error)
	newDonation(t, db, uuid.New(), enums.DonationAvailable, now)

	rows, _, err := repo.ListByReceiver(context.Background(), receiverID, pagination.Params{Limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, reserved.ID, rows[0].ID)
}

func TestRepositoryDashboardAggregates(t *testing.T) {
	db := setupDonationsTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	donorID := uuid.New()
	newDonation(t, db, donorID, enums.DonationPending, now.Add(-3*time.Hour))
	newDonation(t, db, donorID, enums.DonationAvailable, now.Add(-2*time.Hour))
	newDonation(t, db, donorID, enums.DonationAvailable, now.Add(-time.Hour))
	newDonation(t, db, uuid.New(), enums.DonationAvailable, now)

	counts, err := repo.CountByStatus(context.Background(), donorID)
	require.NoError(t, err)
	byStatus := map[enums.DonationStatus]StatusCount{}
	for _, c := range counts {
		byStatus[c.Status] = c
	}
	assert.Equal(t, int64(1), byStatus[enums.DonationPending].Count)
	assert.Equal(t, int64(2), byStatus[enums.DonationAvailable].Count)
	assert.Equal(t, int64(12), byStatus[enums.DonationPending].TotalQuantity)
	assert.Equal(t, int64(24), byStatus[enums.DonationAvailable].TotalQuantity)

	recent, err := repo.FindRecentByDonor(context.Background(), donorID, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.True(t, recent[0].CreatedAt.After(recent[1].CreatedAt))
}

func TestRepositoryCountByStatusEmpty(t *testing.T) {
	db := setupDonationsTestDB(t)
	repo := NewRepository(db)

	counts, err := repo.CountByStatus(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestRepositoryFindReservedPickupsBetween(t *testing.T) {
	db := setupDonationsTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	soon := newDonation(t, db, uuid.New(), enums.DonationReserved, now.Add(-time.Hour))
	require.NoError(t, db.Model(soon).UpdateColumn("pickup_time", now.Add(30*time.Minute)).Error)
	later := newDonation(t, db, uuid.New(), enums.DonationReserved, now.Add(-time.Hour))
	require.NoError(t, db.Model(later).UpdateColumn("pickup_time", now.Add(72*time.Hour)).Error)
	unreserved := newDonation(t, db, uuid.New(), enums.DonationAvailable, now.Add(-time.Hour))
	require.NoError(t, db.Model(unreserved).UpdateColumn("pickup_time", now.Add(30*time.Minute)).Error)

	rows, err := repo.FindReservedPickupsBetween(context.Background(), now, now.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, soon.ID, rows[0].ID)
}

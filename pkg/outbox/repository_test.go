package outbox

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mealbridge/mealbridge-backend/pkg/db/models"
	"github.com/mealbridge/mealbridge-backend/pkg/enums"
)

func setupOutboxTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`
	require.NoError(t, db.Exec(schema).Error)
	t.Cleanup(func() {
		_ = db.Exec("DELETE FROM outbox_events").Error
	})
	return db
}

func seedOutboxEvent(t *testing.T, db *gorm.DB, createdAt time.Time, attempts int, published *time.Time) *models.OutboxEvent {
	t.Helper()
	event := &models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventDonationPublished,
		AggregateType: enums.AggregateDonation,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{"donation_id":"x"}`),
		CreatedAt:     createdAt,
		AttemptCount:  attempts,
		PublishedAt:   published,
	}
	require.NoError(t, db.Create(event).Error)
	return event
}

func TestFetchUnpublishedForPublishSkipsExhaustedRows(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	oldest := seedOutboxEvent(t, db, now.Add(-3*time.Minute), 0, nil)
	newest := seedOutboxEvent(t, db, now.Add(-1*time.Minute), 2, nil)
	seedOutboxEvent(t, db, now.Add(-2*time.Minute), 10, nil)
	seedOutboxEvent(t, db, now.Add(-4*time.Minute), 0, &now)

	rows, err := repo.FetchUnpublishedForPublish(db, 10, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, oldest.ID, rows[0].ID)
	assert.Equal(t, newest.ID, rows[1].ID)
}

func TestMarkPublishedTxRemovesRowFromFetch(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)

	event := seedOutboxEvent(t, db, time.Now().UTC(), 0, nil)
	require.NoError(t, repo.MarkPublishedTx(db, event.ID))

	rows, err := repo.FetchUnpublishedForPublish(db, 10, 10)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestMarkFailedTxIncrementsAttempts(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)

	event := seedOutboxEvent(t, db, time.Now().UTC(), 1, nil)
	require.NoError(t, repo.MarkFailedTx(db, event.ID, errors.New("broker unreachable")))

	var reloaded models.OutboxEvent
	require.NoError(t, db.First(&reloaded, "id = ?", event.ID).Error)
	assert.Equal(t, 2, reloaded.AttemptCount)
	require.NotNil(t, reloaded.LastError)
	assert.Equal(t, "broker unreachable", *reloaded.LastError)
}

func TestMarkTerminalTxPinsAttemptCeiling(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)

	event := seedOutboxEvent(t, db, time.Now().UTC(), 4, nil)
	require.NoError(t, repo.MarkTerminalTx(db, event.ID, errors.New("bad payload"), 10))

	rows, err := repo.FetchUnpublishedForPublish(db, 10, 10)
	require.NoError(t, err)
	assert.Empty(t, rows)

	var reloaded models.OutboxEvent
	require.NoError(t, db.First(&reloaded, "id = ?", event.ID).Error)
	assert.Equal(t, 10, reloaded.AttemptCount)
}

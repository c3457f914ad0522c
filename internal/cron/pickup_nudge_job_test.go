package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mealbridge/mealbridge-backend/pkg/db/models"
	"github.com/mealbridge/mealbridge-backend/pkg/enums"
	"github.com/mealbridge/mealbridge-backend/pkg/logger"
	"github.com/mealbridge/mealbridge-backend/pkg/outbox"
	"github.com/mealbridge/mealbridge-backend/pkg/outbox/payloads"
)

type fakePickupSource struct {
	donations []models.FoodDonation
	from      time.Time
	to        time.Time
	err       error
}

func (f *fakePickupSource) FindReservedPickupsBetween(ctx context.Context, from, to time.Time) ([]models.FoodDonation, error) {
	f.from = from
	f.to = to
	return f.donations, f.err
}

type fakeNudgeEmitter struct {
	events []outbox.DomainEvent
	err    error
}

func (f *fakeNudgeEmitter) EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

type nudgeTxRunner struct{}

func (nudgeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func reservedDonation(pickup time.Time) models.FoodDonation {
	receiverID := uuid.New()
	return models.FoodDonation{
		ID:         uuid.New(),
		DonorID:    uuid.New(),
		Status:     enums.DonationReserved,
		PickupTime: pickup,
		ReceiverID: &receiverID,
	}
}

func newPickupNudgeJob(t *testing.T, source *fakePickupSource, emitter *fakeNudgeEmitter) *pickupNudgeJob {
	t.Helper()
	jobIface, err := NewPickupNudgeJob(PickupNudgeJobParams{
		Logger:    logger.New(logger.Options{ServiceName: "test"}),
		DB:        nudgeTxRunner{},
		Donations: source,
		Outbox:    emitter,
	})
	if err != nil {
		t.Fatalf("NewPickupNudgeJob: %v", err)
	}
	job, ok := jobIface.(*pickupNudgeJob)
	if !ok {
		t.Fatalf("expected pickupNudgeJob, got %T", jobIface)
	}
	return job
}

func TestPickupNudgeJobEmitsForUpcomingPickups(t *testing.T) {
	now := time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC)
	first := reservedDonation(now.Add(30 * time.Minute))
	unbound := reservedDonation(now.Add(45 * time.Minute))
	unbound.ReceiverID = nil
	source := &fakePickupSource{donations: []models.FoodDonation{first, unbound}}
	emitter := &fakeNudgeEmitter{}
	job := newPickupNudgeJob(t, source, emitter)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !source.from.Equal(now) || !source.to.Equal(now.Add(defaultNudgeHorizon)) {
		t.Fatalf("unexpected window %s - %s", source.from, source.to)
	}
	if len(emitter.events) != 1 {
		t.Fatalf("expected one nudge, got %d", len(emitter.events))
	}
	event := emitter.events[0]
	if event.EventType != enums.EventDonationPickupNudge {
		t.Fatalf("unexpected event type %s", event.EventType)
	}
	if event.AggregateID != first.ID {
		t.Fatal("nudge bound to the wrong donation")
	}
	payload, ok := event.Data.(payloads.DonationPickupNudgeEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", event.Data)
	}
	if payload.ReceiverID != *first.ReceiverID {
		t.Fatal("nudge addressed to the wrong receiver")
	}
}

func TestPickupNudgeJobNoCandidates(t *testing.T) {
	emitter := &fakeNudgeEmitter{}
	job := newPickupNudgeJob(t, &fakePickupSource{}, emitter)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(emitter.events) != 0 {
		t.Fatal("no events expected")
	}
}

func TestPickupNudgeJobPropagatesErrors(t *testing.T) {
	source := &fakePickupSource{err: errors.New("boom")}
	job := newPickupNudgeJob(t, source, &fakeNudgeEmitter{})
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected source error")
	}

	source = &fakePickupSource{donations: []models.FoodDonation{reservedDonation(time.Now().Add(time.Hour))}}
	job = newPickupNudgeJob(t, source, &fakeNudgeEmitter{err: errors.New("emit failed")})
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected emit error")
	}
}

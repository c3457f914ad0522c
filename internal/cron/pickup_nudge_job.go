package cron

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mealbridge/mealbridge-backend/pkg/db/models"
	"github.com/mealbridge/mealbridge-backend/pkg/enums"
	"github.com/mealbridge/mealbridge-backend/pkg/logger"
	"github.com/mealbridge/mealbridge-backend/pkg/outbox"
	"github.com/mealbridge/mealbridge-backend/pkg/outbox/payloads"
)

const defaultNudgeHorizon = 2 * time.Hour

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type reservedPickupSource interface {
	FindReservedPickupsBetween(ctx context.Context, from, to time.Time) ([]models.FoodDonation, error)
}

type nudgeEmitter interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// PickupNudgeJobParams configure the pickup reminder job.
type PickupNudgeJobParams struct {
	Logger    *logger.Logger
	DB        txRunner
	Donations reservedPickupSource
	Outbox    nudgeEmitter
	Horizon   time.Duration
}

// NewPickupNudgeJob builds the job that reminds receivers about upcoming
// pickups. The outbox dedupe constraint keeps repeated cycles from emitting
// the same reminder twice.
func NewPickupNudgeJob(params PickupNudgeJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Donations == nil {
		return nil, fmt.Errorf("donations source required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	horizon := params.Horizon
	if horizon <= 0 {
		horizon = defaultNudgeHorizon
	}
	return &pickupNudgeJob{
		logg:      params.Logger,
		db:        params.DB,
		donations: params.Donations,
		outbox:    params.Outbox,
		horizon:   horizon,
		now:       time.Now,
	}, nil
}

type pickupNudgeJob struct {
	logg      *logger.Logger
	db        txRunner
	donations reservedPickupSource
	outbox    nudgeEmitter
	horizon   time.Duration
	now       func() time.Time
}

func (j *pickupNudgeJob) Name() string { return "donation-pickup-nudge" }

func (j *pickupNudgeJob) Run(ctx context.Context) error {
	from := j.now().UTC()
	to := from.Add(j.horizon)

	donations, err := j.donations.FindReservedPickupsBetween(ctx, from, to)
	if err != nil {
		return fmt.Errorf("load upcoming pickups: %w", err)
	}
	if len(donations) == 0 {
		j.logg.Info(ctx, "no pickups inside the nudge horizon")
		return nil
	}

	emitted := 0
	err = j.db.WithTx(ctx, func(tx *gorm.DB) error {
		for i := range donations {
			donation := &donations[i]
			if donation.ReceiverID == nil {
				continue
			}
			event := outbox.DomainEvent{
				EventType:     enums.EventDonationPickupNudge,
				AggregateType: enums.AggregateDonation,
				AggregateID:   donation.ID,
				Version:       1,
				Data: payloads.DonationPickupNudgeEvent{
					DonationID: donation.ID,
					DonorID:    donation.DonorID,
					ReceiverID: *donation.ReceiverID,
					PickupTime: donation.PickupTime,
				},
			}
			if err := j.outbox.EmitIfNotExists(ctx, tx, event); err != nil {
				return err
			}
			emitted++
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("emit pickup nudges: %w", err)
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"window_from": from,
		"window_to":   to,
		"candidates":  len(donations),
		"emitted":     emitted,
	})
	j.logg.Info(logCtx, "pickup nudge cycle complete")
	return nil
}

package donations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mealbridge/mealbridge-backend/pkg/db/models"
	"github.com/mealbridge/mealbridge-backend/pkg/enums"
	pkgerrors "github.com/mealbridge/mealbridge-backend/pkg/errors"
	"github.com/mealbridge/mealbridge-backend/pkg/outbox"
	"github.com/mealbridge/mealbridge-backend/pkg/outbox/payloads"
	"github.com/mealbridge/mealbridge-backend/pkg/pagination"
)

const minDescriptionLength = 10

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Actor identifies the authenticated caller for ownership checks.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// CreateInput captures the fields accepted when submitting a donation.
type CreateInput struct {
	DonorType           string    `json:"donor_type" validate:"required"`
	OrganizationName    string    `json:"organization_name" validate:"required"`
	FoodType            string    `json:"food_type" validate:"required"`
	Quantity            int       `json:"quantity" validate:"required,min=1"`
	ExpiryDate          time.Time `json:"expiry_date" validate:"required"`
	Description         string    `json:"description" validate:"required"`
	PickupAddress       string    `json:"pickup_address" validate:"required"`
	PickupTime          time.Time `json:"pickup_time" validate:"required"`
	SpecialInstructions *string   `json:"special_instructions,omitempty"`
}

// Service defines donation-level operations.
type Service interface {
	Create(ctx context.Context, actor Actor, input CreateInput) (*DonationDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*DonationDTO, error)
	ListAvailable(ctx context.Context, params pagination.Params, filters AvailableFilters) (*DonationList, error)
	ListByDonor(ctx context.Context, donorID uuid.UUID, params pagination.Params) (*DonationList, error)
	ListMine(ctx context.Context, actor Actor, params pagination.Params) (*DonationList, error)
	ListMyReservations(ctx context.Context, actor Actor, params pagination.Params) (*DonationList, error)
	Dashboard(ctx context.Context, actor Actor) (*DashboardStats, error)
	Publish(ctx context.Context, actor Actor, donationID uuid.UUID) (*DonationDTO, error)
	Reserve(ctx context.Context, actor Actor, donationID uuid.UUID) (*DonationDTO, error)
	Collect(ctx context.Context, actor Actor, donationID uuid.UUID) (*DonationDTO, error)
	Complete(ctx context.Context, actor Actor, donationID uuid.UUID) (*DonationDTO, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	now    func() time.Time
}

// NewService builds a donation service with the required dependencies.
func NewService(repo Repository, tx txRunner, outboxSvc outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("donations repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:   repo,
		tx:     tx,
		outbox: outboxSvc,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Create(ctx context.Context, actor Actor, input CreateInput) (*DonationDTO, error) {
	if actor.Role != enums.RoleDonor && actor.Role != enums.RoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only donors can submit donations")
	}

	donorType, err := enums.ParseDonorType(input.DonorType)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid donor type")
	}
	foodType, err := enums.ParseFoodType(input.FoodType)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid food type")
	}
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if len(strings.TrimSpace(input.Description)) < minDescriptionLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "description must be at least 10 characters")
	}
	now := s.now()
	if !input.ExpiryDate.After(now) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expiry date must be in the future")
	}
	if !input.PickupTime.After(now) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pickup time must be in the future")
	}
	if strings.TrimSpace(input.OrganizationName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "organization name is required")
	}
	if strings.TrimSpace(input.PickupAddress) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pickup address is required")
	}

	donation := &models.FoodDonation{
		DonorID:             actor.UserID,
		DonorType:           donorType,
		OrganizationName:    strings.TrimSpace(input.OrganizationName),
		FoodType:            foodType,
		Quantity:            input.Quantity,
		ExpiryDate:          input.ExpiryDate,
		Description:         strings.TrimSpace(input.Description),
		PickupAddress:       strings.TrimSpace(input.PickupAddress),
		PickupTime:          input.PickupTime,
		SpecialInstructions: input.SpecialInstructions,
		Status:              enums.DonationPending,
	}
	created, err := s.repo.Create(ctx, donation)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create donation")
	}
	return FromModel(created), nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*DonationDTO, error) {
	donation, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(donation), nil
}

func (s *service) ListAvailable(ctx context.Context, params pagination.Params, filters AvailableFilters) (*DonationList, error) {
	if filters.Now.IsZero() {
		filters.Now = s.now()
	}
	rows, next, err := s.repo.ListAvailable(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list available donations")
	}
	return buildList(rows, next), nil
}

func (s *service) ListByDonor(ctx context.Context, donorID uuid.UUID, params pagination.Params) (*DonationList, error) {
	rows, next, err := s.repo.ListByDonor(ctx, donorID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list donor donations")
	}
	return buildList(rows, next), nil
}

func (s *service) ListMine(ctx context.Context, actor Actor, params pagination.Params) (*DonationList, error) {
	return s.ListByDonor(ctx, actor.UserID, params)
}

func (s *service) ListMyReservations(ctx context.Context, actor Actor, params pagination.Params) (*DonationList, error) {
	rows, next, err := s.repo.ListByReceiver(ctx, actor.UserID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reservations")
	}
	return buildList(rows, next), nil
}

func (s *service) Dashboard(ctx context.Context, actor Actor) (*DashboardStats, error) {
	counts, err := s.repo.CountByStatus(ctx, actor.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count donations")
	}
	total := int64(0)
	quantity := int64(0)
	for _, c := range counts {
		total += c.Count
		quantity += c.TotalQuantity
	}
	recent, err := s.repo.FindRecentByDonor(ctx, actor.UserID, 5)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recent donations")
	}
	return &DashboardStats{
		TotalDonations: total,
		TotalQuantity:  quantity,
		ByStatus:       counts,
		Recent:         FromModels(recent),
	}, nil
}

func (s *service) Publish(ctx context.Context, actor Actor, donationID uuid.UUID) (*DonationDTO, error) {
	return s.transition(ctx, actor, donationID, transitionSpec{
		from:      enums.DonationPending,
		to:        enums.DonationAvailable,
		conflict:  "donation is not pending",
		authorize: requireDonor,
		event: func(d *models.FoodDonation, at time.Time) outbox.DomainEvent {
			return outbox.DomainEvent{
				EventType:     enums.EventDonationPublished,
				AggregateType: enums.AggregateDonation,
				AggregateID:   d.ID,
				Version:       1,
				Actor:         buildActor(actor),
				Data: payloads.DonationPublishedEvent{
					DonationID:       d.ID,
					DonorID:          d.DonorID,
					OrganizationName: d.OrganizationName,
					FoodType:         d.FoodType,
					Quantity:         d.Quantity,
					ExpiryDate:       d.ExpiryDate,
					PickupTime:       d.PickupTime,
				},
			}
		},
	})
}

func (s *service) Reserve(ctx context.Context, actor Actor, donationID uuid.UUID) (*DonationDTO, error) {
	receiverID := actor.UserID
	return s.transition(ctx, actor, donationID, transitionSpec{
		from:            enums.DonationAvailable,
		to:              enums.DonationReserved,
		conflict:        "donation is no longer available",
		setReceiver:     &receiverID,
		timestampColumn: "reserved_at",
		authorize: func(actor Actor, d *models.FoodDonation) error {
			if actor.Role != enums.RoleReceiver && actor.Role != enums.RoleAdmin {
				return pkgerrors.New(pkgerrors.CodeForbidden, "only receivers can reserve donations")
			}
			if d.DonorID == actor.UserID {
				return pkgerrors.New(pkgerrors.CodeForbidden, "cannot reserve your own donation")
			}
			return nil
		},
		event: func(d *models.FoodDonation, at time.Time) outbox.DomainEvent {
			return outbox.DomainEvent{
				EventType:     enums.EventDonationReserved,
				AggregateType: enums.AggregateDonation,
				AggregateID:   d.ID,
				Version:       1,
				Actor:         buildActor(actor),
				Data: payloads.DonationReservedEvent{
					DonationID: d.ID,
					DonorID:    d.DonorID,
					ReceiverID: receiverID,
					ReservedAt: at,
					PickupTime: d.PickupTime,
				},
			}
		},
	})
}

func (s *service) Collect(ctx context.Context, actor Actor, donationID uuid.UUID) (*DonationDTO, error) {
	return s.transition(ctx, actor, donationID, transitionSpec{
		from:            enums.DonationReserved,
		to:              enums.DonationCollected,
		conflict:        "donation is not reserved",
		timestampColumn: "collected_at",
		authorize: func(actor Actor, d *models.FoodDonation) error {
			if actor.Role == enums.RoleAdmin {
				return nil
			}
			if d.ReceiverID == nil || *d.ReceiverID != actor.UserID {
				return pkgerrors.New(pkgerrors.CodeForbidden, "donation is reserved by another receiver")
			}
			return nil
		},
		event: func(d *models.FoodDonation, at time.Time) outbox.DomainEvent {
			receiverID := uuid.Nil
			if d.ReceiverID != nil {
				receiverID = *d.ReceiverID
			}
			return outbox.DomainEvent{
				EventType:     enums.EventDonationCollected,
				AggregateType: enums.AggregateDonation,
				AggregateID:   d.ID,
				Version:       1,
				Actor:         buildActor(actor),
				Data: payloads.DonationCollectedEvent{
					DonationID:  d.ID,
					DonorID:     d.DonorID,
					ReceiverID:  receiverID,
					CollectedAt: at,
				},
			}
		},
	})
}

func (s *service) Complete(ctx context.Context, actor Actor, donationID uuid.UUID) (*DonationDTO, error) {
	return s.transition(ctx, actor, donationID, transitionSpec{
		from:            enums.DonationCollected,
		to:              enums.DonationCompleted,
		conflict:        "donation has not been collected",
		timestampColumn: "completed_at",
		authorize:       requireDonor,
		event: func(d *models.FoodDonation, at time.Time) outbox.DomainEvent {
			receiverID := uuid.Nil
			if d.ReceiverID != nil {
				receiverID = *d.ReceiverID
			}
			return outbox.DomainEvent{
				EventType:     enums.EventDonationCompleted,
				AggregateType: enums.AggregateDonation,
				AggregateID:   d.ID,
				Version:       1,
				Actor:         buildActor(actor),
				Data: payloads.DonationCompletedEvent{
					DonationID:  d.ID,
					DonorID:     d.DonorID,
					ReceiverID:  receiverID,
					CompletedAt: at,
				},
			}
		},
	})
}

type transitionSpec struct {
	from            enums.DonationStatus
	to              enums.DonationStatus
	conflict        string
	setReceiver     *uuid.UUID
	timestampColumn string
	authorize       func(actor Actor, d *models.FoodDonation) error
	event           func(d *models.FoodDonation, at time.Time) outbox.DomainEvent
}

func (s *service) transition(ctx context.Context, actor Actor, donationID uuid.UUID, spec transitionSpec) (*DonationDTO, error) {
	if donationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "donation id required")
	}
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var updated *models.FoodDonation
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		donation, err := repo.FindByID(ctx, donationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "donation not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load donation")
		}
		if err := spec.authorize(actor, donation); err != nil {
			return err
		}
		if donation.Status != spec.from {
			return pkgerrors.New(pkgerrors.CodeStateConflict, spec.conflict)
		}

		at := s.now()
		ok, err := repo.Transition(ctx, TransitionParams{
			DonationID:      donationID,
			FromStatus:      spec.from,
			ToStatus:        spec.to,
			SetReceiver:     spec.setReceiver,
			Timestamp:       at,
			TimestampColumn: spec.timestampColumn,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update donation status")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, spec.conflict)
		}

		donation.Status = spec.to
		if spec.setReceiver != nil {
			donation.ReceiverID = spec.setReceiver
		}
		applyTimestamp(donation, spec.timestampColumn, at)

		if err := s.outbox.Emit(ctx, tx, spec.event(donation, at)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit donation event")
		}
		updated = donation
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(updated), nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.FoodDonation, error) {
	donation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "donation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load donation")
	}
	return donation, nil
}

func requireDonor(actor Actor, d *models.FoodDonation) error {
	if actor.Role == enums.RoleAdmin || d.DonorID == actor.UserID {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "not the donation owner")
}

func applyTimestamp(d *models.FoodDonation, column string, at time.Time) {
	switch column {
	case "reserved_at":
		d.ReservedAt = &at
	case "collected_at":
		d.CollectedAt = &at
	case "completed_at":
		d.CompletedAt = &at
	}
}

func buildActor(actor Actor) *outbox.ActorRef {
	return &outbox.ActorRef{
		UserID: actor.UserID,
		Role:   string(actor.Role),
	}
}

func buildList(rows []models.FoodDonation, next *pagination.Cursor) *DonationList {
	list := &DonationList{Donations: FromModels(rows)}
	if next != nil {
		list.NextCursor = pagination.EncodeCursor(*next)
	}
	return list
}

package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/mealbridge/mealbridge-backend/pkg/enums"
)

// DonationPublishedEvent signals a donation entering the available pool.
type DonationPublishedEvent struct {
	DonationID       uuid.UUID      `json:"donation_id"`
	DonorID          uuid.UUID      `json:"donor_id"`
	OrganizationName string         `json:"organization_name"`
	FoodType         enums.FoodType `json:"food_type"`
	Quantity         int            `json:"quantity"`
	ExpiryDate       time.Time      `json:"expiry_date"`
	PickupTime       time.Time      `json:"pickup_time"`
}

// DonationReservedEvent is emitted when a receiver wins the reservation.
type DonationReservedEvent struct {
	DonationID uuid.UUID `json:"donation_id"`
	DonorID    uuid.UUID `json:"donor_id"`
	ReceiverID uuid.UUID `json:"receiver_id"`
	ReservedAt time.Time `json:"reserved_at"`
	PickupTime time.Time `json:"pickup_time"`
}

// DonationCollectedEvent is emitted when the receiver picks up the food.
type DonationCollectedEvent struct {
	DonationID  uuid.UUID `json:"donation_id"`
	DonorID     uuid.UUID `json:"donor_id"`
	ReceiverID  uuid.UUID `json:"receiver_id"`
	CollectedAt time.Time `json:"collected_at"`
}

// DonationCompletedEvent is emitted when the donor confirms the handover.
type DonationCompletedEvent struct {
	DonationID  uuid.UUID `json:"donation_id"`
	DonorID     uuid.UUID `json:"donor_id"`
	ReceiverID  uuid.UUID `json:"receiver_id"`
	CompletedAt time.Time `json:"completed_at"`
}

// DonationPickupNudgeEvent reminds a receiver that pickup time approaches.
type DonationPickupNudgeEvent struct {
	DonationID uuid.UUID `json:"donationId"`
	DonorID    uuid.UUID `json:"donorId"`
	ReceiverID uuid.UUID `json:"receiverId"`
	PickupTime time.Time `json:"pickupTime"`
}

package enums

import "fmt"

// DonationStatus maps to the donation_status enum in Postgres. The
// lifecycle is monotonic: pending, available, reserved, collected,
// completed, with no transitions backwards.
type DonationStatus string

const (
	DonationPending   DonationStatus = "pending"
	DonationAvailable DonationStatus = "available"
	DonationReserved  DonationStatus = "reserved"
	DonationCollected DonationStatus = "collected"
	DonationCompleted DonationStatus = "completed"
)

var validDonationStatuses = []DonationStatus{
	DonationPending,
	DonationAvailable,
	DonationReserved,
	DonationCollected,
	DonationCompleted,
}

func (s DonationStatus) IsValid() bool {
	for _, candidate := range validDonationStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseDonationStatus converts raw input into DonationStatus.
func ParseDonationStatus(value string) (DonationStatus, error) {
	for _, candidate := range validDonationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid donation status %q", value)
}

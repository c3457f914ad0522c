package enums

import "fmt"

// DonorType maps to the donor_type enum in Postgres.
type DonorType string

const (
	DonorGrocery    DonorType = "grocery"
	DonorRestaurant DonorType = "restaurant"
)

var validDonorTypes = []DonorType{
	DonorGrocery,
	DonorRestaurant,
}

func (d DonorType) IsValid() bool {
	for _, candidate := range validDonorTypes {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDonorType converts raw input into DonorType.
func ParseDonorType(value string) (DonorType, error) {
	for _, candidate := range validDonorTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid donor type %q", value)
}

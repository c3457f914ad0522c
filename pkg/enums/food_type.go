package enums

import "fmt"

// FoodType maps to the food_type enum in Postgres.
type FoodType string

const (
	FoodPerishable    FoodType = "perishable"
	FoodNonPerishable FoodType = "non-perishable"
	FoodPrepared      FoodType = "prepared"
	FoodBeverages     FoodType = "beverages"
	FoodOther         FoodType = "other"
)

var validFoodTypes = []FoodType{
	FoodPerishable,
	FoodNonPerishable,
	FoodPrepared,
	FoodBeverages,
	FoodOther,
}

func (f FoodType) IsValid() bool {
	for _, candidate := range validFoodTypes {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseFoodType converts raw input into FoodType.
func ParseFoodType(value string) (FoodType, error) {
	for _, candidate := range validFoodTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid food type %q", value)
}

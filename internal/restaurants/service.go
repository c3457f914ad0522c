package restaurants

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mealbridge/mealbridge-backend/pkg/db"
	"github.com/mealbridge/mealbridge-backend/pkg/db/models"
	"github.com/mealbridge/mealbridge-backend/pkg/enums"
	pkgerrors "github.com/mealbridge/mealbridge-backend/pkg/errors"
)

type restaurantRepository interface {
	Create(ctx context.Context, dto CreateRestaurantDTO) (*models.Restaurant, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Restaurant, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Restaurant, error)
	List(ctx context.Context) ([]models.Restaurant, error)
	Update(ctx context.Context, restaurant *models.Restaurant) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service exposes restaurant profile operations.
type Service interface {
	Register(ctx context.Context, ownerID uuid.UUID, input RegisterInput) (*RestaurantDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*RestaurantDTO, error)
	List(ctx context.Context) ([]RestaurantDTO, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]RestaurantDTO, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, input UpdateInput) (*RestaurantDTO, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
}

// Actor identifies the authenticated caller for ownership checks.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// RegisterInput captures the fields accepted when registering a restaurant.
type RegisterInput struct {
	Name           string  `json:"name" validate:"required"`
	Email          string  `json:"email" validate:"required,email"`
	Phone          *string `json:"phone,omitempty"`
	Address        string  `json:"address" validate:"required"`
	CuisineType    *string `json:"cuisine_type,omitempty"`
	OperatingHours *string `json:"operating_hours,omitempty"`
}

// UpdateInput captures the allowed restaurant fields for mutation.
type UpdateInput struct {
	Name           *string `json:"name,omitempty"`
	Email          *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone          *string `json:"phone,omitempty"`
	Address        *string `json:"address,omitempty"`
	CuisineType    *string `json:"cuisine_type,omitempty"`
	OperatingHours *string `json:"operating_hours,omitempty"`
}

type service struct {
	repo restaurantRepository
}

// NewService builds a restaurant service with the provided repository.
func NewService(repo restaurantRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("restaurant repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Register(ctx context.Context, ownerID uuid.UUID, input RegisterInput) (*RestaurantDTO, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	restaurant, err := s.repo.Create(ctx, CreateRestaurantDTO{
		Name:           strings.TrimSpace(input.Name),
		OwnerID:        ownerID,
		Email:          email,
		Phone:          input.Phone,
		Address:        strings.TrimSpace(input.Address),
		CuisineType:    input.CuisineType,
		OperatingHours: input.OperatingHours,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create restaurant")
	}
	return FromModel(restaurant), nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*RestaurantDTO, error) {
	restaurant, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(restaurant), nil
}

func (s *service) List(ctx context.Context) ([]RestaurantDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list restaurants")
	}
	return FromModels(rows), nil
}

func (s *service) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]RestaurantDTO, error) {
	rows, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list owner restaurants")
	}
	return FromModels(rows), nil
}

func (s *service) Update(ctx context.Context, actor Actor, id uuid.UUID, input UpdateInput) (*RestaurantDTO, error) {
	restaurant, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, restaurant); err != nil {
		return nil, err
	}

	if input.Name != nil {
		restaurant.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		restaurant.Email = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if input.Phone != nil {
		restaurant.Phone = input.Phone
	}
	if input.Address != nil {
		restaurant.Address = strings.TrimSpace(*input.Address)
	}
	if input.CuisineType != nil {
		restaurant.CuisineType = input.CuisineType
	}
	if input.OperatingHours != nil {
		restaurant.OperatingHours = input.OperatingHours
	}

	if err := s.repo.Update(ctx, restaurant); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update restaurant")
	}
	return FromModel(restaurant), nil
}

func (s *service) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	restaurant, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(actor, restaurant); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete restaurant")
	}
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Restaurant, error) {
	restaurant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "restaurant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load restaurant")
	}
	return restaurant, nil
}

func authorize(actor Actor, restaurant *models.Restaurant) error {
	if actor.Role == enums.RoleAdmin || restaurant.OwnerID == actor.UserID {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "not the restaurant owner")
}

package stores

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/hysabee/hysabee-backend/pkg/db/models"
	"github.com/hysabee/hysabee-backend/pkg/enums"
	pkgerrors "github.com/hysabee/hysabee-backend/pkg/errors"
)

type storeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Store, error)
	Update(ctx context.Context, store *models.Store) error
}

// Service exposes store operations.
type Service interface {
	GetByID(ctx context.Context, id uuid.UUID) (*StoreDTO, error)
	GetByOwner(ctx context.Context, ownerID uuid.UUID) (*StoreDTO, error)
	Update(ctx context.Context, userID, storeID uuid.UUID, input UpdateStoreInput) (*StoreDTO, error)
}

type service struct {
	repo storeRepository
}

// NewService builds a store service with the provided repository.
func NewService(repo storeRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	return &service{repo: repo}, nil
}

// UpdateStoreInput captures the allowed store fields for mutation.
type UpdateStoreInput struct {
	Name      *string
	Currency  *enums.Currency
	DebtLimit *decimal.Decimal
	Address   *string
	Phone     *string
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*StoreDTO, error) {
	store, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	return FromModel(store), nil
}

func (s *service) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*StoreDTO, error) {
	store, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	return FromModel(store), nil
}

func (s *service) Update(ctx context.Context, userID, storeID uuid.UUID, input UpdateStoreInput) (*StoreDTO, error) {
	store, err := s.repo.FindByID(ctx, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}

	if store.OwnerUserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "store belongs to another owner")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "store name cannot be empty")
		}
		store.Name = name
	}
	if input.Currency != nil {
		if !input.Currency.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid currency")
		}
		store.Currency = *input.Currency
	}
	if input.DebtLimit != nil {
		if input.DebtLimit.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "debt limit cannot be negative")
		}
		limit := *input.DebtLimit
		store.DebtLimit = &limit
	}
	if input.Address != nil {
		store.Address = cloneStringPtr(input.Address)
	}
	if input.Phone != nil {
		store.Phone = cloneStringPtr(input.Phone)
	}

	if err := s.repo.Update(ctx, store); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update store")
	}
	return FromModel(store), nil
}

func cloneStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	cpy := *value
	return &cpy
}

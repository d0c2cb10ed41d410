package branches

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/hysabee/hysabee-backend/pkg/db/models"
	pkgerrors "github.com/hysabee/hysabee-backend/pkg/errors"
)

type branchRepository interface {
	Create(ctx context.Context, dto CreateBranchDTO) (*models.Branch, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Branch, error)
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.Branch, error)
	Update(ctx context.Context, branch *models.Branch) error
	PromoteMainWithTx(tx *gorm.DB, storeID, branchID uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes branch operations scoped to a store.
type Service interface {
	Create(ctx context.Context, storeID uuid.UUID, input CreateBranchInput) (*BranchDTO, error)
	List(ctx context.Context, storeID uuid.UUID) ([]BranchDTO, error)
	Get(ctx context.Context, storeID, branchID uuid.UUID) (*BranchDTO, error)
	Update(ctx context.Context, storeID, branchID uuid.UUID, input UpdateBranchInput) (*BranchDTO, error)
	SetMain(ctx context.Context, storeID, branchID uuid.UUID) (*BranchDTO, error)
}

type service struct {
	repo branchRepository
	tx   txRunner
}

// NewService builds a branch service with the provided dependencies.
func NewService(repo branchRepository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("branch repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// CreateBranchInput captures creation fields from the API.
type CreateBranchInput struct {
	Name      string
	Location  *string
	Phone     *string
	DebtLimit *decimal.Decimal
}

// UpdateBranchInput captures the allowed branch fields for mutation.
type UpdateBranchInput struct {
	Name      *string
	Location  *string
	Phone     *string
	DebtLimit *decimal.Decimal
}

func (s *service) Create(ctx context.Context, storeID uuid.UUID, input CreateBranchInput) (*BranchDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "branch name is required")
	}

	if input.DebtLimit != nil && input.DebtLimit.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "debt limit cannot be negative")
	}

	branch, err := s.repo.Create(ctx, CreateBranchDTO{
		StoreID:   storeID,
		Name:      name,
		Location:  input.Location,
		Phone:     input.Phone,
		DebtLimit: input.DebtLimit,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create branch")
	}
	return FromModel(branch), nil
}

func (s *service) List(ctx context.Context, storeID uuid.UUID) ([]BranchDTO, error) {
	branches, err := s.repo.ListByStore(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list branches")
	}
	return FromModels(branches), nil
}

func (s *service) Get(ctx context.Context, storeID, branchID uuid.UUID) (*BranchDTO, error) {
	branch, err := s.loadScoped(ctx, storeID, branchID)
	if err != nil {
		return nil, err
	}
	return FromModel(branch), nil
}

func (s *service) Update(ctx context.Context, storeID, branchID uuid.UUID, input UpdateBranchInput) (*BranchDTO, error) {
	branch, err := s.loadScoped(ctx, storeID, branchID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "branch name cannot be empty")
		}
		branch.Name = name
	}
	if input.Location != nil {
		cpy := *input.Location
		branch.Location = &cpy
	}
	if input.Phone != nil {
		cpy := *input.Phone
		branch.Phone = &cpy
	}
	if input.DebtLimit != nil {
		if input.DebtLimit.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "debt limit cannot be negative")
		}
		limit := *input.DebtLimit
		branch.DebtLimit = &limit
	}

	if err := s.repo.Update(ctx, branch); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update branch")
	}
	return FromModel(branch), nil
}

// SetMain promotes the branch to the store's main branch, demoting the
// current main in the same transaction.
func (s *service) SetMain(ctx context.Context, storeID, branchID uuid.UUID) (*BranchDTO, error) {
	branch, err := s.loadScoped(ctx, storeID, branchID)
	if err != nil {
		return nil, err
	}
	if branch.IsMain {
		return FromModel(branch), nil
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.PromoteMainWithTx(tx, storeID, branchID)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "promote main branch")
	}

	branch.IsMain = true
	return FromModel(branch), nil
}

func (s *service) loadScoped(ctx context.Context, storeID, branchID uuid.UUID) (*models.Branch, error) {
	branch, err := s.repo.FindByID(ctx, branchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "branch not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load branch")
	}
	if branch.StoreID != storeID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "branch not found")
	}
	return branch, nil
}

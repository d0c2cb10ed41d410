package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/hysabee/hysabee-backend/internal/balances"
	"github.com/hysabee/hysabee-backend/pkg/db/models"
	"github.com/hysabee/hysabee-backend/pkg/enums"
	pkgerrors "github.com/hysabee/hysabee-backend/pkg/errors"
	pkgpagination "github.com/hysabee/hysabee-backend/pkg/pagination"
)

type customerRepository interface {
	Create(ctx context.Context, dto CreateCustomerDTO) (*models.Customer, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	List(ctx context.Context, opts listQuery) ([]models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) error
}

type branchReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Branch, error)
}

type ledgerReader interface {
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Transaction, error)
}

// Service exposes customer operations scoped to a store.
type Service interface {
	Create(ctx context.Context, input CreateCustomerInput) (*CustomerDTO, error)
	Get(ctx context.Context, storeID, customerID uuid.UUID) (*CustomerWithBalanceDTO, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Update(ctx context.Context, storeID, customerID uuid.UUID, input UpdateCustomerInput) (*CustomerDTO, error)
}

type service struct {
	repo     customerRepository
	branches branchReader
	ledger   ledgerReader
}

// NewService builds a customer service with the provided dependencies.
func NewService(repo customerRepository, branches branchReader, ledger ledgerReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	if branches == nil {
		return nil, fmt.Errorf("branch reader required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("ledger reader required")
	}
	return &service{repo: repo, branches: branches, ledger: ledger}, nil
}

// CreateCustomerInput captures creation fields from the API.
type CreateCustomerInput struct {
	StoreID     uuid.UUID
	BranchID    uuid.UUID
	ActorUserID uuid.UUID
	Name        string
	Phone       *string
	Email       *string
	Address     *string
	IDNumber    *string
	Note        *string
	CreditLimit *decimal.Decimal
}

// UpdateCustomerInput captures the allowed customer fields for mutation.
// Ledger history is untouchable; only profile fields are editable.
type UpdateCustomerInput struct {
	Name        *string
	Phone       *string
	Email       *string
	Address     *string
	IDNumber    *string
	Note        *string
	CreditLimit *decimal.Decimal
	Status      *enums.CustomerStatus
}

// ListParams holds filters and pagination inputs for customer listings.
type ListParams struct {
	StoreID  uuid.UUID
	BranchID *uuid.UUID
	Search   string
	Status   string
	Limit    int
	Cursor   string
}

// ListResult carries one page of customers with balances plus the next cursor.
type ListResult struct {
	Items  []CustomerWithBalanceDTO `json:"items"`
	Cursor string                   `json:"cursor,omitempty"`
}

func (s *service) Create(ctx context.Context, input CreateCustomerInput) (*CustomerDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor user is required")
	}
	if input.CreditLimit != nil && input.CreditLimit.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "credit limit cannot be negative")
	}

	branch, err := s.branches.FindByID(ctx, input.BranchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "branch not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load branch")
	}
	if branch.StoreID != input.StoreID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "branch not found")
	}

	customer, err := s.repo.Create(ctx, CreateCustomerDTO{
		StoreID:     input.StoreID,
		BranchID:    branch.ID,
		Name:        name,
		Phone:       input.Phone,
		Email:       input.Email,
		Address:     input.Address,
		IDNumber:    input.IDNumber,
		Note:        input.Note,
		CreditLimit: input.CreditLimit,
		CreatedBy:   input.ActorUserID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create customer")
	}
	return FromModel(customer), nil
}

func (s *service) Get(ctx context.Context, storeID, customerID uuid.UUID) (*CustomerWithBalanceDTO, error) {
	customer, err := s.loadScoped(ctx, storeID, customerID)
	if err != nil {
		return nil, err
	}

	txs, err := s.ledger.ListByCustomer(ctx, customer.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer ledger")
	}
	return WithBalance(customer, balances.Balance(txs)), nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.StoreID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}

	limit := pkgpagination.NormalizeLimit(params.Limit)
	query := listQuery{
		storeID:  params.StoreID,
		branchID: params.BranchID,
		search:   params.Search,
		status:   params.Status,
		limit:    pkgpagination.LimitWithBuffer(params.Limit),
	}
	if params.Cursor != "" {
		cursor, err := pkgpagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.cursor = cursor
	}

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customers")
	}

	nextCursor := ""
	if len(rows) > limit {
		nextCursor = pkgpagination.EncodeCursor(pkgpagination.Cursor{
			CreatedAt: rows[limit].CreatedAt,
			ID:        rows[limit].ID,
		})
		rows = rows[:limit]
	}

	items := make([]CustomerWithBalanceDTO, 0, len(rows))
	for i := range rows {
		txs, err := s.ledger.ListByCustomer(ctx, rows[i].ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer ledger")
		}
		items = append(items, *WithBalance(&rows[i], balances.Balance(txs)))
	}

	return &ListResult{
		Items:  items,
		Cursor: nextCursor,
	}, nil
}

func (s *service) Update(ctx context.Context, storeID, customerID uuid.UUID, input UpdateCustomerInput) (*CustomerDTO, error) {
	customer, err := s.loadScoped(ctx, storeID, customerID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name cannot be empty")
		}
		customer.Name = name
	}
	if input.Phone != nil {
		customer.Phone = clonePtr(input.Phone)
	}
	if input.Email != nil {
		customer.Email = clonePtr(input.Email)
	}
	if input.Address != nil {
		customer.Address = clonePtr(input.Address)
	}
	if input.IDNumber != nil {
		customer.IDNumber = clonePtr(input.IDNumber)
	}
	if input.Note != nil {
		customer.Note = clonePtr(input.Note)
	}
	if input.CreditLimit != nil {
		if input.CreditLimit.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "credit limit cannot be negative")
		}
		limit := *input.CreditLimit
		customer.CreditLimit = &limit
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid customer status")
		}
		customer.Status = *input.Status
	}

	if err := s.repo.Update(ctx, customer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update customer")
	}
	return FromModel(customer), nil
}

func (s *service) loadScoped(ctx context.Context, storeID, customerID uuid.UUID) (*models.Customer, error) {
	customer, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	if customer.StoreID != storeID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}
	return customer, nil
}

func clonePtr(value *string) *string {
	if value == nil {
		return nil
	}
	cpy := *value
	return &cpy
}

package transactions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/hysabee/hysabee-backend/pkg/db/models"
	"github.com/hysabee/hysabee-backend/pkg/enums"
	pkgerrors "github.com/hysabee/hysabee-backend/pkg/errors"
)

type transactionRepository interface {
	Create(ctx context.Context, transaction *models.Transaction) error
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Transaction, error)
}

type customerReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
}

// Service exposes ledger operations scoped to a store.
type Service interface {
	Record(ctx context.Context, input RecordTransactionInput) (*TransactionDTO, error)
	ListForCustomer(ctx context.Context, storeID, customerID uuid.UUID) ([]TransactionDTO, error)
}

type service struct {
	repo      transactionRepository
	customers customerReader
}

// NewService builds a transaction service with the provided dependencies.
func NewService(repo transactionRepository, customers customerReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("transaction repository required")
	}
	if customers == nil {
		return nil, fmt.Errorf("customer reader required")
	}
	return &service{repo: repo, customers: customers}, nil
}

// RecordTransactionInput captures the immutable data a ledger entry requires.
type RecordTransactionInput struct {
	StoreID     uuid.UUID
	BranchID    uuid.UUID
	CustomerID  uuid.UUID
	ActorUserID uuid.UUID
	Type        enums.TransactionType
	Amount      decimal.Decimal
	Currency    enums.Currency
	Note        *string
	PaybackDate *time.Time
	OccurredAt  *time.Time
}

func (s *service) Record(ctx context.Context, input RecordTransactionInput) (*TransactionDTO, error) {
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid transaction type")
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor user is required")
	}

	customer, err := s.customers.FindByID(ctx, input.CustomerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	if customer.StoreID != input.StoreID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}
	if customer.Status != enums.CustomerStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "customer is inactive")
	}

	currency := input.Currency
	if currency == "" {
		currency = enums.CurrencyUSD
	}
	if !currency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid currency")
	}

	occurredAt := time.Now().UTC()
	if input.OccurredAt != nil {
		occurredAt = input.OccurredAt.UTC()
	}

	transaction := &models.Transaction{
		StoreID:     input.StoreID,
		BranchID:    customer.BranchID,
		CustomerID:  customer.ID,
		Type:        input.Type,
		Amount:      input.Amount,
		Currency:    currency,
		Note:        input.Note,
		PaybackDate: input.PaybackDate,
		OccurredAt:  occurredAt,
		CreatedBy:   input.ActorUserID,
	}

	if err := s.repo.Create(ctx, transaction); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record transaction")
	}
	return FromModel(transaction), nil
}

func (s *service) ListForCustomer(ctx context.Context, storeID, customerID uuid.UUID) ([]TransactionDTO, error) {
	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	if customer.StoreID != storeID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}

	txs, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list transactions")
	}

	// The repo returns the ledger oldest first for balance math; present
	// newest first.
	dtos := FromModels(txs)
	for i, j := 0, len(dtos)-1; i < j; i, j = i+1, j-1 {
		dtos[i], dtos[j] = dtos[j], dtos[i]
	}
	return dtos, nil
}

package dashboard

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hysabee/hysabee-backend/internal/balances"
	"github.com/hysabee/hysabee-backend/pkg/db/models"
	pkgerrors "github.com/hysabee/hysabee-backend/pkg/errors"
)

type ledgerReader interface {
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.Transaction, error)
	ListByBranch(ctx context.Context, branchID uuid.UUID) ([]models.Transaction, error)
	CountByStore(ctx context.Context, storeID uuid.UUID) (int64, error)
}

type customerCounter interface {
	CountByStore(ctx context.Context, storeID uuid.UUID) (int64, error)
}

// Service derives store-level dashboard figures from the ledger.
type Service interface {
	Stats(ctx context.Context, storeID uuid.UUID, branchID *uuid.UUID) (*StatsDTO, error)
}

// StatsDTO carries the dashboard rollup for a store or a single branch.
type StatsDTO struct {
	TotalDebt        decimal.Decimal `json:"total_debt"`
	TotalCredit      decimal.Decimal `json:"total_credit"`
	NetBalance       decimal.Decimal `json:"net_balance"`
	CustomerCount    int64           `json:"customer_count"`
	TransactionCount int64           `json:"transaction_count"`
}

type service struct {
	ledger    ledgerReader
	customers customerCounter
}

// NewService builds a dashboard service with the provided readers.
func NewService(ledger ledgerReader, customers customerCounter) (Service, error) {
	if ledger == nil {
		return nil, fmt.Errorf("ledger reader required")
	}
	if customers == nil {
		return nil, fmt.Errorf("customer counter required")
	}
	return &service{ledger: ledger, customers: customers}, nil
}

// Stats folds the ledger into debt/credit totals. Passing a branch narrows
// the rollup to that branch's entries; counts stay store-wide.
func (s *service) Stats(ctx context.Context, storeID uuid.UUID, branchID *uuid.UUID) (*StatsDTO, error) {
	var (
		txs []models.Transaction
		err error
	)
	if branchID != nil {
		txs, err = s.ledger.ListByBranch(ctx, *branchID)
	} else {
		txs, err = s.ledger.ListByStore(ctx, storeID)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ledger")
	}

	byCustomer := balances.GroupByCustomer(txs)
	perCustomer := make([]decimal.Decimal, 0, len(byCustomer))
	for _, balance := range byCustomer {
		perCustomer = append(perCustomer, balance)
	}
	rollup := balances.RollupBalances(perCustomer)

	customerCount, err := s.customers.CountByStore(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count customers")
	}
	txCount, err := s.ledger.CountByStore(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count transactions")
	}

	return &StatsDTO{
		TotalDebt:        rollup.TotalDebt,
		TotalCredit:      rollup.TotalCredit,
		NetBalance:       rollup.NetBalance,
		CustomerCount:    customerCount,
		TransactionCount: txCount,
	}, nil
}

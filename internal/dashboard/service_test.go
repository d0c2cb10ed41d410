package dashboard

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hysabee/hysabee-backend/pkg/db/models"
	"github.com/hysabee/hysabee-backend/pkg/enums"
)

type stubLedger struct {
	storeRows  []models.Transaction
	branchRows []models.Transaction
	count      int64
}

func (s *stubLedger) ListByStore(_ context.Context, _ uuid.UUID) ([]models.Transaction, error) {
	return s.storeRows, nil
}

func (s *stubLedger) ListByBranch(_ context.Context, _ uuid.UUID) ([]models.Transaction, error) {
	return s.branchRows, nil
}

func (s *stubLedger) CountByStore(_ context.Context, _ uuid.UUID) (int64, error) {
	return s.count, nil
}

type stubCustomerCounter struct {
	count int64
}

func (s *stubCustomerCounter) CountByStore(_ context.Context, _ uuid.UUID) (int64, error) {
	return s.count, nil
}

func entry(customerID uuid.UUID, txType enums.TransactionType, amount string) models.Transaction {
	return models.Transaction{
		CustomerID: customerID,
		Type:       txType,
		Amount:     decimal.RequireFromString(amount),
	}
}

func TestStatsRollsUpStoreLedger(t *testing.T) {
	debtor := uuid.New()
	creditor := uuid.New()
	ledger := &stubLedger{
		storeRows: []models.Transaction{
			entry(debtor, enums.TransactionTypeCredit, "100"),
			entry(debtor, enums.TransactionTypePayment, "25.50"),
			entry(creditor, enums.TransactionTypeCredit, "10"),
			entry(creditor, enums.TransactionTypePayment, "40"),
		},
		count: 4,
	}
	svc, err := NewService(ledger, &stubCustomerCounter{count: 2})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	stats, err := svc.Stats(context.Background(), uuid.New(), nil)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !stats.TotalDebt.Equal(decimal.RequireFromString("74.5")) {
		t.Fatalf("expected total debt 74.5 got %s", stats.TotalDebt)
	}
	if !stats.TotalCredit.Equal(decimal.RequireFromString("30")) {
		t.Fatalf("expected total credit 30 got %s", stats.TotalCredit)
	}
	if !stats.NetBalance.Equal(decimal.RequireFromString("44.5")) {
		t.Fatalf("expected net 44.5 got %s", stats.NetBalance)
	}
	if stats.CustomerCount != 2 || stats.TransactionCount != 4 {
		t.Fatalf("unexpected counts %d/%d", stats.CustomerCount, stats.TransactionCount)
	}
}

func TestStatsScopesToBranch(t *testing.T) {
	customer := uuid.New()
	ledger := &stubLedger{
		storeRows: []models.Transaction{
			entry(customer, enums.TransactionTypeCredit, "1000"),
		},
		branchRows: []models.Transaction{
			entry(customer, enums.TransactionTypeCredit, "50"),
		},
	}
	svc, err := NewService(ledger, &stubCustomerCounter{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	branchID := uuid.New()
	stats, err := svc.Stats(context.Background(), uuid.New(), &branchID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !stats.TotalDebt.Equal(decimal.RequireFromString("50")) {
		t.Fatalf("expected branch-scoped debt 50 got %s", stats.TotalDebt)
	}
}

func TestStatsEmptyLedgerIsZero(t *testing.T) {
	svc, err := NewService(&stubLedger{}, &stubCustomerCounter{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	stats, err := svc.Stats(context.Background(), uuid.New(), nil)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !stats.TotalDebt.IsZero() || !stats.TotalCredit.IsZero() || !stats.NetBalance.IsZero() {
		t.Fatalf("expected zero rollup, got %+v", stats)
	}
}

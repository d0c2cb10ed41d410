package balances

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hysabee/hysabee-backend/pkg/db/models"
	"github.com/hysabee/hysabee-backend/pkg/enums"
)

func TestBalanceEmptyLedgerIsZero(t *testing.T) {
	if got := Balance(nil); !got.IsZero() {
		t.Fatalf("expected zero balance, got %s", got)
	}
	if got := Balance([]models.Transaction{}); !got.IsZero() {
		t.Fatalf("expected zero balance, got %s", got)
	}
}

func TestBalanceCreditsMinusPayments(t *testing.T) {
	customerID := uuid.New()
	txs := []models.Transaction{
		tx(customerID, enums.TransactionTypeCredit, "150.00"),
		tx(customerID, enums.TransactionTypeCredit, "49.99"),
		tx(customerID, enums.TransactionTypePayment, "75.50"),
	}

	got := Balance(txs)
	want := decimal.RequireFromString("124.49")
	if !got.Equal(want) {
		t.Fatalf("expected balance %s got %s", want, got)
	}
}

func TestBalanceGoesNegativeWhenOverpaid(t *testing.T) {
	customerID := uuid.New()
	txs := []models.Transaction{
		tx(customerID, enums.TransactionTypeCredit, "20.00"),
		tx(customerID, enums.TransactionTypePayment, "50.00"),
	}

	got := Balance(txs)
	want := decimal.RequireFromString("-30.00")
	if !got.Equal(want) {
		t.Fatalf("expected balance %s got %s", want, got)
	}
}

func TestRollupSplitsDebtorsAndCreditors(t *testing.T) {
	perCustomer := []decimal.Decimal{
		decimal.RequireFromString("100.00"),
		decimal.RequireFromString("-30.00"),
		decimal.RequireFromString("0.00"),
		decimal.RequireFromString("45.25"),
	}

	rollup := RollupBalances(perCustomer)

	if want := decimal.RequireFromString("145.25"); !rollup.TotalDebt.Equal(want) {
		t.Fatalf("expected total debt %s got %s", want, rollup.TotalDebt)
	}
	if want := decimal.RequireFromString("30.00"); !rollup.TotalCredit.Equal(want) {
		t.Fatalf("expected total credit %s got %s", want, rollup.TotalCredit)
	}
	if want := decimal.RequireFromString("115.25"); !rollup.NetBalance.Equal(want) {
		t.Fatalf("expected net balance %s got %s", want, rollup.NetBalance)
	}
}

func TestRollupEmptyIsZero(t *testing.T) {
	rollup := RollupBalances(nil)
	if !rollup.TotalDebt.IsZero() || !rollup.TotalCredit.IsZero() || !rollup.NetBalance.IsZero() {
		t.Fatalf("expected zero rollup, got %+v", rollup)
	}
}

func TestGroupByCustomerPartitionsLedger(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()
	txs := []models.Transaction{
		tx(alice, enums.TransactionTypeCredit, "10.00"),
		tx(bob, enums.TransactionTypeCredit, "5.00"),
		tx(alice, enums.TransactionTypePayment, "4.00"),
		tx(bob, enums.TransactionTypePayment, "8.00"),
	}

	byCustomer := GroupByCustomer(txs)
	if len(byCustomer) != 2 {
		t.Fatalf("expected 2 customers, got %d", len(byCustomer))
	}
	if want := decimal.RequireFromString("6.00"); !byCustomer[alice.String()].Equal(want) {
		t.Fatalf("expected alice balance %s got %s", want, byCustomer[alice.String()])
	}
	if want := decimal.RequireFromString("-3.00"); !byCustomer[bob.String()].Equal(want) {
		t.Fatalf("expected bob balance %s got %s", want, byCustomer[bob.String()])
	}
}

func tx(customerID uuid.UUID, txType enums.TransactionType, amount string) models.Transaction {
	return models.Transaction{
		ID:         uuid.New(),
		CustomerID: customerID,
		Type:       txType,
		Amount:     decimal.RequireFromString(amount),
	}
}

// Package balances derives customer balances from the transaction ledger.
// Nothing here is persisted; every figure is recomputed from the rows it is
// handed, so the ledger stays the single source of truth.
package balances

import (
	"github.com/shopspring/decimal"

	"github.com/hysabee/hysabee-backend/pkg/db/models"
	"github.com/hysabee/hysabee-backend/pkg/enums"
)

// Balance reduces a customer's transactions to what they currently owe.
// Credits raise the balance, payments lower it; an empty ledger is zero.
// Positive means the customer owes the store, negative means the store owes
// the customer.
func Balance(transactions []models.Transaction) decimal.Decimal {
	total := decimal.Zero
	for i := range transactions {
		switch transactions[i].Type {
		case enums.TransactionTypeCredit:
			total = total.Add(transactions[i].Amount)
		case enums.TransactionTypePayment:
			total = total.Sub(transactions[i].Amount)
		}
	}
	return total
}

// Rollup aggregates per-customer balances for dashboard stats.
type Rollup struct {
	TotalDebt   decimal.Decimal `json:"total_debt"`
	TotalCredit decimal.Decimal `json:"total_credit"`
	NetBalance  decimal.Decimal `json:"net_balance"`
}

// RollupBalances folds per-customer balances into store-level totals:
// debtors contribute to TotalDebt, customers in surplus to TotalCredit,
// and NetBalance is their difference.
func RollupBalances(perCustomer []decimal.Decimal) Rollup {
	rollup := Rollup{
		TotalDebt:   decimal.Zero,
		TotalCredit: decimal.Zero,
		NetBalance:  decimal.Zero,
	}
	for _, balance := range perCustomer {
		switch {
		case balance.IsPositive():
			rollup.TotalDebt = rollup.TotalDebt.Add(balance)
		case balance.IsNegative():
			rollup.TotalCredit = rollup.TotalCredit.Add(balance.Neg())
		}
	}
	rollup.NetBalance = rollup.TotalDebt.Sub(rollup.TotalCredit)
	return rollup
}

// GroupByCustomer partitions a mixed transaction set by customer and
// computes each customer's balance in one pass.
func GroupByCustomer(transactions []models.Transaction) map[string]decimal.Decimal {
	byCustomer := make(map[string]decimal.Decimal)
	for i := range transactions {
		key := transactions[i].CustomerID.String()
		current, ok := byCustomer[key]
		if !ok {
			current = decimal.Zero
		}
		switch transactions[i].Type {
		case enums.TransactionTypeCredit:
			current = current.Add(transactions[i].Amount)
		case enums.TransactionTypePayment:
			current = current.Sub(transactions[i].Amount)
		}
		byCustomer[key] = current
	}
	return byCustomer
}

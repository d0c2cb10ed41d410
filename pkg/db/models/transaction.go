package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hysabee/hysabee-backend/pkg/enums"
)

// Transaction is an immutable ledger entry. Credits raise what the customer
// owes, payments lower it. Rows are never updated or deleted.
type Transaction struct {
	ID          uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID     uuid.UUID             `gorm:"column:store_id;type:uuid;not null;index"`
	BranchID    uuid.UUID             `gorm:"column:branch_id;type:uuid;not null;index"`
	CustomerID  uuid.UUID             `gorm:"column:customer_id;type:uuid;not null;index"`
	Type        enums.TransactionType `gorm:"column:type;type:text;not null"`
	Amount      decimal.Decimal       `gorm:"column:amount;type:numeric(14,2);not null"`
	Currency    enums.Currency        `gorm:"column:currency;type:text;not null;default:'USD'"`
	Note        *string               `gorm:"column:note"`
	PaybackDate *time.Time            `gorm:"column:payback_date"`
	OccurredAt  time.Time             `gorm:"column:occurred_at;not null"`
	CreatedBy   uuid.UUID             `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
}

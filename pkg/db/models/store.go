package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hysabee/hysabee-backend/pkg/enums"
)

// Store is the tenant boundary. All customers, branches, and transactions
// hang off a store.
type Store struct {
	ID          uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerUserID uuid.UUID        `gorm:"column:owner_user_id;type:uuid;not null;uniqueIndex"`
	Name        string           `gorm:"column:name;not null"`
	StoreCode   string           `gorm:"column:store_code;not null"`
	Currency    enums.Currency   `gorm:"column:currency;type:text;not null;default:'USD'"`
	DebtLimit   *decimal.Decimal `gorm:"column:debt_limit;type:numeric(14,2)"`
	Address     *string          `gorm:"column:address"`
	Phone       *string          `gorm:"column:phone"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

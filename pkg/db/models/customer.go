package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hysabee/hysabee-backend/pkg/enums"
)

// Customer is a person a store extends credit to. Balances are never stored
// on the row; they are derived from the transaction ledger. StoreID is
// denormalized from the branch so tenancy scoping never needs a join.
type Customer struct {
	ID          uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID     uuid.UUID            `gorm:"column:store_id;type:uuid;not null;index"`
	BranchID    uuid.UUID            `gorm:"column:branch_id;type:uuid;not null;index"`
	Name        string               `gorm:"column:name;not null"`
	Phone       *string              `gorm:"column:phone"`
	Email       *string              `gorm:"column:email"`
	Address     *string              `gorm:"column:address"`
	IDNumber    *string              `gorm:"column:id_number"`
	Note        *string              `gorm:"column:note"`
	CreditLimit *decimal.Decimal     `gorm:"column:credit_limit;type:numeric(14,2)"`
	Status      enums.CustomerStatus `gorm:"column:status;type:text;not null;default:'active'"`
	CreatedBy   uuid.UUID            `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

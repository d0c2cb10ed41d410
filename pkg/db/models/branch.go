package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Branch is a physical location of a store. Exactly one branch per store is
// the main branch; the invariant is enforced by a partial unique index and
// transactional promotion.
type Branch struct {
	ID        uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID   uuid.UUID        `gorm:"column:store_id;type:uuid;not null;index"`
	Name      string           `gorm:"column:name;not null"`
	Location  *string          `gorm:"column:location"`
	Phone     *string          `gorm:"column:phone"`
	IsMain    bool             `gorm:"column:is_main;not null;default:false"`
	DebtLimit *decimal.Decimal `gorm:"column:debt_limit;type:numeric(14,2)"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

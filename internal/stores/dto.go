package stores

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hysabee/hysabee-backend/pkg/db/models"
	"github.com/hysabee/hysabee-backend/pkg/enums"
)

// StoreDTO exposes safe tenant data in API responses.
type StoreDTO struct {
	ID        uuid.UUID        `json:"id"`
	OwnerID   uuid.UUID        `json:"owner_user_id"`
	Name      string           `json:"name"`
	StoreCode string           `json:"store_code"`
	Currency  enums.Currency   `json:"currency"`
	DebtLimit *decimal.Decimal `json:"debt_limit,omitempty"`
	Address   *string          `json:"address,omitempty"`
	Phone     *string          `json:"phone,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// CreateStoreDTO holds creation-time data for a new store.
type CreateStoreDTO struct {
	OwnerID   uuid.UUID
	Name      string
	StoreCode string
	Currency  *enums.Currency
	DebtLimit *decimal.Decimal
	Address   *string
	Phone     *string
}

// FromModel maps the persisted store into a DTO.
func FromModel(m *models.Store) *StoreDTO {
	if m == nil {
		return nil
	}
	return &StoreDTO{
		ID:        m.ID,
		OwnerID:   m.OwnerUserID,
		Name:      m.Name,
		StoreCode: m.StoreCode,
		Currency:  m.Currency,
		DebtLimit: m.DebtLimit,
		Address:   m.Address,
		Phone:     m.Phone,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// ToModel prepares the GORM model from creation DTO, supplying defaults.
func (c CreateStoreDTO) ToModel() *models.Store {
	model := &models.Store{
		OwnerUserID: c.OwnerID,
		Name:        c.Name,
		StoreCode:   c.StoreCode,
		Currency:    enums.CurrencyUSD,
		DebtLimit:   c.DebtLimit,
		Address:     c.Address,
		Phone:       c.Phone,
	}
	if c.Currency != nil {
		model.Currency = *c.Currency
	}
	return model
}

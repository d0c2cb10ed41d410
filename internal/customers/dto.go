package customers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hysabee/hysabee-backend/pkg/db/models"
	"github.com/hysabee/hysabee-backend/pkg/enums"
)

// CustomerDTO exposes customer profile data in API responses.
type CustomerDTO struct {
	ID          uuid.UUID            `json:"id"`
	StoreID     uuid.UUID            `json:"store_id"`
	BranchID    uuid.UUID            `json:"branch_id"`
	Name        string               `json:"name"`
	Phone       *string              `json:"phone,omitempty"`
	Email       *string              `json:"email,omitempty"`
	Address     *string              `json:"address,omitempty"`
	IDNumber    *string              `json:"id_number,omitempty"`
	Note        *string              `json:"note,omitempty"`
	CreditLimit *decimal.Decimal     `json:"credit_limit,omitempty"`
	Status      enums.CustomerStatus `json:"status"`
	CreatedBy   uuid.UUID            `json:"created_by"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// CustomerWithBalanceDTO adds the derived ledger balance. Never persisted;
// recomputed from transactions on every read.
type CustomerWithBalanceDTO struct {
	CustomerDTO
	Balance   decimal.Decimal `json:"balance"`
	OverLimit bool            `json:"over_limit"`
}

// CreateCustomerDTO holds creation-time data for a new customer.
type CreateCustomerDTO struct {
	StoreID     uuid.UUID
	BranchID    uuid.UUID
	Name        string
	Phone       *string
	Email       *string
	Address     *string
	IDNumber    *string
	Note        *string
	CreditLimit *decimal.Decimal
	CreatedBy   uuid.UUID
}

// FromModel maps the persisted customer into a DTO.
func FromModel(m *models.Customer) *CustomerDTO {
	if m == nil {
		return nil
	}
	return &CustomerDTO{
		ID:          m.ID,
		StoreID:     m.StoreID,
		BranchID:    m.BranchID,
		Name:        m.Name,
		Phone:       m.Phone,
		Email:       m.Email,
		Address:     m.Address,
		IDNumber:    m.IDNumber,
		Note:        m.Note,
		CreditLimit: m.CreditLimit,
		Status:      m.Status,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ToModel prepares the GORM model from creation DTO, supplying defaults.
func (c CreateCustomerDTO) ToModel() *models.Customer {
	return &models.Customer{
		StoreID:     c.StoreID,
		BranchID:    c.BranchID,
		Name:        c.Name,
		Phone:       c.Phone,
		Email:       c.Email,
		Address:     c.Address,
		IDNumber:    c.IDNumber,
		Note:        c.Note,
		CreditLimit: c.CreditLimit,
		Status:      enums.CustomerStatusActive,
		CreatedBy:   c.CreatedBy,
	}
}

// WithBalance decorates a customer with its derived balance and the
// over-limit flag when a positive credit limit is configured.
func WithBalance(m *models.Customer, balance decimal.Decimal) *CustomerWithBalanceDTO {
	dto := FromModel(m)
	if dto == nil {
		return nil
	}
	overLimit := false
	if m.CreditLimit != nil && m.CreditLimit.IsPositive() && balance.GreaterThan(*m.CreditLimit) {
		overLimit = true
	}
	return &CustomerWithBalanceDTO{
		CustomerDTO: *dto,
		Balance:     balance,
		OverLimit:   overLimit,
	}
}

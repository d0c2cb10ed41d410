package branches

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hysabee/hysabee-backend/pkg/db/models"
)

// BranchDTO exposes branch data in API responses.
type BranchDTO struct {
	ID        uuid.UUID        `json:"id"`
	StoreID   uuid.UUID        `json:"store_id"`
	Name      string           `json:"name"`
	Location  *string          `json:"location,omitempty"`
	Phone     *string          `json:"phone,omitempty"`
	IsMain    bool             `json:"is_main"`
	DebtLimit *decimal.Decimal `json:"debt_limit,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// CreateBranchDTO holds creation-time data for a new branch.
type CreateBranchDTO struct {
	StoreID   uuid.UUID
	Name      string
	Location  *string
	Phone     *string
	IsMain    bool
	DebtLimit *decimal.Decimal
}

// FromModel maps the persisted branch into a DTO.
func FromModel(m *models.Branch) *BranchDTO {
	if m == nil {
		return nil
	}
	return &BranchDTO{
		ID:        m.ID,
		StoreID:   m.StoreID,
		Name:      m.Name,
		Location:  m.Location,
		Phone:     m.Phone,
		IsMain:    m.IsMain,
		DebtLimit: m.DebtLimit,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromModels maps a slice of branches into DTOs.
func FromModels(ms []models.Branch) []BranchDTO {
	dtos := make([]BranchDTO, 0, len(ms))
	for i := range ms {
		dtos = append(dtos, *FromModel(&ms[i]))
	}
	return dtos
}

// ToModel prepares the GORM model from creation DTO.
func (c CreateBranchDTO) ToModel() *models.Branch {
	return &models.Branch{
		StoreID:   c.StoreID,
		Name:      c.Name,
		Location:  c.Location,
		Phone:     c.Phone,
		IsMain:    c.IsMain,
		DebtLimit: c.DebtLimit,
	}
}

package transactions

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hysabee/hysabee-backend/pkg/db/models"
	"github.com/hysabee/hysabee-backend/pkg/enums"
)

// TransactionDTO exposes a ledger entry in API responses.
type TransactionDTO struct {
	ID          uuid.UUID             `json:"id"`
	StoreID     uuid.UUID             `json:"store_id"`
	BranchID    uuid.UUID             `json:"branch_id"`
	CustomerID  uuid.UUID             `json:"customer_id"`
	Type        enums.TransactionType `json:"type"`
	Amount      decimal.Decimal       `json:"amount"`
	Currency    enums.Currency        `json:"currency"`
	Note        *string               `json:"note,omitempty"`
	PaybackDate *time.Time            `json:"payback_date,omitempty"`
	OccurredAt  time.Time             `json:"occurred_at"`
	CreatedBy   uuid.UUID             `json:"created_by"`
	CreatedAt   time.Time             `json:"created_at"`
}

// FromModel maps the persisted transaction into a DTO.
func FromModel(m *models.Transaction) *TransactionDTO {
	if m == nil {
		return nil
	}
	return &TransactionDTO{
		ID:          m.ID,
		StoreID:     m.StoreID,
		BranchID:    m.BranchID,
		CustomerID:  m.CustomerID,
		Type:        m.Type,
		Amount:      m.Amount,
		Currency:    m.Currency,
		Note:        m.Note,
		PaybackDate: m.PaybackDate,
		OccurredAt:  m.OccurredAt,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
	}
}

// FromModels maps a slice of transactions into DTOs.
func FromModels(ms []models.Transaction) []TransactionDTO {
	dtos := make([]TransactionDTO, 0, len(ms))
	for i := range ms {
		dtos = append(dtos, *FromModel(&ms[i]))
	}
	return dtos
}

package subscriptions

import (
	"time"

	"github.com/google/uuid"

	"github.com/hysabee/hysabee-backend/pkg/db/models"
	"github.com/hysabee/hysabee-backend/pkg/enums"
)

// SubscriptionDTO exposes billing state in API responses.
type SubscriptionDTO struct {
	ID                 uuid.UUID                `json:"id"`
	UserID             uuid.UUID                `json:"user_id"`
	SubscriptionID     string                   `json:"subscription_id"`
	CustomerID         *string                  `json:"customer_id,omitempty"`
	Status             enums.SubscriptionStatus `json:"status"`
	Plan               string                   `json:"plan"`
	BillingPeriod      enums.BillingPeriod      `json:"billing_period"`
	ProductID          *string                  `json:"product_id,omitempty"`
	CurrentPeriodStart *time.Time               `json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time               `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd  bool                     `json:"cancel_at_period_end"`
	CancelledAt        *time.Time               `json:"cancelled_at,omitempty"`
	CreatedAt          time.Time                `json:"created_at"`
	UpdatedAt          time.Time                `json:"updated_at"`
}

// FromModel maps the persisted subscription into a DTO.
func FromModel(m *models.Subscription) *SubscriptionDTO {
	if m == nil {
		return nil
	}
	return &SubscriptionDTO{
		ID:                 m.ID,
		UserID:             m.UserID,
		SubscriptionID:     m.DodoSubscriptionID,
		CustomerID:         m.DodoCustomerID,
		Status:             m.Status,
		Plan:               m.Plan,
		BillingPeriod:      m.BillingPeriod,
		ProductID:          m.ProductID,
		CurrentPeriodStart: m.CurrentPeriodStart,
		CurrentPeriodEnd:   m.CurrentPeriodEnd,
		CancelAtPeriodEnd:  m.CancelAtPeriodEnd,
		CancelledAt:        m.CancelledAt,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

// FromModels maps a slice of subscriptions into DTOs.
func FromModels(ms []models.Subscription) []SubscriptionDTO {
	dtos := make([]SubscriptionDTO, 0, len(ms))
	for i := range ms {
		dtos = append(dtos, *FromModel(&ms[i]))
	}
	return dtos
}

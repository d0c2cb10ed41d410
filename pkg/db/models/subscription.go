package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/hysabee/hysabee-backend/pkg/enums"
)

// Subscription persists Dodo Payments subscription state per user. Rows are
// upserted by DodoSubscriptionID as webhook events arrive.
type Subscription struct {
	ID                 uuid.UUID                `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID             uuid.UUID                `gorm:"column:user_id;type:uuid;not null;index"`
	DodoSubscriptionID string                   `gorm:"column:dodo_subscription_id;not null;unique"`
	DodoCustomerID     *string                  `gorm:"column:dodo_customer_id"`
	Status             enums.SubscriptionStatus `gorm:"column:status;type:text;not null;default:'active'"`
	Plan               string                   `gorm:"column:plan;not null;default:'basic'"`
	BillingPeriod      enums.BillingPeriod      `gorm:"column:billing_period;type:text;not null;default:'monthly'"`
	ProductID          *string                  `gorm:"column:product_id"`
	CurrentPeriodStart *time.Time               `gorm:"column:current_period_start"`
	CurrentPeriodEnd   *time.Time               `gorm:"column:current_period_end"`
	CancelAtPeriodEnd  bool                     `gorm:"column:cancel_at_period_end;not null;default:false"`
	CancelledAt        *time.Time               `gorm:"column:cancelled_at"`
	Metadata           json.RawMessage          `gorm:"column:metadata;type:jsonb"`
	CreatedAt          time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

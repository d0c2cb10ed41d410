package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SubscriptionEvent records every billing webhook applied to a subscription.
// The unique (dodo_subscription_id, provider_event_id) pair makes replayed
// deliveries visible as conflicts instead of double-applies.
type SubscriptionEvent struct {
	ID                 uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	DodoSubscriptionID string          `gorm:"column:dodo_subscription_id;not null;uniqueIndex:idx_subscription_events_sub_event"`
	ProviderEventID    string          `gorm:"column:provider_event_id;not null;uniqueIndex:idx_subscription_events_sub_event"`
	EventType          string          `gorm:"column:event_type;not null"`
	Payload            json.RawMessage `gorm:"column:payload;type:jsonb"`
	ReceivedAt         time.Time       `gorm:"column:received_at;not null"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
}

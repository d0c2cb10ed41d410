package webhooks

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Event types delivered by Dodo Payments.
const (
	EventSubscriptionActive    = "subscription.active"
	EventSubscriptionRenewed   = "subscription.renewed"
	EventSubscriptionCancelled = "subscription.cancelled"
	EventSubscriptionExpired   = "subscription.expired"
	EventSubscriptionOnHold    = "subscription.on_hold"
	EventPaymentSucceeded      = "payment.succeeded"
	EventPaymentFailed         = "payment.failed"
)

// Event is the envelope Dodo posts to the webhook endpoint.
type Event struct {
	Type      string    `json:"type"`
	Timestamp *FlexTime `json:"timestamp,omitempty"`
	Data      EventData `json:"data"`
}

// EventData carries the subscription payload. Fields the reconciler does not
// consume are left to the raw payload stored on the event log row.
type EventData struct {
	SubscriptionID     string            `json:"subscription_id"`
	Customer           EventCustomer     `json:"customer"`
	Status             string            `json:"status"`
	ProductID          string            `json:"product_id"`
	Metadata           map[string]string `json:"metadata"`
	CurrentPeriodStart *FlexTime         `json:"current_period_start"`
	CurrentPeriodEnd   *FlexTime         `json:"current_period_end"`
	NextBillingDate    *FlexTime         `json:"next_billing_date"`
	CancelAtPeriodEnd  bool              `json:"cancel_at_next_billing_date"`
	CancelledAt        *FlexTime         `json:"cancelled_at"`
}

// EventCustomer identifies the provider-side billing customer.
type EventCustomer struct {
	CustomerID string `json:"customer_id"`
	Email      string `json:"email"`
}

// ParseEvent decodes a webhook body into the typed envelope.
func ParseEvent(body []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("decode webhook event: %w", err)
	}
	if strings.TrimSpace(event.Type) == "" {
		return nil, fmt.Errorf("webhook event missing type")
	}
	return &event, nil
}

// FlexTime accepts both unix-seconds numbers and RFC3339 strings; Dodo sends
// either depending on the event type.
type FlexTime struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexTime) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return nil
	}

	if trimmed[0] == '"' {
		var value string
		if err := json.Unmarshal(data, &value); err != nil {
			return err
		}
		if strings.TrimSpace(value) == "" {
			return nil
		}
		parsed, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return fmt.Errorf("parse timestamp %q: %w", value, err)
		}
		f.Time = parsed.UTC()
		return nil
	}

	var seconds float64
	if err := json.Unmarshal(data, &seconds); err != nil {
		return fmt.Errorf("parse numeric timestamp: %w", err)
	}
	sec := int64(seconds)
	nsec := int64((seconds - float64(sec)) * float64(time.Second))
	f.Time = time.Unix(sec, nsec).UTC()
	return nil
}

// TimePtr returns the wrapped time or nil when unset.
func (f *FlexTime) TimePtr() *time.Time {
	if f == nil || f.Time.IsZero() {
		return nil
	}
	t := f.Time
	return &t
}

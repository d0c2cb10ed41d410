package webhooks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hysabee/hysabee-backend/pkg/db"
	"github.com/hysabee/hysabee-backend/pkg/db/models"
	"github.com/hysabee/hysabee-backend/pkg/enums"
	pkgerrors "github.com/hysabee/hysabee-backend/pkg/errors"
	"github.com/hysabee/hysabee-backend/pkg/metrics"
)

const (
	defaultPlan          = "basic"
	eventUniqueIndexName = "idx_subscription_events_sub_event"
)

// ErrDuplicateEvent signals the delivery was already applied; the caller
// should acknowledge it without reprocessing.
var ErrDuplicateEvent = errors.New("webhook event already applied")

// statusByProvider maps provider status strings onto local subscription state.
var statusByProvider = map[string]enums.SubscriptionStatus{
	"active":    enums.SubscriptionStatusActive,
	"cancelled": enums.SubscriptionStatusCancelled,
	"expired":   enums.SubscriptionStatusExpired,
	"on_hold":   enums.SubscriptionStatusOnHold,
	"past_due":  enums.SubscriptionStatusPastDue,
	"trialing":  enums.SubscriptionStatusTrialing,
	"failed":    enums.SubscriptionStatusCancelled,
	"pending":   enums.SubscriptionStatusActive,
}

type subscriptionStore interface {
	FindByDodoID(ctx context.Context, dodoSubscriptionID string) (*models.Subscription, error)
	UpsertWithTx(tx *gorm.DB, sub *models.Subscription) error
	InsertEventWithTx(tx *gorm.DB, event *models.SubscriptionEvent) error
	LatestEventTimeWithTx(tx *gorm.DB, dodoSubscriptionID string) (*time.Time, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cacheInvalidator interface {
	InvalidateCache(ctx context.Context, userID uuid.UUID) error
}

// Reconciler maps inbound billing events onto the local subscription row and
// the append-only event log.
type Reconciler struct {
	repo    subscriptionStore
	tx      txRunner
	cache   cacheInvalidator
	metrics *metrics.WebhookMetrics
}

// ReconcilerParams bundles the reconciler dependencies.
type ReconcilerParams struct {
	Repo    subscriptionStore
	Tx      txRunner
	Cache   cacheInvalidator
	Metrics *metrics.WebhookMetrics
}

// NewReconciler constructs a reconciler with the provided dependencies.
func NewReconciler(params ReconcilerParams) (*Reconciler, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("subscription store required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &Reconciler{
		repo:    params.Repo,
		tx:      params.Tx,
		cache:   params.Cache,
		metrics: params.Metrics,
	}, nil
}

// ApplyInput carries one verified webhook delivery.
type ApplyInput struct {
	ProviderEventID string
	Event           *Event
	RawPayload      json.RawMessage
}

// Apply reconciles the event into the subscription row. Duplicate deliveries
// return ErrDuplicateEvent; uncorrelatable events return a typed error so the
// provider retries instead of the state being dropped silently.
func (r *Reconciler) Apply(ctx context.Context, input ApplyInput) error {
	started := time.Now()
	eventType := ""
	if input.Event != nil {
		eventType = input.Event.Type
	}
	err := r.apply(ctx, input)
	r.metrics.ObserveDuration(eventType, time.Since(started))
	switch {
	case err == nil:
		r.metrics.IncProcessed(eventType)
	case errors.Is(err, ErrDuplicateEvent):
		r.metrics.IncSkipped(eventType)
	default:
		r.metrics.IncFailed(eventType)
	}
	return err
}

func (r *Reconciler) apply(ctx context.Context, input ApplyInput) error {
	if input.Event == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "webhook event is required")
	}
	if strings.TrimSpace(input.ProviderEventID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "webhook event id is required")
	}

	event := input.Event
	subscriptionID := strings.TrimSpace(event.Data.SubscriptionID)
	if subscriptionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "webhook event missing subscription_id")
	}

	existing, err := r.repo.FindByDodoID(ctx, subscriptionID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
	}

	userID, err := resolveUserID(event, existing)
	if err != nil {
		return err
	}

	sub := &models.Subscription{
		UserID:             userID,
		DodoSubscriptionID: subscriptionID,
		Status:             deriveStatus(event.Type, event.Data.Status),
		Plan:               resolvePlan(event, existing),
		BillingPeriod:      resolveBillingPeriod(event, existing),
		CancelAtPeriodEnd:  event.Data.CancelAtPeriodEnd,
		CurrentPeriodStart: event.Data.CurrentPeriodStart.TimePtr(),
		CurrentPeriodEnd:   periodEnd(event),
		CancelledAt:        event.Data.CancelledAt.TimePtr(),
	}
	if customerID := strings.TrimSpace(event.Data.Customer.CustomerID); customerID != "" {
		sub.DodoCustomerID = &customerID
	} else if existing != nil {
		sub.DodoCustomerID = existing.DodoCustomerID
	}
	if productID := strings.TrimSpace(event.Data.ProductID); productID != "" {
		sub.ProductID = &productID
	} else if existing != nil {
		sub.ProductID = existing.ProductID
	}
	if len(event.Data.Metadata) > 0 {
		if encoded, err := json.Marshal(event.Data.Metadata); err == nil {
			sub.Metadata = encoded
		}
	} else if existing != nil {
		sub.Metadata = existing.Metadata
	}

	receivedAt := time.Now().UTC()
	if ts := event.Timestamp.TimePtr(); ts != nil {
		receivedAt = *ts
	}
	eventRow := &models.SubscriptionEvent{
		DodoSubscriptionID: subscriptionID,
		ProviderEventID:    strings.TrimSpace(input.ProviderEventID),
		EventType:          event.Type,
		Payload:            input.RawPayload,
		ReceivedAt:         receivedAt,
	}

	// The event log row goes in first: a replayed delivery trips the unique
	// index and rolls back before the subscription row is touched. A delivery
	// older than the newest logged event is still recorded for audit but must
	// not overwrite state reconciled from a later one.
	applied := false
	err = r.tx.WithTx(ctx, func(tx *gorm.DB) error {
		latest, err := r.repo.LatestEventTimeWithTx(tx, subscriptionID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load event history")
		}
		if err := r.repo.InsertEventWithTx(tx, eventRow); err != nil {
			if db.IsUniqueViolation(err, eventUniqueIndexName) {
				return ErrDuplicateEvent
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record webhook event")
		}
		if latest != nil && receivedAt.Before(*latest) {
			return nil
		}
		if err := r.repo.UpsertWithTx(tx, sub); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert subscription")
		}
		applied = true
		return nil
	})
	if err != nil {
		return err
	}

	if applied && r.cache != nil {
		if err := r.cache.InvalidateCache(ctx, userID); err != nil {
			return err
		}
	}
	return nil
}

// deriveStatus applies the provider status lookup with type-specific
// overrides: payment outcomes win over whatever status the payload carries,
// and unknown statuses default to active.
func deriveStatus(eventType, providerStatus string) enums.SubscriptionStatus {
	switch eventType {
	case EventPaymentSucceeded:
		return enums.SubscriptionStatusActive
	case EventPaymentFailed:
		return enums.SubscriptionStatusOnHold
	}
	if status, ok := statusByProvider[strings.ToLower(strings.TrimSpace(providerStatus))]; ok {
		return status
	}
	return enums.SubscriptionStatusActive
}

// resolveUserID prefers the checkout metadata; renewals and later events
// usually omit it, so fall back to the row already keyed by the subscription.
func resolveUserID(event *Event, existing *models.Subscription) (uuid.UUID, error) {
	if raw, ok := event.Data.Metadata["user_id"]; ok && strings.TrimSpace(raw) != "" {
		parsed, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user_id metadata")
		}
		return parsed, nil
	}
	if existing != nil {
		return existing.UserID, nil
	}
	return uuid.Nil, pkgerrors.New(pkgerrors.CodeNotFound, "cannot correlate event to a user")
}

func resolvePlan(event *Event, existing *models.Subscription) string {
	if raw, ok := event.Data.Metadata["plan_id"]; ok && strings.TrimSpace(raw) != "" {
		return strings.ToLower(strings.TrimSpace(raw))
	}
	if existing != nil && existing.Plan != "" {
		return existing.Plan
	}
	return defaultPlan
}

func resolveBillingPeriod(event *Event, existing *models.Subscription) enums.BillingPeriod {
	if raw, ok := event.Data.Metadata["billing_period"]; ok {
		if period, err := enums.ParseBillingPeriod(strings.TrimSpace(raw)); err == nil {
			return period
		}
	}
	if existing != nil && existing.BillingPeriod.IsValid() {
		return existing.BillingPeriod
	}
	return enums.BillingPeriodMonthly
}

// periodEnd prefers the explicit period end and falls back to the next
// billing date renewal events carry instead.
func periodEnd(event *Event) *time.Time {
	if end := event.Data.CurrentPeriodEnd.TimePtr(); end != nil {
		return end
	}
	return event.Data.NextBillingDate.TimePtr()
}

package subscriptions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hysabee/hysabee-backend/pkg/db/models"
)

// Repository handles subscription and subscription-event persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to subscription operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// upsertColumns are the fields a webhook event may overwrite on replayed state.
var upsertColumns = []string{
	"user_id",
	"dodo_customer_id",
	"status",
	"plan",
	"billing_period",
	"product_id",
	"current_period_start",
	"current_period_end",
	"cancel_at_period_end",
	"cancelled_at",
	"metadata",
	"updated_at",
}

// Upsert inserts or replaces the row keyed by dodo_subscription_id.
func (r *Repository) Upsert(ctx context.Context, sub *models.Subscription) error {
	if sub == nil {
		return fmt.Errorf("subscription is required")
	}
	return r.upsert(r.db.WithContext(ctx), sub)
}

// UpsertWithTx performs the upsert inside the provided transaction.
func (r *Repository) UpsertWithTx(tx *gorm.DB, sub *models.Subscription) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if sub == nil {
		return fmt.Errorf("subscription is required")
	}
	return r.upsert(tx, sub)
}

func (r *Repository) upsert(db *gorm.DB, sub *models.Subscription) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "dodo_subscription_id"}},
		DoUpdates: clause.AssignmentColumns(upsertColumns),
	}).Create(sub).Error
}

// FindByDodoID loads a subscription by the provider's identifier.
func (r *Repository) FindByDodoID(ctx context.Context, dodoSubscriptionID string) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.WithContext(ctx).
		Where("dodo_subscription_id = ?", dodoSubscriptionID).
		First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// FindLatestByUser returns the user's most recent subscription row.
func (r *Repository) FindLatestByUser(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListByUser returns the user's subscription history, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Subscription, error) {
	var subs []models.Subscription
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

// InsertEventWithTx records an applied webhook delivery inside the provided
// transaction. The (dodo_subscription_id, provider_event_id) unique index makes
// replays fail here instead of double-applying.
func (r *Repository) InsertEventWithTx(tx *gorm.DB, event *models.SubscriptionEvent) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if event == nil {
		return fmt.Errorf("event is required")
	}
	return tx.Create(event).Error
}

// LatestEventTimeWithTx returns the received_at of the newest logged event for
// the subscription, or nil when none has been recorded yet.
func (r *Repository) LatestEventTimeWithTx(tx *gorm.DB, dodoSubscriptionID string) (*time.Time, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	var event models.SubscriptionEvent
	err := tx.Where("dodo_subscription_id = ?", dodoSubscriptionID).
		Order("received_at DESC").
		First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &event.ReceivedAt, nil
}

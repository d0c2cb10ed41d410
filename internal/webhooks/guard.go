package webhooks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hysabee/hysabee-backend/pkg/redis"
)

// DeliveryGuard short-circuits repeat webhook deliveries with a Redis SetNX
// mark before the database is touched. The event log unique index remains the
// authoritative duplicate check.
type DeliveryGuard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
	scope string
}

// NewDeliveryGuard builds a guard scoped to one webhook endpoint.
func NewDeliveryGuard(store redis.IdempotencyStore, ttl time.Duration, scope string) (*DeliveryGuard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	if scope == "" {
		return nil, errors.New("scope is required")
	}
	return &DeliveryGuard{
		store: store,
		ttl:   ttl,
		scope: scope,
	}, nil
}

// CheckAndMark returns true when the event id was already marked.
func (g *DeliveryGuard) CheckAndMark(ctx context.Context, eventID string) (bool, error) {
	if eventID == "" {
		return false, errors.New("event id is required")
	}
	key := g.store.IdempotencyKey(g.scope, eventID)
	set, err := g.store.SetNX(ctx, key, "1", g.ttl)
	if err != nil {
		return false, fmt.Errorf("set idempotency key: %w", err)
	}
	return !set, nil
}

// Delete clears the mark so the provider's retry can be reprocessed.
func (g *DeliveryGuard) Delete(ctx context.Context, eventID string) error {
	if eventID == "" {
		return errors.New("event id is required")
	}
	key := g.store.IdempotencyKey(g.scope, eventID)
	return g.store.Del(ctx, key)
}

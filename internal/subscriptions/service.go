package subscriptions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/hysabee/hysabee-backend/pkg/config"
	"github.com/hysabee/hysabee-backend/pkg/db/models"
	"github.com/hysabee/hysabee-backend/pkg/dodo"
	"github.com/hysabee/hysabee-backend/pkg/enums"
	pkgerrors "github.com/hysabee/hysabee-backend/pkg/errors"
)

type subscriptionRepository interface {
	FindLatestByUser(ctx context.Context, userID uuid.UUID) (*models.Subscription, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Subscription, error)
}

type billingClient interface {
	CreateCheckoutSession(ctx context.Context, req dodo.CheckoutRequest) (*dodo.CheckoutSession, error)
	ChangePlan(ctx context.Context, req dodo.ChangePlanRequest) error
	CreatePortalSession(ctx context.Context, customerID string) (*dodo.PortalSession, error)
}

type subscriptionCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	SubscriptionCacheKey(userID string) string
}

// Service exposes billing operations for the authenticated user.
type Service interface {
	Current(ctx context.Context, userID uuid.UUID) (*SubscriptionDTO, error)
	History(ctx context.Context, userID uuid.UUID) ([]SubscriptionDTO, error)
	Plans() []PlanDTO
	Checkout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error)
	ChangePlan(ctx context.Context, input ChangePlanInput) error
	Portal(ctx context.Context, userID uuid.UUID) (*PortalResult, error)
	InvalidateCache(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	repo     subscriptionRepository
	billing  billingClient
	cache    subscriptionCache
	catalog  *Catalog
	cacheTTL time.Duration
	dodoCfg  config.DodoConfig
}

// ServiceParams bundles the dependencies required to build the service.
type ServiceParams struct {
	Repo     subscriptionRepository
	Billing  billingClient
	Cache    subscriptionCache
	Catalog  *Catalog
	CacheTTL time.Duration
	DodoCfg  config.DodoConfig
}

// NewService constructs a subscription service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("subscription repository required")
	}
	if params.Billing == nil {
		return nil, fmt.Errorf("billing client required")
	}
	if params.Cache == nil {
		return nil, fmt.Errorf("subscription cache required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("plan catalog required")
	}
	ttl := params.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &service{
		repo:     params.Repo,
		billing:  params.Billing,
		cache:    params.Cache,
		catalog:  params.Catalog,
		cacheTTL: ttl,
		dodoCfg:  params.DodoCfg,
	}, nil
}

// CheckoutInput identifies the buyer and the plan variant to purchase.
type CheckoutInput struct {
	UserID        uuid.UUID
	Email         string
	Name          string
	Plan          string
	BillingPeriod enums.BillingPeriod
}

// CheckoutResult carries the hosted payment page to redirect the user to.
type CheckoutResult struct {
	PaymentLink string `json:"payment_link"`
}

// ChangePlanInput identifies the plan variant to switch the active subscription to.
type ChangePlanInput struct {
	UserID        uuid.UUID
	Plan          string
	BillingPeriod enums.BillingPeriod
}

// PortalResult carries the hosted billing portal link.
type PortalResult struct {
	Link string `json:"link"`
}

func (s *service) Current(ctx context.Context, userID uuid.UUID) (*SubscriptionDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	key := s.cache.SubscriptionCacheKey(userID.String())
	if cached, err := s.cache.Get(ctx, key); err == nil && cached != "" {
		var dto SubscriptionDTO
		if err := json.Unmarshal([]byte(cached), &dto); err == nil {
			return &dto, nil
		}
		// A corrupt cache entry falls through to the database read.
	} else if err != nil && !errors.Is(err, redislib.Nil) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read subscription cache")
	}

	sub, err := s.repo.FindLatestByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no subscription")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
	}

	dto := FromModel(sub)
	if encoded, err := json.Marshal(dto); err == nil {
		_ = s.cache.Set(ctx, key, string(encoded), s.cacheTTL)
	}
	return dto, nil
}

func (s *service) History(ctx context.Context, userID uuid.UUID) ([]SubscriptionDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	subs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list subscriptions")
	}
	return FromModels(subs), nil
}

func (s *service) Plans() []PlanDTO {
	return s.catalog.Plans()
}

func (s *service) Checkout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if !input.BillingPeriod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid billing period")
	}
	productID, err := s.catalog.ProductID(input.Plan, input.BillingPeriod)
	if err != nil {
		return nil, err
	}

	session, err := s.billing.CreateCheckoutSession(ctx, dodo.CheckoutRequest{
		ProductID:     productID,
		Quantity:      1,
		CustomerEmail: strings.TrimSpace(input.Email),
		CustomerName:  strings.TrimSpace(input.Name),
		ReturnURL:     s.dodoCfg.ReturnURL,
		Metadata: map[string]string{
			"user_id":        input.UserID.String(),
			"plan_id":        strings.ToLower(strings.TrimSpace(input.Plan)),
			"billing_period": input.BillingPeriod.String(),
		},
	})
	if err != nil {
		return nil, err
	}
	return &CheckoutResult{PaymentLink: session.PaymentLink}, nil
}

func (s *service) ChangePlan(ctx context.Context, input ChangePlanInput) error {
	if input.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if !input.BillingPeriod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid billing period")
	}
	productID, err := s.catalog.ProductID(input.Plan, input.BillingPeriod)
	if err != nil {
		return err
	}

	sub, err := s.repo.FindLatestByUser(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "no subscription")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
	}
	if sub.Status != enums.SubscriptionStatusActive && sub.Status != enums.SubscriptionStatusTrialing {
		return pkgerrors.New(pkgerrors.CodeConflict, "subscription is not active")
	}

	if err := s.billing.ChangePlan(ctx, dodo.ChangePlanRequest{
		SubscriptionID: sub.DodoSubscriptionID,
		ProductID:      productID,
		Quantity:       1,
	}); err != nil {
		return err
	}

	// The webhook confirming the change lands asynchronously; drop the cached
	// row now so reads do not serve the old plan for a full TTL.
	return s.InvalidateCache(ctx, input.UserID)
}

func (s *service) Portal(ctx context.Context, userID uuid.UUID) (*PortalResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	sub, err := s.repo.FindLatestByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no subscription")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
	}
	if sub.DodoCustomerID == nil || strings.TrimSpace(*sub.DodoCustomerID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no billing customer on record")
	}

	session, err := s.billing.CreatePortalSession(ctx, *sub.DodoCustomerID)
	if err != nil {
		return nil, err
	}
	return &PortalResult{Link: session.Link}, nil
}

func (s *service) InvalidateCache(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return nil
	}
	if err := s.cache.Del(ctx, s.cache.SubscriptionCacheKey(userID.String())); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "invalidate subscription cache")
	}
	return nil
}

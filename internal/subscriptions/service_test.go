package subscriptions

import (
	"context"
	"testing"
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

func testBillingConfig() config.BillingConfig {
	return config.BillingConfig{
		BasicMonthlyProductID: "prod_basic_m",
		BasicYearlyProductID:  "prod_basic_y",
		ProMonthlyProductID:   "prod_pro_m",
		ProYearlyProductID:    "prod_pro_y",
	}
}

func TestCatalogOmitsUnconfiguredVariants(t *testing.T) {
	catalog := NewCatalog(config.BillingConfig{BasicMonthlyProductID: "prod_basic_m"})
	plans := catalog.Plans()
	if len(plans) != 1 {
		t.Fatalf("expected 1 plan, got %d", len(plans))
	}
	if plans[0].ProductID != "prod_basic_m" {
		t.Fatalf("unexpected product %q", plans[0].ProductID)
	}
	if _, err := catalog.ProductID(PlanPro, enums.BillingPeriodMonthly); err == nil {
		t.Fatal("expected error for unconfigured plan")
	}
}

func TestCatalogReversesProductID(t *testing.T) {
	catalog := NewCatalog(testBillingConfig())
	plan, period, ok := catalog.PlanForProduct("prod_pro_y")
	if !ok {
		t.Fatal("expected product to resolve")
	}
	if plan != PlanPro || period != enums.BillingPeriodYearly {
		t.Fatalf("unexpected mapping %s/%s", plan, period)
	}
}

func TestCurrentReadsThroughCache(t *testing.T) {
	userID := uuid.New()
	sub := baseSubscription(userID)
	repo := &stubSubscriptionRepo{latest: sub}
	cache := newStubCache()
	svc := mustSubscriptionService(t, repo, &stubBillingClient{}, cache)

	dto, err := svc.Current(context.Background(), userID)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if dto.SubscriptionID != sub.DodoSubscriptionID {
		t.Fatalf("unexpected subscription %q", dto.SubscriptionID)
	}
	if repo.latestCalls != 1 {
		t.Fatalf("expected one repo read, got %d", repo.latestCalls)
	}
	if len(cache.values) != 1 {
		t.Fatalf("expected result to be cached, got %d entries", len(cache.values))
	}

	// Second read serves the cached row without touching the repo.
	if _, err := svc.Current(context.Background(), userID); err != nil {
		t.Fatalf("cached current: %v", err)
	}
	if repo.latestCalls != 1 {
		t.Fatalf("expected cache hit, repo reads = %d", repo.latestCalls)
	}
}

func TestCurrentReturnsNotFoundWithoutRow(t *testing.T) {
	svc := mustSubscriptionService(t, &stubSubscriptionRepo{}, &stubBillingClient{}, newStubCache())

	_, err := svc.Current(context.Background(), uuid.New())
	if err == nil {
		t.Fatal("expected error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found code, got %v", err)
	}
}

func TestHistoryNewestFirstPassthrough(t *testing.T) {
	userID := uuid.New()
	repo := &stubSubscriptionRepo{
		history: []models.Subscription{*baseSubscription(userID), *baseSubscription(userID)},
	}
	svc := mustSubscriptionService(t, repo, &stubBillingClient{}, newStubCache())

	dtos, err := svc.History(context.Background(), userID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(dtos) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(dtos))
	}
}

func TestCheckoutResolvesProductAndMetadata(t *testing.T) {
	userID := uuid.New()
	billing := &stubBillingClient{session: &dodo.CheckoutSession{PaymentLink: "https://pay.example/x"}}
	svc := mustSubscriptionService(t, &stubSubscriptionRepo{}, billing, newStubCache())

	result, err := svc.Checkout(context.Background(), CheckoutInput{
		UserID:        userID,
		Email:         "owner@example.com",
		Plan:          "Pro",
		BillingPeriod: enums.BillingPeriodYearly,
	})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if result.PaymentLink != "https://pay.example/x" {
		t.Fatalf("unexpected payment link %q", result.PaymentLink)
	}
	if billing.checkoutReq.ProductID != "prod_pro_y" {
		t.Fatalf("expected product prod_pro_y, got %q", billing.checkoutReq.ProductID)
	}
	if billing.checkoutReq.Metadata["user_id"] != userID.String() {
		t.Fatal("expected user_id metadata for webhook correlation")
	}
	if billing.checkoutReq.Metadata["plan_id"] != "pro" {
		t.Fatalf("expected normalized plan metadata, got %q", billing.checkoutReq.Metadata["plan_id"])
	}
}

func TestCheckoutRejectsUnknownPlan(t *testing.T) {
	svc := mustSubscriptionService(t, &stubSubscriptionRepo{}, &stubBillingClient{}, newStubCache())

	_, err := svc.Checkout(context.Background(), CheckoutInput{
		UserID:        uuid.New(),
		Plan:          "enterprise",
		BillingPeriod: enums.BillingPeriodMonthly,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %v", err)
	}
}

func TestChangePlanRequiresActiveSubscription(t *testing.T) {
	userID := uuid.New()
	sub := baseSubscription(userID)
	sub.Status = enums.SubscriptionStatusCancelled
	svc := mustSubscriptionService(t, &stubSubscriptionRepo{latest: sub}, &stubBillingClient{}, newStubCache())

	err := svc.ChangePlan(context.Background(), ChangePlanInput{
		UserID:        userID,
		Plan:          PlanPro,
		BillingPeriod: enums.BillingPeriodMonthly,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict code, got %v", err)
	}
}

func TestChangePlanCallsProviderAndInvalidatesCache(t *testing.T) {
	userID := uuid.New()
	sub := baseSubscription(userID)
	billing := &stubBillingClient{}
	cache := newStubCache()
	cache.values[cache.SubscriptionCacheKey(userID.String())] = "stale"
	svc := mustSubscriptionService(t, &stubSubscriptionRepo{latest: sub}, billing, cache)

	err := svc.ChangePlan(context.Background(), ChangePlanInput{
		UserID:        userID,
		Plan:          PlanPro,
		BillingPeriod: enums.BillingPeriodMonthly,
	})
	if err != nil {
		t.Fatalf("change plan: %v", err)
	}
	if billing.changePlanReq.SubscriptionID != sub.DodoSubscriptionID {
		t.Fatalf("expected change on %q, got %q", sub.DodoSubscriptionID, billing.changePlanReq.SubscriptionID)
	}
	if billing.changePlanReq.ProductID != "prod_pro_m" {
		t.Fatalf("expected product prod_pro_m, got %q", billing.changePlanReq.ProductID)
	}
	if _, ok := cache.values[cache.SubscriptionCacheKey(userID.String())]; ok {
		t.Fatal("expected cached row to be invalidated")
	}
}

func TestPortalRequiresBillingCustomer(t *testing.T) {
	userID := uuid.New()
	sub := baseSubscription(userID)
	sub.DodoCustomerID = nil
	svc := mustSubscriptionService(t, &stubSubscriptionRepo{latest: sub}, &stubBillingClient{}, newStubCache())

	_, err := svc.Portal(context.Background(), userID)
	if err == nil {
		t.Fatal("expected error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found code, got %v", err)
	}
}

func TestPortalReturnsProviderLink(t *testing.T) {
	userID := uuid.New()
	sub := baseSubscription(userID)
	billing := &stubBillingClient{portal: &dodo.PortalSession{Link: "https://portal.example/y"}}
	svc := mustSubscriptionService(t, &stubSubscriptionRepo{latest: sub}, billing, newStubCache())

	result, err := svc.Portal(context.Background(), userID)
	if err != nil {
		t.Fatalf("portal: %v", err)
	}
	if result.Link != "https://portal.example/y" {
		t.Fatalf("unexpected link %q", result.Link)
	}
}

func mustSubscriptionService(t *testing.T, repo *stubSubscriptionRepo, billing *stubBillingClient, cache *stubCache) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:     repo,
		Billing:  billing,
		Cache:    cache,
		Catalog:  NewCatalog(testBillingConfig()),
		CacheTTL: time.Minute,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func baseSubscription(userID uuid.UUID) *models.Subscription {
	customerID := "cus_123"
	return &models.Subscription{
		ID:                 uuid.New(),
		UserID:             userID,
		DodoSubscriptionID: "sub_123",
		DodoCustomerID:     &customerID,
		Status:             enums.SubscriptionStatusActive,
		Plan:               PlanBasic,
		BillingPeriod:      enums.BillingPeriodMonthly,
	}
}

type stubSubscriptionRepo struct {
	latest      *models.Subscription
	history     []models.Subscription
	latestCalls int
}

func (s *stubSubscriptionRepo) FindLatestByUser(_ context.Context, _ uuid.UUID) (*models.Subscription, error) {
	s.latestCalls++
	if s.latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.latest, nil
}

func (s *stubSubscriptionRepo) ListByUser(_ context.Context, _ uuid.UUID) ([]models.Subscription, error) {
	return s.history, nil
}

type stubBillingClient struct {
	session       *dodo.CheckoutSession
	portal        *dodo.PortalSession
	checkoutReq   dodo.CheckoutRequest
	changePlanReq dodo.ChangePlanRequest
	err           error
}

func (s *stubBillingClient) CreateCheckoutSession(_ context.Context, req dodo.CheckoutRequest) (*dodo.CheckoutSession, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.checkoutReq = req
	if s.session == nil {
		return &dodo.CheckoutSession{}, nil
	}
	return s.session, nil
}

func (s *stubBillingClient) ChangePlan(_ context.Context, req dodo.ChangePlanRequest) error {
	if s.err != nil {
		return s.err
	}
	s.changePlanReq = req
	return nil
}

func (s *stubBillingClient) CreatePortalSession(_ context.Context, _ string) (*dodo.PortalSession, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.portal == nil {
		return &dodo.PortalSession{}, nil
	}
	return s.portal, nil
}

type stubCache struct {
	values map[string]string
}

func newStubCache() *stubCache {
	return &stubCache{values: map[string]string{}}
}

func (s *stubCache) Get(_ context.Context, key string) (string, error) {
	value, ok := s.values[key]
	if !ok {
		return "", redislib.Nil
	}
	return value, nil
}

func (s *stubCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	s.values[key] = value.(string)
	return nil
}

func (s *stubCache) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

func (s *stubCache) SubscriptionCacheKey(userID string) string {
	return "hysabee:subscription:" + userID
}

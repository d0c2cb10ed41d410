package subscriptions

import (
	"strings"

	"github.com/hysabee/hysabee-backend/pkg/config"
	"github.com/hysabee/hysabee-backend/pkg/enums"
	pkgerrors "github.com/hysabee/hysabee-backend/pkg/errors"
)

const (
	PlanBasic = "basic"
	PlanPro   = "pro"
)

// PlanDTO describes one purchasable plan variant.
type PlanDTO struct {
	Plan          string              `json:"plan"`
	BillingPeriod enums.BillingPeriod `json:"billing_period"`
	ProductID     string              `json:"product_id"`
}

// Catalog maps plan/period pairs onto Dodo product IDs from configuration.
type Catalog struct {
	plans []PlanDTO
}

// NewCatalog builds the plan catalog; variants without a configured product ID
// are omitted.
func NewCatalog(cfg config.BillingConfig) *Catalog {
	variants := []PlanDTO{
		{Plan: PlanBasic, BillingPeriod: enums.BillingPeriodMonthly, ProductID: cfg.BasicMonthlyProductID},
		{Plan: PlanBasic, BillingPeriod: enums.BillingPeriodYearly, ProductID: cfg.BasicYearlyProductID},
		{Plan: PlanPro, BillingPeriod: enums.BillingPeriodMonthly, ProductID: cfg.ProMonthlyProductID},
		{Plan: PlanPro, BillingPeriod: enums.BillingPeriodYearly, ProductID: cfg.ProYearlyProductID},
	}
	plans := make([]PlanDTO, 0, len(variants))
	for _, v := range variants {
		if strings.TrimSpace(v.ProductID) != "" {
			plans = append(plans, v)
		}
	}
	return &Catalog{plans: plans}
}

// Plans returns every purchasable plan variant.
func (c *Catalog) Plans() []PlanDTO {
	out := make([]PlanDTO, len(c.plans))
	copy(out, c.plans)
	return out
}

// ProductID resolves the Dodo product for a plan/period pair.
func (c *Catalog) ProductID(plan string, period enums.BillingPeriod) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(plan))
	for _, p := range c.plans {
		if p.Plan == normalized && p.BillingPeriod == period {
			return p.ProductID, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeValidation, "unknown plan")
}

// PlanForProduct reverses a Dodo product ID back onto a plan/period pair.
func (c *Catalog) PlanForProduct(productID string) (string, enums.BillingPeriod, bool) {
	for _, p := range c.plans {
		if p.ProductID == productID {
			return p.Plan, p.BillingPeriod, true
		}
	}
	return "", "", false
}

package enums

import "fmt"

// BillingPeriod is the cadence a subscription renews on.
type BillingPeriod string

const (
	BillingPeriodMonthly BillingPeriod = "monthly"
	BillingPeriodYearly  BillingPeriod = "yearly"
)

var validBillingPeriods = []BillingPeriod{
	BillingPeriodMonthly,
	BillingPeriodYearly,
}

// String implements fmt.Stringer.
func (b BillingPeriod) String() string {
	return string(b)
}

// IsValid reports whether the value is known.
func (b BillingPeriod) IsValid() bool {
	for _, candidate := range validBillingPeriods {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBillingPeriod converts raw input into a BillingPeriod.
func ParseBillingPeriod(value string) (BillingPeriod, error) {
	for _, candidate := range validBillingPeriods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid billing period %q", value)
}

package enums

import (
	"fmt"
	"strings"
)

// Currency is the ISO 4217 code a store keeps its ledger in.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencySAR Currency = "SAR"
	CurrencyAED Currency = "AED"
	CurrencyINR Currency = "INR"
)

var validCurrencies = []Currency{
	CurrencyUSD,
	CurrencyEUR,
	CurrencyGBP,
	CurrencySAR,
	CurrencyAED,
	CurrencyINR,
}

// String implements fmt.Stringer.
func (c Currency) String() string {
	return string(c)
}

// IsValid reports whether the value is known.
func (c Currency) IsValid() bool {
	for _, candidate := range validCurrencies {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCurrency converts raw input into a Currency.
func ParseCurrency(value string) (Currency, error) {
	normalized := Currency(strings.ToUpper(strings.TrimSpace(value)))
	for _, candidate := range validCurrencies {
		if candidate == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid currency %q", value)
}

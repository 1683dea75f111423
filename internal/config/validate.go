package config

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	if err := c.Finance.validate(); err != nil {
		return fmt.Errorf("finance: %w", err)
	}

	return nil
}

func (f *FinanceConfig) validate() error {
	if f.SystemCurrency == "" {
		return fmt.Errorf("system_currency is required")
	}

	f.Accepted = SplitList(f.AcceptedRaw)
	if len(f.Accepted) == 0 {
		return fmt.Errorf("accepted_currencies must list at least one currency")
	}

	rates, err := ParseRates(f.RatesRaw)
	if err != nil {
		return fmt.Errorf("exchange_rates: %w", err)
	}
	f.Rates = rates

	for _, cur := range f.Accepted {
		if cur == f.SystemCurrency {
			continue
		}
		if _, ok := f.Rates[cur]; !ok {
			return fmt.Errorf("no exchange rate configured for accepted currency %s", cur)
		}
	}

	return nil
}

// ParseRates parses a comma-separated string of "CUR:rate" pairs
// (e.g. "USD:0.93,GBP:1.17") into a rate map. An empty string returns a nil map.
func ParseRates(raw string) (map[string]decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	rates := make(map[string]decimal.Decimal)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		cur, val, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, fmt.Errorf("invalid rate pair %q (want CUR:rate)", pair)
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(val))
		if err != nil {
			return nil, fmt.Errorf("invalid rate for %s: %w", cur, err)
		}
		if !rate.IsPositive() {
			return nil, fmt.Errorf("rate for %s must be positive (got %s)", cur, rate)
		}
		rates[strings.TrimSpace(cur)] = rate
	}

	return rates, nil
}

package domain

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount together with its ISO currency code. Amounts are decimal
// so that aggregation across records never accumulates float error; any
// rounding happens explicitly at the comparison point.
type Money struct {
	Amount   decimal.Decimal
	Currency string
}

// NewMoney builds a Money from a decimal string such as "100.00".
func NewMoney(amount, currency string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("money amount %q: %w", amount, err)
	}
	return Money{Amount: d, Currency: currency}, nil
}

// ParseMoney parses the submitted form representation "12.50 EUR".
func ParseMoney(s string) (Money, error) {
	amount, currency, ok := strings.Cut(strings.TrimSpace(s), " ")
	if !ok {
		return Money{}, fmt.Errorf("money %q: want \"<amount> <currency>\"", s)
	}
	return NewMoney(amount, strings.TrimSpace(currency))
}

func (m Money) IsZero() bool     { return m.Amount.IsZero() }
func (m Money) IsNegative() bool { return m.Amount.IsNegative() }
func (m Money) IsPositive() bool { return m.Amount.IsPositive() }

func (m Money) String() string {
	return m.Amount.StringFixed(2) + " " + m.Currency
}

// hardCurrencies are always valid for sponsorship amounts regardless of the
// configured accepted list.
var hardCurrencies = []string{"EUR", "USD", "GBP"}

// IsHardCurrency reports whether c is one of the fixed EUR/USD/GBP set.
func IsHardCurrency(c string) bool {
	return slices.Contains(hardCurrencies, c)
}

// FinanceSettings is the snapshot of monetary configuration a validation run
// works against: the system reference currency, the accepted currency list
// for invoices, and per-currency conversion rates into the system currency.
// Rules receive it as a plain value; they never reach into shared state.
type FinanceSettings struct {
	SystemCurrency     string
	AcceptedCurrencies []string
	// Rates maps a currency code to the multiplier that converts one unit of
	// that currency into the system currency. The system currency itself maps
	// to 1.
	Rates map[string]decimal.Decimal
}

// IsAccepted reports whether the currency is on the configured accepted list.
func (f FinanceSettings) IsAccepted(currency string) bool {
	return slices.Contains(f.AcceptedCurrencies, currency)
}

// Rate returns the conversion rate into the system currency.
func (f FinanceSettings) Rate(currency string) (decimal.Decimal, bool) {
	if currency == f.SystemCurrency {
		return decimal.NewFromInt(1), true
	}
	r, ok := f.Rates[currency]
	return r, ok
}

// ToSystem converts m into the system reference currency, unrounded.
// Returns false when no rate is configured for m's currency.
func (f FinanceSettings) ToSystem(m Money) (decimal.Decimal, bool) {
	rate, ok := f.Rate(m.Currency)
	if !ok {
		return decimal.Decimal{}, false
	}
	return m.Amount.Mul(rate), true
}

// RoundMoney rounds an amount to 2 decimal places, half away from zero.
// Every aggregate comparison in the validation rules goes through this so the
// tolerance of the check is exactly one rounding step.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

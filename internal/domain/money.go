package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is a currency amount in euros. It serializes to JSON as a number
// with exactly two decimals.
type Money struct {
	decimal.Decimal
}

// NewMoney converts a float amount (as received from JSON clients).
func NewMoney(f float64) Money {
	return Money{decimal.NewFromFloat(f).Round(2)}
}

// ParseMoney parses a decimal string such as "60", "60.5" or "60,50".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(normalizeDecimal(s))
	if err != nil {
		return Money{}, fmt.Errorf("domain.ParseMoney: %q: %w", s, ErrInvalidInput)
	}
	return Money{d}, nil
}

// Fixed renders the amount with two decimals, e.g. "60.00".
func (m Money) Fixed() string { return m.StringFixed(2) }

// Plus returns m + o.
func (m Money) Plus(o Money) Money { return Money{m.Add(o.Decimal)} }

// Times returns m × n rounded to cents.
func (m Money) Times(n decimal.Decimal) Money { return Money{m.Mul(n).Round(2)} }

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.StringFixed(2)), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		m.Decimal = decimal.Zero
		return nil
	}
	if err := m.Decimal.UnmarshalJSON(b); err != nil {
		return fmt.Errorf("domain.Money: %w", err)
	}
	return nil
}

func normalizeDecimal(s string) string {
	out := []byte(s)
	for i, c := range out {
		if c == ',' {
			out[i] = '.'
		}
	}
	return string(out)
}

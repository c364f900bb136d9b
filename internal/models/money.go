package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// MaxAmount bounds every stored amount so its cents fit in int64 and
// household sums stay far from overflow.
var MaxAmount = decimal.NewFromInt(1_000_000_000_000)

// ParseAmount parses a positive money amount. A comma is accepted as the
// decimal separator and at most two fraction digits are allowed.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, invalid("amount", "not a number: %q", s)
	}
	return d, checkAmount("amount", d)
}

func checkAmount(field string, d decimal.Decimal) error {
	if !d.IsPositive() {
		return invalid(field, "must be greater than 0")
	}
	if d.GreaterThan(MaxAmount) {
		return invalid(field, "must not exceed %s", MaxAmount.String())
	}
	if !d.Equal(d.Round(2)) {
		return invalid(field, "at most 2 decimal places allowed")
	}
	return nil
}

// ToCents converts an amount to integer minor units.
func ToCents(d decimal.Decimal) int64 {
	return d.Mul(hundred).Round(0).IntPart()
}

// FromCents converts integer minor units back to an amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

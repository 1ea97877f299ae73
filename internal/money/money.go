// Package money provides currency-aware rounding for amounts.
//
// All amounts are shopspring decimals. Splitting and balance arithmetic
// happens in the minor unit of a currency (cents for CHF, whole yen for JPY)
// so that no fraction below the smallest denomination can accumulate.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxMinorUnits bounds the magnitude of any amount in minor units
// (10^13 CHF). Sums over thousands of participants stay within int64.
const MaxMinorUnits = 1_000_000_000_000_000

var (
	ErrUnknownCurrency  = errors.New("unknown currency")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrAmountOutOfRange = errors.New("amount out of range")
)

var maxMinor = decimal.NewFromInt(MaxMinorUnits)

// Currency is an ISO 4217 currency with the number of digits of its minor unit.
type Currency struct {
	Code     string
	Exponent int32
}

// CHF is the default ledger currency.
var CHF = Currency{Code: "CHF", Exponent: 2}

var currencies = map[string]int32{
	"AUD": 2, "BRL": 2, "CAD": 2, "CHF": 2, "CNY": 2, "CZK": 2, "DKK": 2,
	"EUR": 2, "GBP": 2, "HKD": 2, "INR": 2, "MXN": 2, "NOK": 2, "NZD": 2,
	"PLN": 2, "SEK": 2, "SGD": 2, "USD": 2, "ZAR": 2,
	"CLP": 0, "ISK": 0, "JPY": 0, "KRW": 0, "VND": 0,
	"BHD": 3, "JOD": 3, "KWD": 3, "OMR": 3, "TND": 3,
}

// Lookup returns the currency registered for code (case-insensitive).
func Lookup(code string) (Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	exp, ok := currencies[code]
	if !ok {
		return Currency{}, fmt.Errorf("%w: %q", ErrUnknownCurrency, code)
	}
	return Currency{Code: code, Exponent: exp}, nil
}

// Round rounds d to the minor unit of the currency, half away from zero.
func (c Currency) Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(c.Exponent)
}

// ToMinor converts d to an integer count of minor units after rounding.
// Amounts beyond MaxMinorUnits fail with ErrAmountOutOfRange.
func (c Currency) ToMinor(d decimal.Decimal) (int64, error) {
	minor := c.Round(d).Shift(c.Exponent)
	if minor.Abs().GreaterThan(maxMinor) {
		return 0, fmt.Errorf("%w: %s %s", ErrAmountOutOfRange, d, c.Code)
	}
	return minor.IntPart(), nil
}

// InRange reports whether d can be converted to minor units.
func (c Currency) InRange(d decimal.Decimal) bool {
	_, err := c.ToMinor(d)
	return err == nil
}

// FromMinor converts a count of minor units back to a decimal amount.
func (c Currency) FromMinor(n int64) decimal.Decimal {
	return decimal.New(n, -c.Exponent)
}

// IsRounded reports whether d has no digits below the minor unit.
func (c Currency) IsRounded(d decimal.Decimal) bool {
	return c.Round(d).Equal(d)
}

// Format renders d with exactly the currency's minor digits, e.g. "12.50 CHF".
func (c Currency) Format(d decimal.Decimal) string {
	return c.Round(d).StringFixed(c.Exponent) + " " + c.Code
}

func (c Currency) String() string {
	return c.Code
}

// ParseAmount parses a user-entered amount. Both "12.34" and "12,34" are
// accepted; the result is rounded to the currency's minor unit.
func ParseAmount(s string, c Currency) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return c.Round(d), nil
}

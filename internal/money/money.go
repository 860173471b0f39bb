// Package money holds exact BRL amounts as integer cents.
//
// Every monetary sum, difference and comparison in the repository goes through
// this package; nothing else adds or subtracts money values directly.
package money

import (
	"math"
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Currency is the only currency a shift is kept in.
const Currency = gomoney.BRL

// Amount is a monetary value in cents.
type Amount int64

// Zero is the zero amount.
const Zero Amount = 0

func FromCents(cents int64) Amount {
	return Amount(cents)
}

var (
	maxCents = decimal.NewFromInt(math.MaxInt64)
	minCents = decimal.NewFromInt(math.MinInt64)
)

// FromDecimal rounds d to the nearest cent, ties away from zero. Values that
// do not fit in int64 cents become zero.
func FromDecimal(d decimal.Decimal) Amount {
	cents := d.Round(2).Shift(2)
	if cents.GreaterThan(maxCents) || cents.LessThan(minCents) {
		return Zero
	}
	return Amount(cents.IntPart())
}

// FromFloat converts a float entered by a user. NaN and infinities become zero.
func FromFloat(f float64) Amount {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Zero
	}
	return FromDecimal(decimal.NewFromFloat(f))
}

// Parse reads user input such as "120.50", "120,50", "1.234,56" or "R$ 10,00".
// Without a comma, dots are thousands separators only when every group after
// the first has exactly three digits and the first does not start with 0, so
// "1.234" is 1234.00 while "120.50" and "0.100" keep the dot as decimal point.
// Anything that is not a number becomes zero.
func Parse(raw string) Amount {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "R$")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return Zero
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	} else if isThousandsGrouped(s) {
		s = strings.ReplaceAll(s, ".", "")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero
	}
	return FromDecimal(d)
}

func isThousandsGrouped(s string) bool {
	s = strings.TrimPrefix(s, "-")
	groups := strings.Split(s, ".")
	if len(groups) < 2 || len(groups[0]) == 0 || len(groups[0]) > 3 || groups[0][0] == '0' {
		return false
	}
	for i, g := range groups {
		if i > 0 && len(g) != 3 {
			return false
		}
		for _, r := range g {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}

func (a Amount) Cents() int64 {
	return int64(a)
}

func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -2)
}

// Fixed renders the amount with exactly two fractional digits, e.g. "120.50".
func (a Amount) Fixed() string {
	return a.Decimal().StringFixed(2)
}

// String renders the amount for display, e.g. "R$120,50".
func (a Amount) String() string {
	return gomoney.New(int64(a), Currency).Display()
}

func (a Amount) IsZero() bool     { return a == 0 }
func (a Amount) IsPositive() bool { return a > 0 }
func (a Amount) IsNegative() bool { return a < 0 }

// Add sums any number of amounts. A sum past the int64 range saturates.
func Add(values ...Amount) Amount {
	var total Amount
	for _, v := range values {
		total = addCents(total, v)
	}
	return total
}

func Subtract(a, b Amount) Amount {
	if b == math.MinInt64 {
		return addCents(addCents(a, math.MaxInt64), 1)
	}
	return addCents(a, -b)
}

// Equals compares cent representations.
func Equals(a, b Amount) bool {
	return int64(a) == int64(b)
}

// Sum adds fn(item) over items.
func Sum[T any](items []T, fn func(T) Amount) Amount {
	var total Amount
	for _, item := range items {
		total = addCents(total, fn(item))
	}
	return total
}

func addCents(a, b Amount) Amount {
	switch {
	case b > 0 && a > math.MaxInt64-b:
		return math.MaxInt64
	case b < 0 && a < math.MinInt64-b:
		return math.MinInt64
	}
	return a + b
}

// NonNegative coerces negative input to zero.
func NonNegative(a Amount) Amount {
	if a < 0 {
		return Zero
	}
	return a
}

// Percent returns pct percent of a, rounded to the cent.
func Percent(a Amount, pct decimal.Decimal) Amount {
	return FromDecimal(a.Decimal().Mul(pct).Div(decimal.NewFromInt(100)))
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Fixed()), nil
}

// UnmarshalJSON accepts a JSON number, a quoted number or null. Values that
// cannot be read as a number decode to zero instead of failing the document.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		*a = Zero
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		*a = Parse(strings.Trim(s, `"`))
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		*a = Zero
		return nil
	}
	*a = FromDecimal(d)
	return nil
}

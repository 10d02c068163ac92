// Package types provides the shared monetary and quantity value types.
//
// Monetary values carry full precision through intermediate computation
// and are rounded to 2 fractional digits with banker's rounding only at
// the point a value is persisted or returned. Quantities are whole units.
package types

import (
	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits a persisted or returned
// monetary value carries.
const MoneyScale = 2

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// NewMoneyFromInt creates a Money value from whole currency units.
func NewMoneyFromInt(v int64) Money {
	return decimal.NewFromInt(v)
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// RoundMoney applies the storage rounding policy: scale 2,
// round-half-to-even. Call at persistence/response boundaries only,
// never mid-computation.
func RoundMoney(m Money) Money {
	return m.RoundBank(MoneyScale)
}

// ApplyPercent returns m increased by pct percent at full precision.
// ApplyPercent(m, 10) == m * 1.10.
func ApplyPercent(m Money, pct Money) Money {
	one := decimal.NewFromInt(1)
	hundred := decimal.NewFromInt(100)
	return m.Mul(one.Add(pct.Div(hundred)))
}

// Quantity is a whole-unit item count. The purchase and order models count
// discrete retail units; fractional quantities are not representable.
type Quantity int64

// NewQuantity creates a Quantity from an int64.
func NewQuantity(v int64) Quantity { return Quantity(v) }

func (q Quantity) Int64() int64 { return int64(q) }

func (q Quantity) IsZero() bool { return q == 0 }

func (q Quantity) IsPositive() bool { return q > 0 }

func (q Quantity) IsNegative() bool { return q < 0 }

// Add returns q + other.
func (q Quantity) Add(other Quantity) Quantity { return q + other }

// Sub returns q - other.
func (q Quantity) Sub(other Quantity) Quantity { return q - other }

// Decimal converts the quantity for use in monetary arithmetic.
func (q Quantity) Decimal() decimal.Decimal {
	return decimal.NewFromInt(int64(q))
}

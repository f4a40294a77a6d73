// Package money holds the integer minor-unit amount type and the line/document
// calculator used for every total in the system.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Cents is an amount in minor currency units.
type Cents int64

var hundred = decimal.NewFromInt(100)

// Add returns c + o.
func (c Cents) Add(o Cents) Cents { return c + o }

// Sub returns c - o.
func (c Cents) Sub(o Cents) Cents { return c - o }

// Decimal returns the amount in major units, e.g. 1209 -> 12.09.
func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// String renders the amount in major units with two decimals.
func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}

// FromDecimal rounds a decimal amount of minor units half away from zero.
func FromDecimal(d decimal.Decimal) Cents {
	return Cents(d.Round(0).IntPart())
}

// ParseMajor parses a major-unit string such as "12.09" into Cents.
func ParseMajor(s string) (Cents, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return FromDecimal(d.Mul(hundred)), nil
}

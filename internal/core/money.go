// Package core holds the domain model and the ledger computation engine.
//
// Everything in this package is a pure function over data owned by the
// caller: no storage handles, no clocks beyond transaction dates, no
// logging. The persistence and presentation layers live elsewhere and
// consume this package's outputs.
package core

import (
	"bytes"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a fixed-point monetary amount in the ledger's base currency.
// Arithmetic goes through decimal so that summing a ledger is exact;
// float64 only appears at presentation boundaries.
type Money struct {
	d decimal.Decimal
}

// NewMoney wraps a decimal value as Money.
func NewMoney(d decimal.Decimal) Money {
	return Money{d: d}
}

// MoneyFromFloat converts a float amount to Money.
func MoneyFromFloat(f float64) Money {
	return Money{d: decimal.NewFromFloat(f)}
}

// MoneyFromInt converts a whole amount of currency units.
func MoneyFromInt(n int64) Money {
	return Money{d: decimal.NewFromInt(n)}
}

// ParseMoney parses a monetary amount from a string. It accepts both dot
// (12.34) and comma (12,34) decimal separators.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidValue
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidValue
	}
	return Money{d: d}, nil
}

func (m Money) Add(n Money) Money { return Money{d: m.d.Add(n.d)} }
func (m Money) Sub(n Money) Money { return Money{d: m.d.Sub(n.d)} }
func (m Money) Neg() Money        { return Money{d: m.d.Neg()} }

func (m Money) Equal(n Money) bool       { return m.d.Equal(n.d) }
func (m Money) LessThan(n Money) bool    { return m.d.LessThan(n.d) }
func (m Money) GreaterThan(n Money) bool { return m.d.GreaterThan(n.d) }
func (m Money) IsZero() bool             { return m.d.IsZero() }
func (m Money) IsPositive() bool         { return m.d.IsPositive() }
func (m Money) IsNegative() bool         { return m.d.IsNegative() }

// Decimal exposes the underlying decimal for ratio computations.
func (m Money) Decimal() decimal.Decimal { return m.d }

// Float64 returns an approximate float value for display purposes.
// Use Money arithmetic for anything that feeds back into the ledger.
func (m Money) Float64() float64 { return m.d.InexactFloat64() }

func (m Money) String() string { return m.d.String() }

// MarshalJSON encodes the amount as a bare JSON number, matching the
// snapshot format produced by earlier versions of the app.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.d.String()), nil
}

// UnmarshalJSON accepts both bare numbers and quoted numeric strings,
// since exported snapshots have carried both over time.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		m.d = decimal.Zero
		return nil
	}
	data = bytes.Trim(data, `"`)
	if len(data) == 0 {
		m.d = decimal.Zero
		return nil
	}
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return ErrInvalidValue
	}
	m.d = d
	return nil
}

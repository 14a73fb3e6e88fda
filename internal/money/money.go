// Package money wraps shopspring/decimal with the two-place rounding used for fees.
package money

import (
	"bytes"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits kept for every amount.
const Places = 2

const (
	// maxInputLen bounds the raw text accepted by Parse.
	maxInputLen = 32
	// Exponent bounds keep rounding and comparison work small for inputs
	// such as "1e10000000".
	minExponent = -maxInputLen
	maxExponent = 10
)

var (
	ErrInvalidFeeFormat = errors.New("fee is not a valid number")
	ErrNegativeAmount   = errors.New("fee must not be negative")
	ErrAmountTooLarge   = errors.New("fee exceeds 9999999999.99")
)

// Max is the largest amount a NUMERIC(12,2) column holds.
var Max = Money{d: decimal.RequireFromString("9999999999.99")}

// Money is a non-floating amount rounded to two decimal places.
type Money struct {
	d decimal.Decimal
}

// Zero is 0.00.
var Zero = Money{d: decimal.Zero}

// FromDecimal rounds d to two places.
func FromDecimal(d decimal.Decimal) Money {
	return Money{d: d.Round(Places)}
}

// FromInt returns a whole amount.
func FromInt(v int64) Money {
	return Money{d: decimal.NewFromInt(v)}
}

// MustParse is Parse for constants and tests.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Parse converts user input such as "1200", "1200.5" or " 99.999 " into Money.
// Non-numeric or overlong input yields ErrInvalidFeeFormat, negative input
// ErrNegativeAmount and anything above Max ErrAmountTooLarge.
func Parse(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxInputLen {
		return Zero, ErrInvalidFeeFormat
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, ErrInvalidFeeFormat
	}
	if exp := d.Exponent(); exp < minExponent || exp > maxExponent {
		return Zero, ErrInvalidFeeFormat
	}
	if d.IsNegative() {
		return Zero, ErrNegativeAmount
	}
	m := FromDecimal(d)
	if m.d.GreaterThan(Max.d) {
		return Zero, ErrAmountTooLarge
	}
	return m, nil
}

func (m Money) Add(o Money) Money {
	return Money{d: m.d.Add(o.d)}
}

func (m Money) Equal(o Money) bool {
	return m.d.Equal(o.d)
}

func (m Money) IsZero() bool {
	return m.d.IsZero()
}

func (m Money) Decimal() decimal.Decimal {
	return m.d
}

// Float64 is used where a spreadsheet cell wants a native number.
func (m Money) Float64() float64 {
	f, _ := m.d.Float64()
	return f
}

// String renders the amount with exactly two decimals, e.g. "2200.00".
func (m Money) String() string {
	return m.d.StringFixed(Places)
}

// MarshalJSON writes a bare JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts both JSON numbers and numeric strings, since fees
// arrive from HTML forms as text.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = Zero
		return nil
	}
	raw := string(bytes.Trim(data, `"`))
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

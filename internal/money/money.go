// Package money converts user-typed currency text into integer cents and
// back. Amounts never pass through binary floating point once parsed.
package money

import (
	"errors"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Cents is an amount in minor currency units.
type Cents int64

// ErrInvalidAmount is returned for empty, malformed, non-finite or
// non-positive input.
var ErrInvalidAmount = errors.New("invalid amount")

// maxInputLen bounds the text handed to the decimal parser. Any real
// amount fits well below it.
const maxInputLen = 32

var (
	hundred  = decimal.NewFromInt(100)
	maxCents = decimal.NewFromInt(int64(^uint64(0) >> 1))
)

// Parse turns text such as "1,50", " 2.00 " or "12" into cents.
//
// All whitespace is removed and the first comma is read as the decimal
// separator. The value is scaled by 100 and rounded half away from zero on
// the exact decimal, so "1,234" is 123 and "1,005" is 101. Text holding more
// than one separator does not parse. Zero and negative results are rejected,
// and so is exponent notation such as "1e5".
func Parse(text string) (Cents, error) {
	normalized := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)
	if normalized == "" || len(normalized) > maxInputLen || strings.ContainsAny(normalized, "eE") {
		return 0, ErrInvalidAmount
	}
	normalized = strings.Replace(normalized, ",", ".", 1)

	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	cents := d.Mul(hundred).Round(0)
	if cents.Sign() <= 0 || cents.GreaterThan(maxCents) {
		return 0, ErrInvalidAmount
	}
	return Cents(cents.IntPart()), nil
}

// FromUnits converts whole currency units to cents.
func FromUnits(units int64) Cents {
	return Cents(units * 100)
}

// Format renders c with exactly two decimals, e.g. 1000 -> "10.00".
func Format(c Cents) string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	frac := strconv.FormatInt(v%100, 10)
	if len(frac) == 1 {
		frac = "0" + frac
	}
	return sign + strconv.FormatInt(v/100, 10) + "." + frac
}

// String implements fmt.Stringer.
func (c Cents) String() string { return Format(c) }

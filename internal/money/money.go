// Package money implements the fixed-point monetary value used across
// all financial domains. Values are immutable once constructed.
package money

import (
	"fmt"
	"strconv"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

const nanosPerUnit = 1_000_000_000

// Wire is the transport representation of a monetary amount. Units travel
// as a decimal-integer string; nanos as a signed fraction of one unit.
type Wire struct {
	CurrencyCode string `json:"currencyCode"`
	Units        string `json:"units"`
	Nanos        int32  `json:"nanos"`
}

// Money is an immutable fixed-point amount: units + nanos/1e9.
// The nanos magnitude is always below 1e9 and its sign agrees with units.
type Money struct {
	Currency string `json:"currencyCode"`
	Units    int64  `json:"units"`
	Nanos    int32  `json:"nanos"`
}

// New builds a normalized Money. Overflowing nanos carry into units and
// mixed signs are reconciled so both components point the same way.
func New(currency string, units int64, nanos int32) Money {
	units += int64(nanos) / nanosPerUnit
	nanos %= nanosPerUnit

	if units > 0 && nanos < 0 {
		units--
		nanos += nanosPerUnit
	} else if units < 0 && nanos > 0 {
		units++
		nanos -= nanosPerUnit
	}

	return Money{Currency: currency, Units: units, Nanos: nanos}
}

// FromWire parses a wire amount. Missing or unparseable units default to
// zero; this never fails because upstream payloads routinely omit fields.
func FromWire(w Wire) Money {
	units, err := strconv.ParseInt(w.Units, 10, 64)
	if err != nil {
		units = 0
	}
	return New(w.CurrencyCode, units, w.Nanos)
}

// FromDecimal converts an exact decimal into a Money, truncating any
// precision beyond nanos.
func FromDecimal(currency string, d decimal.Decimal) Money {
	units := d.IntPart()
	frac := d.Sub(decimal.New(units, 0)).Shift(9)
	return New(currency, units, int32(frac.IntPart()))
}

// ToWire returns the transport representation. FromWire(m.ToWire()) == m.
func (m Money) ToWire() Wire {
	return Wire{
		CurrencyCode: m.Currency,
		Units:        strconv.FormatInt(m.Units, 10),
		Nanos:        m.Nanos,
	}
}

// Decimal returns the exact decimal value units + nanos/1e9.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Units, 0).Add(decimal.New(int64(m.Nanos), -9))
}

func (m Money) IsZero() bool     { return m.Units == 0 && m.Nanos == 0 }
func (m Money) IsNegative() bool { return m.Units < 0 || (m.Units == 0 && m.Nanos < 0) }

// Equal compares the decomposed decimal values, not wire strings.
func (m Money) Equal(n Money) bool {
	return m.Currency == n.Currency && m.Units == n.Units && m.Nanos == n.Nanos
}

// Cmp orders two amounts by value: -1, 0 or +1.
func (m Money) Cmp(n Money) int {
	return m.Decimal().Cmp(n.Decimal())
}

// Add returns m + n. Both amounts must share a currency; an empty currency
// on either side is weak and adopts the other.
func (m Money) Add(n Money) Money {
	return FromDecimal(pickCurrency(m.Currency, n.Currency), m.Decimal().Add(n.Decimal()))
}

// Sub returns m - n.
func (m Money) Sub(n Money) Money {
	return FromDecimal(pickCurrency(m.Currency, n.Currency), m.Decimal().Sub(n.Decimal()))
}

func pickCurrency(a, b string) string {
	if a == "" {
		return b
	}
	return a
}

// symbol resolves the display grapheme for the currency, falling back to
// the raw code when the currency is unknown.
func (m Money) symbol() string {
	if c := gomoney.GetCurrency(m.Currency); c != nil {
		return c.Grapheme
	}
	return m.Currency
}

// String renders the full value with its currency symbol. The sign sits
// ahead of the symbol, matching Compact.
func (m Money) String() string {
	d := m.Decimal().Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	return sign + m.symbol() + d.StringFixed(2)
}

// Indian-system and western banding thresholds for compact display.
var (
	crore    = decimal.New(1, 7)
	lakh     = decimal.New(1, 5)
	thousand = decimal.New(1, 3)
	billion  = decimal.New(1, 9)
	million  = decimal.New(1, 6)
)

// Compact renders a banded short form: lakh/crore for INR, K/M/B
// otherwise. Deterministic; intended for display only.
func (m Money) Compact() string {
	d := m.Decimal()
	abs := d.Abs()
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}

	band := func(div decimal.Decimal, suffix string) string {
		return fmt.Sprintf("%s%s%s%s", sign, m.symbol(), abs.Div(div).Round(2).StringFixed(2), suffix)
	}

	if m.Currency == "INR" {
		switch {
		case abs.GreaterThanOrEqual(crore):
			return band(crore, "Cr")
		case abs.GreaterThanOrEqual(lakh):
			return band(lakh, "L")
		case abs.GreaterThanOrEqual(thousand):
			return band(thousand, "K")
		}
		return sign + m.symbol() + abs.Round(2).StringFixed(2)
	}

	switch {
	case abs.GreaterThanOrEqual(billion):
		return band(billion, "B")
	case abs.GreaterThanOrEqual(million):
		return band(million, "M")
	case abs.GreaterThanOrEqual(thousand):
		return band(thousand, "K")
	}
	return sign + m.symbol() + abs.Round(2).StringFixed(2)
}

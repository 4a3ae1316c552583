package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromWireDefaults(t *testing.T) {
	tests := []struct {
		name  string
		wire  Wire
		units int64
		nanos int32
	}{
		{"missing units", Wire{CurrencyCode: "INR", Nanos: 500_000_000}, 0, 500_000_000},
		{"garbage units", Wire{CurrencyCode: "INR", Units: "abc"}, 0, 0},
		{"missing nanos", Wire{CurrencyCode: "INR", Units: "1250"}, 1250, 0},
		{"empty wire", Wire{}, 0, 0},
		{"negative", Wire{CurrencyCode: "INR", Units: "-42", Nanos: -250_000_000}, -42, -250_000_000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := FromWire(tt.wire)
			assert.Equal(t, tt.units, m.Units)
			assert.Equal(t, tt.nanos, m.Nanos)
		})
	}
}

func TestWireRoundTrip(t *testing.T) {
	values := []Money{
		New("INR", 1250, 500_000_000),
		New("INR", -42, -250_000_000),
		New("USD", 0, 990_000_000),
		New("INR", 0, 0),
		New("EUR", 9_999_999_999, 1),
	}
	for _, m := range values {
		assert.True(t, FromWire(m.ToWire()).Equal(m), "round trip for %+v", m)
	}
}

func TestNewNormalizes(t *testing.T) {
	// Overflowing nanos carry into units.
	m := New("INR", 1, 1_500_000_000)
	assert.Equal(t, int64(2), m.Units)
	assert.Equal(t, int32(500_000_000), m.Nanos)

	// Mixed signs reconcile toward the units sign.
	m = New("INR", 2, -500_000_000)
	assert.Equal(t, int64(1), m.Units)
	assert.Equal(t, int32(500_000_000), m.Nanos)

	m = New("INR", -2, 500_000_000)
	assert.Equal(t, int64(-1), m.Units)
	assert.Equal(t, int32(-500_000_000), m.Nanos)
}

func TestDecimalValue(t *testing.T) {
	m := New("INR", 1250, 500_000_000)
	expected := decimal.RequireFromString("1250.5")
	assert.True(t, m.Decimal().Equal(expected), "got %s", m.Decimal())

	neg := New("INR", -1, -250_000_000)
	assert.True(t, neg.Decimal().Equal(decimal.RequireFromString("-1.25")))
}

func TestFromDecimalRoundTrip(t *testing.T) {
	d := decimal.RequireFromString("98765.432101234")
	m := FromDecimal("INR", d)
	// Truncated to nano precision.
	assert.True(t, m.Decimal().Equal(decimal.RequireFromString("98765.432101234")))
}

func TestArithmetic(t *testing.T) {
	a := New("INR", 100, 250_000_000)
	b := New("INR", 50, 750_000_000)

	sum := a.Add(b)
	assert.True(t, sum.Decimal().Equal(decimal.RequireFromString("151")))

	diff := a.Sub(b)
	assert.True(t, diff.Decimal().Equal(decimal.RequireFromString("49.5")))

	assert.Equal(t, 1, a.Cmp(b))
	assert.Equal(t, -1, b.Cmp(a))
	assert.Equal(t, 0, a.Cmp(a))
}

func TestCompactINRBanding(t *testing.T) {
	tests := []struct {
		units int64
		want  string
	}{
		{25_000_000, "₹2.50Cr"},
		{1_50_000, "₹1.50L"},
		{12_500, "₹12.50K"},
		{950, "₹950.00"},
	}
	for _, tt := range tests {
		m := New("INR", tt.units, 0)
		assert.Equal(t, tt.want, m.Compact())
	}

	neg := New("INR", -1_50_000, 0)
	assert.Equal(t, "-₹1.50L", neg.Compact())
}

func TestStringHoistsSign(t *testing.T) {
	assert.Equal(t, "₹1250.50", New("INR", 1250, 500_000_000).String())
	assert.Equal(t, "-₹1.25", New("INR", -1, -250_000_000).String())
	assert.Equal(t, "-$42.00", New("USD", -42, 0).String())
}

func TestCompactWesternBanding(t *testing.T) {
	require.Equal(t, "$2.50B", New("USD", 2_500_000_000, 0).Compact())
	require.Equal(t, "$1.20M", New("USD", 1_200_000, 0).Compact())
	require.Equal(t, "$3.00K", New("USD", 3_000, 0).Compact())
}

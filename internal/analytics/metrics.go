package analytics

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wealthlens/wealthlens/internal/domain"
	"github.com/wealthlens/wealthlens/internal/money"
)

// AbsoluteReturnPct is (current - invested) / invested * 100, defined as
// zero for a zero invested amount.
func AbsoluteReturnPct(invested, current decimal.Decimal) float64 {
	if invested.IsZero() {
		return 0
	}
	return current.Sub(invested).Div(invested).InexactFloat64() * 100
}

// AnnualizedReturnPct is the CAGR between start and now, in percent.
// Defined as zero when no time has elapsed or nothing was invested.
func AnnualizedReturnPct(invested, current decimal.Decimal, start, now time.Time) float64 {
	if invested.IsZero() {
		return 0
	}
	years := yearsBetween(start, now)
	if years <= 0 {
		return 0
	}
	ratio := current.Div(invested).InexactFloat64()
	if ratio <= 0 {
		return 0
	}
	return (math.Pow(ratio, 1/years) - 1) * 100
}

// SchemeMetrics is the derived, read-only performance record for one
// mutual-fund scheme. XIRRPct is nil when the solver did not converge.
type SchemeMetrics struct {
	SchemeName           string
	Invested             money.Money
	Redeemed             money.Money
	NetInvested          money.Money
	CurrentValue         money.Money
	AbsoluteReturnPct    float64
	AnnualizedReturnPct  float64
	XIRRPct              *float64
	TransactionCount     int
	FirstTransactionDate time.Time
}

// ComputeSchemeMetrics derives the full record for one scheme from its
// transaction history and current valuation.
func ComputeSchemeMetrics(schemeName string, txns []domain.Transaction, currentValue money.Money, now time.Time, cfg SolverConfig) SchemeMetrics {
	invested := decimal.Zero
	redeemed := decimal.Zero
	var first time.Time
	for _, txn := range txns {
		amount := txn.Amount.Decimal().Abs()
		if txn.Type == domain.TxnBuy {
			invested = invested.Add(amount)
		} else {
			redeemed = redeemed.Add(amount)
		}
		if first.IsZero() || txn.Date.Before(first) {
			first = txn.Date
		}
	}

	currency := currentValue.Currency
	m := SchemeMetrics{
		SchemeName:           schemeName,
		Invested:             money.FromDecimal(currency, invested),
		Redeemed:             money.FromDecimal(currency, redeemed),
		NetInvested:          money.FromDecimal(currency, invested.Sub(redeemed)),
		CurrentValue:         currentValue,
		AbsoluteReturnPct:    AbsoluteReturnPct(invested, currentValue.Decimal()),
		AnnualizedReturnPct:  AnnualizedReturnPct(invested, currentValue.Decimal(), first, now),
		TransactionCount:     len(txns),
		FirstTransactionDate: first,
	}

	flows := SeriesFromTransactions(txns, currentValue, now)
	if pct, ok := XIRR(flows, cfg); ok {
		m.XIRRPct = &pct
	}
	return m
}

// Formatted accessors for the presentation layer; it never does
// arithmetic on the raw values.

func (m SchemeMetrics) InvestedDisplay() string     { return m.Invested.Compact() }
func (m SchemeMetrics) CurrentValueDisplay() string { return m.CurrentValue.Compact() }

func (m SchemeMetrics) AbsoluteReturnDisplay() string {
	return signedPct(m.AbsoluteReturnPct)
}

func (m SchemeMetrics) AnnualizedReturnDisplay() string {
	return signedPct(m.AnnualizedReturnPct)
}

// XIRRDisplay renders a placeholder when the rate is indeterminate.
func (m SchemeMetrics) XIRRDisplay() string {
	if m.XIRRPct == nil {
		return "N/A"
	}
	return signedPct(*m.XIRRPct)
}

func signedPct(v float64) string {
	return fmt.Sprintf("%+.2f%%", v)
}

package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wealthlens/wealthlens/internal/domain"
	"github.com/wealthlens/wealthlens/internal/money"
)

// EstimateCurrentValue prices a scheme's holding as net units times the
// latest transaction NAV. It is a stand-in used when no live valuation
// source is available for the scheme.
func EstimateCurrentValue(txns []domain.Transaction) money.Money {
	units := decimal.Zero
	var latestNAV decimal.Decimal
	var latest time.Time
	currency := ""
	for _, txn := range txns {
		if txn.Type == domain.TxnBuy {
			units = units.Add(txn.Units.Abs())
		} else {
			units = units.Sub(txn.Units.Abs())
		}
		if latest.IsZero() || txn.Date.After(latest) {
			latest, latestNAV = txn.Date, txn.NAV
		}
		if currency == "" {
			currency = txn.Amount.Currency
		}
	}
	return money.FromDecimal(currency, units.Mul(latestNAV))
}

// PortfolioSummary aggregates per-scheme metrics into the dashboard read
// model.
type PortfolioSummary struct {
	TotalInvested     money.Money
	TotalCurrentValue money.Money
	SchemeCount       int
	Schemes           []SchemeMetrics
	BestXIRRScheme    string
	WorstXIRRScheme   string
}

// ComputePortfolioSummary derives metrics for every scheme in the
// transaction history. currentValues maps scheme name to its latest
// valuation; schemes without a valuation contribute a zero current value.
func ComputePortfolioSummary(mf domain.MfTransactions, currentValues map[string]money.Money, now time.Time, cfg SolverConfig) PortfolioSummary {
	byScheme := mf.SchemeTransactions()

	summary := PortfolioSummary{SchemeCount: len(byScheme)}
	totalInvested := decimal.Zero
	totalCurrent := decimal.Zero
	currency := ""

	var bestRate, worstRate float64
	for name, txns := range byScheme {
		current := currentValues[name]
		if currency == "" {
			currency = current.Currency
		}

		m := ComputeSchemeMetrics(name, txns, current, now, cfg)
		summary.Schemes = append(summary.Schemes, m)
		totalInvested = totalInvested.Add(m.Invested.Decimal())
		totalCurrent = totalCurrent.Add(current.Decimal())

		if m.XIRRPct == nil {
			continue
		}
		if summary.BestXIRRScheme == "" || *m.XIRRPct > bestRate {
			summary.BestXIRRScheme, bestRate = name, *m.XIRRPct
		}
		if summary.WorstXIRRScheme == "" || *m.XIRRPct < worstRate {
			summary.WorstXIRRScheme, worstRate = name, *m.XIRRPct
		}
	}

	sort.Slice(summary.Schemes, func(i, j int) bool {
		return summary.Schemes[i].SchemeName < summary.Schemes[j].SchemeName
	})
	summary.TotalInvested = money.FromDecimal(currency, totalInvested)
	summary.TotalCurrentValue = money.FromDecimal(currency, totalCurrent)
	return summary
}

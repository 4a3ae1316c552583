// Package analytics derives portfolio performance metrics from
// transaction histories and current valuations. Everything here is a pure
// function; the package owns no state and does no I/O.
package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wealthlens/wealthlens/internal/domain"
	"github.com/wealthlens/wealthlens/internal/money"
)

// CashFlow is one dated flow from the investor's point of view: purchases
// are negative (money out), redemptions and the terminal valuation are
// positive (money in).
type CashFlow struct {
	Date   time.Time
	Amount decimal.Decimal
}

// SeriesFromTransactions builds the cash-flow series for one instrument:
// every transaction becomes a signed flow and exactly one terminal flow
// carries the current valuation dated now. The result is ordered by date.
func SeriesFromTransactions(txns []domain.Transaction, currentValue money.Money, now time.Time) []CashFlow {
	flows := make([]CashFlow, 0, len(txns)+1)
	for _, txn := range txns {
		amount := txn.Amount.Decimal().Abs()
		if txn.Type == domain.TxnBuy {
			amount = amount.Neg()
		}
		flows = append(flows, CashFlow{Date: txn.Date, Amount: amount})
	}
	flows = append(flows, CashFlow{Date: now, Amount: currentValue.Decimal()})

	sort.SliceStable(flows, func(i, j int) bool {
		return flows[i].Date.Before(flows[j].Date)
	})
	return flows
}

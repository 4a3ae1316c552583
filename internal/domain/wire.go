package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wealthlens/wealthlens/internal/money"
)

// Wire shapes mirror the remote JSON schemas. All decoding defaults live
// here and nowhere else:
//   - monetary fields absent or malformed -> zero Money
//   - dates that fail every known layout  -> transaction dates fall back
//     to now, report dates fall back to the zero time
//   - numeric strings that fail to parse  -> zero
//   - an unrecognized order type          -> BUY

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"20060102",
	"02-01-2006",
}

// parseDate tries every known source layout and returns fallback when
// none matches.
func parseDate(s string, fallback time.Time) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return fallback
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

type holdingWire struct {
	Attribute string     `json:"netWorthAttribute"`
	Value     money.Wire `json:"value"`
}

type netWorthWire struct {
	Total       money.Wire    `json:"totalNetWorthValue"`
	Assets      []holdingWire `json:"assetValues"`
	Liabilities []holdingWire `json:"liabilityValues"`
}

type creditAccountWire struct {
	Type     string     `json:"accountType"`
	Lender   string     `json:"subscriberName"`
	Balance  money.Wire `json:"currentBalance"`
	PastDue  money.Wire `json:"amountPastDue"`
	OpenedAt string     `json:"openDate"`
	Status   string     `json:"paymentStatus"`
}

type creditReportWire struct {
	Score            string              `json:"bureauScore"`
	Bureau           string              `json:"bureau"`
	ReportDate       string              `json:"reportDate"`
	TotalOutstanding money.Wire          `json:"totalOutstandingBalance"`
	Accounts         []creditAccountWire `json:"creditAccounts"`
}

type epfAccountWire struct {
	Establishment string     `json:"establishmentName"`
	MemberID      string     `json:"memberId"`
	Balance       money.Wire `json:"balance"`
}

type epfDetailsWire struct {
	CurrentBalance money.Wire       `json:"currentBalance"`
	EmployeeShare  money.Wire       `json:"employeeShare"`
	EmployerShare  money.Wire       `json:"employerShare"`
	PensionShare   money.Wire       `json:"pensionShare"`
	Accounts       []epfAccountWire `json:"uanAccounts"`
}

type transactionWire struct {
	ISIN       string     `json:"isin"`
	SchemeName string     `json:"schemeName"`
	OrderType  string     `json:"externalOrderType"`
	Date       string     `json:"transactionDate"`
	Amount     money.Wire `json:"transactionAmount"`
	Units      string     `json:"transactionUnits"`
	NAV        string     `json:"purchasePrice"`
}

type mfTransactionsWire struct {
	Transactions []transactionWire `json:"transactions"`
}

// Decode is the defensive-parsing boundary: it maps one domain's raw
// response body into a Snapshot. Structurally invalid JSON is the only
// error; field-level problems degrade to the defaults above. now anchors
// date fallbacks so callers control the clock.
func Decode(d Domain, raw []byte, now time.Time) (Snapshot, error) {
	snap := Snapshot{Domain: d}

	switch d {
	case NetWorthDomain:
		var w netWorthWire
		if err := json.Unmarshal(raw, &w); err != nil {
			return Snapshot{}, fmt.Errorf("decode %s: %w", d, err)
		}
		nw := &NetWorth{Total: money.FromWire(w.Total)}
		for _, h := range w.Assets {
			nw.Assets = append(nw.Assets, Holding{Kind: h.Attribute, Value: money.FromWire(h.Value)})
		}
		for _, h := range w.Liabilities {
			nw.Liabilities = append(nw.Liabilities, Holding{Kind: h.Attribute, Value: money.FromWire(h.Value)})
		}
		snap.NetWorth = nw

	case CreditReportDomain:
		var w creditReportWire
		if err := json.Unmarshal(raw, &w); err != nil {
			return Snapshot{}, fmt.Errorf("decode %s: %w", d, err)
		}
		score, err := strconv.Atoi(w.Score)
		if err != nil {
			score = 0
		}
		cr := &CreditReport{
			Score:            score,
			Bureau:           w.Bureau,
			ReportedAt:       parseDate(w.ReportDate, time.Time{}),
			TotalOutstanding: money.FromWire(w.TotalOutstanding),
		}
		for _, a := range w.Accounts {
			cr.Accounts = append(cr.Accounts, CreditAccount{
				Type:         a.Type,
				Lender:       a.Lender,
				Balance:      money.FromWire(a.Balance),
				PastDue:      money.FromWire(a.PastDue),
				OpenedAt:     parseDate(a.OpenedAt, time.Time{}),
				IsDelinquent: a.Status == "DELINQUENT",
			})
		}
		snap.CreditReport = cr

	case EpfDetailsDomain:
		var w epfDetailsWire
		if err := json.Unmarshal(raw, &w); err != nil {
			return Snapshot{}, fmt.Errorf("decode %s: %w", d, err)
		}
		epf := &EpfDetails{
			CurrentBalance: money.FromWire(w.CurrentBalance),
			EmployeeShare:  money.FromWire(w.EmployeeShare),
			EmployerShare:  money.FromWire(w.EmployerShare),
			PensionShare:   money.FromWire(w.PensionShare),
		}
		for _, a := range w.Accounts {
			epf.Accounts = append(epf.Accounts, EpfAccount{
				Establishment: a.Establishment,
				MemberID:      a.MemberID,
				Balance:       money.FromWire(a.Balance),
			})
		}
		snap.EpfDetails = epf

	case MfTransactionsDomain:
		var w mfTransactionsWire
		if err := json.Unmarshal(raw, &w); err != nil {
			return Snapshot{}, fmt.Errorf("decode %s: %w", d, err)
		}
		mf := &MfTransactions{}
		for _, t := range w.Transactions {
			txnType := TxnBuy
			if t.OrderType == "SELL" || t.OrderType == "REDEMPTION" {
				txnType = TxnSell
			}
			mf.Transactions = append(mf.Transactions, Transaction{
				ISIN:       t.ISIN,
				SchemeName: t.SchemeName,
				Type:       txnType,
				Date:       parseDate(t.Date, now),
				Amount:     money.FromWire(t.Amount),
				Units:      parseDecimal(t.Units),
				NAV:        parseDecimal(t.NAV),
			})
		}
		snap.MfTransactions = mf

	default:
		return Snapshot{}, fmt.Errorf("%w: %q", ErrUnknownDomain, d)
	}

	return snap, nil
}

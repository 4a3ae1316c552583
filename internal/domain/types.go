package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wealthlens/wealthlens/internal/money"
)

// Holding is one asset or liability line inside a net-worth report.
type Holding struct {
	Kind  string      `json:"kind"`
	Value money.Money `json:"value"`
}

// NetWorth is the consolidated position across all linked accounts.
type NetWorth struct {
	Total       money.Money `json:"total"`
	Assets      []Holding   `json:"assets"`
	Liabilities []Holding   `json:"liabilities"`
}

// CreditAccount is one tradeline in a credit report.
type CreditAccount struct {
	Type         string      `json:"type"`
	Lender       string      `json:"lender"`
	Balance      money.Money `json:"balance"`
	PastDue      money.Money `json:"pastDue"`
	OpenedAt     time.Time   `json:"openedAt"`
	IsDelinquent bool        `json:"isDelinquent"`
}

// CreditReport is the bureau snapshot for the user.
type CreditReport struct {
	Score            int             `json:"score"`
	Bureau           string          `json:"bureau"`
	ReportedAt       time.Time       `json:"reportedAt"`
	TotalOutstanding money.Money     `json:"totalOutstanding"`
	Accounts         []CreditAccount `json:"accounts"`
}

// EpfAccount is one establishment's retirement-fund account.
type EpfAccount struct {
	Establishment string      `json:"establishment"`
	MemberID      string      `json:"memberId"`
	Balance       money.Money `json:"balance"`
}

// EpfDetails is the retirement-fund position across establishments.
type EpfDetails struct {
	CurrentBalance money.Money  `json:"currentBalance"`
	EmployeeShare  money.Money  `json:"employeeShare"`
	EmployerShare  money.Money  `json:"employerShare"`
	PensionShare   money.Money  `json:"pensionShare"`
	Accounts       []EpfAccount `json:"accounts"`
}

// TxnType classifies a mutual-fund transaction's direction.
type TxnType string

const (
	TxnBuy  TxnType = "BUY"
	TxnSell TxnType = "SELL"
)

// Transaction is one dated mutual-fund order. Amount is always positive;
// the direction lives in Type.
type Transaction struct {
	ISIN       string          `json:"isin"`
	SchemeName string          `json:"schemeName"`
	Type       TxnType         `json:"type"`
	Date       time.Time       `json:"date"`
	Amount     money.Money     `json:"amount"`
	Units      decimal.Decimal `json:"units"`
	NAV        decimal.Decimal `json:"nav"`
}

// MfTransactions is the full mutual-fund order history.
type MfTransactions struct {
	Transactions []Transaction `json:"transactions"`
}

// SchemeTransactions groups the history by scheme name, preserving the
// original per-scheme order.
func (m MfTransactions) SchemeTransactions() map[string][]Transaction {
	byScheme := make(map[string][]Transaction)
	for _, txn := range m.Transactions {
		byScheme[txn.SchemeName] = append(byScheme[txn.SchemeName], txn)
	}
	return byScheme
}

// Snapshot is the decoded payload of exactly one domain. A single pointer
// is set according to Domain; the zero Snapshot carries no data.
type Snapshot struct {
	Domain         Domain          `json:"domain"`
	NetWorth       *NetWorth       `json:"netWorth,omitempty"`
	CreditReport   *CreditReport   `json:"creditReport,omitempty"`
	EpfDetails     *EpfDetails     `json:"epfDetails,omitempty"`
	MfTransactions *MfTransactions `json:"mfTransactions,omitempty"`
}

// HasData reports whether the snapshot carries a decoded payload for its
// declared domain.
func (s Snapshot) HasData() bool {
	switch s.Domain {
	case NetWorthDomain:
		return s.NetWorth != nil
	case CreditReportDomain:
		return s.CreditReport != nil
	case EpfDetailsDomain:
		return s.EpfDetails != nil
	case MfTransactionsDomain:
		return s.MfTransactions != nil
	}
	return false
}

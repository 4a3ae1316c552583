// Package domain defines the four financial-data domains, their payload
// types, and the single defensive-parsing boundary that maps wire JSON
// into them.
package domain

import "fmt"

// Domain identifies one independently fetched, cached and failed
// financial-data category. The string value doubles as the cache key.
type Domain string

const (
	NetWorthDomain       Domain = "net_worth"
	CreditReportDomain   Domain = "credit_report"
	EpfDetailsDomain     Domain = "epf_details"
	MfTransactionsDomain Domain = "mf_transactions"
)

// All returns the closed set of domains in a stable order.
func All() []Domain {
	return []Domain{NetWorthDomain, CreditReportDomain, EpfDetailsDomain, MfTransactionsDomain}
}

// Count is the number of domains an aggregate sync covers.
const Count = 4

// Known reports whether d is one of the closed enum values.
func (d Domain) Known() bool {
	switch d {
	case NetWorthDomain, CreditReportDomain, EpfDetailsDomain, MfTransactionsDomain:
		return true
	}
	return false
}

// Endpoint returns the remote sync path for the domain.
func (d Domain) Endpoint() string {
	return "/fetch_" + string(d)
}

func (d Domain) String() string { return string(d) }

// ErrUnknownDomain is returned when a free-form string does not name a
// known domain.
var ErrUnknownDomain = fmt.Errorf("unknown financial domain")

// Parse converts a free-form string into a Domain.
func Parse(s string) (Domain, error) {
	d := Domain(s)
	if !d.Known() {
		return "", fmt.Errorf("%w: %q", ErrUnknownDomain, s)
	}
	return d, nil
}

package syncer

import (
	"sort"
	"time"

	"github.com/wealthlens/wealthlens/internal/domain"
)

// AggregateStatus is the per-domain availability snapshot after an
// aggregate sync. Persisted whole under the service_status key and
// overwritten on every run.
type AggregateStatus struct {
	Availability map[domain.Domain]bool `json:"availability"`
	SyncedAt     time.Time              `json:"syncedAt"`
}

// AvailabilityPercentage is availableCount / totalDomains in [0, 1].
func (s AggregateStatus) AvailabilityPercentage() float64 {
	if len(s.Availability) == 0 {
		return 0
	}
	available := 0
	for _, ok := range s.Availability {
		if ok {
			available++
		}
	}
	return float64(available) / float64(domain.Count)
}

// UnavailableDomains lists the domains that produced no data, in a stable
// order.
func (s AggregateStatus) UnavailableDomains() []domain.Domain {
	var out []domain.Domain
	for d, ok := range s.Availability {
		if !ok {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// AggregateResult bundles the four per-domain results with the computed
// status snapshot.
type AggregateResult struct {
	Results map[domain.Domain]Result
	Status  AggregateStatus
}

// AnySuccessful reports whether at least one domain produced data, fresh
// or cached. False means a total outage.
func (a AggregateResult) AnySuccessful() bool {
	for _, r := range a.Results {
		if r.HasData() {
			return true
		}
	}
	return false
}

// AllSuccessful reports whether every domain produced data.
func (a AggregateResult) AllSuccessful() bool {
	if len(a.Results) < domain.Count {
		return false
	}
	for _, r := range a.Results {
		if !r.HasData() {
			return false
		}
	}
	return true
}

// SuccessCount is the number of domains that produced data.
func (a AggregateResult) SuccessCount() int {
	count := 0
	for _, r := range a.Results {
		if r.HasData() {
			count++
		}
	}
	return count
}

// Errors collects the non-empty failure messages across domains, in a
// stable domain order.
func (a AggregateResult) Errors() []string {
	var out []string
	for _, d := range domain.All() {
		if r, ok := a.Results[d]; ok && r.Err != "" {
			out = append(out, r.Err)
		}
	}
	return out
}

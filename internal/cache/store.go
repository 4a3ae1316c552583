// Package cache persists the last-known-good payload per domain plus the
// bookkeeping the sync repository needs (last global sync, last aggregate
// status snapshot). Validity is a lazy TTL predicate; nothing evicts in
// the background.
package cache

import (
	"encoding/json"
	"time"

	"github.com/wealthlens/wealthlens/internal/domain"
)

// DefaultTTL is how long a cached payload stays valid without a refresh.
const DefaultTTL = 24 * time.Hour

// MetaKey names a non-domain slot in the store.
type MetaKey string

const (
	// MetaLastUpdate holds the timestamp of the last aggregate sync.
	MetaLastUpdate MetaKey = "last_update"
	// MetaServiceStatus holds the last AggregateStatus snapshot.
	MetaServiceStatus MetaKey = "service_status"
)

// Entry is one domain's cached payload. Written whole or not at all.
type Entry struct {
	Domain   domain.Domain   `json:"domain"`
	Payload  json.RawMessage `json:"payload"`
	SyncedAt time.Time       `json:"syncedAt"`
}

// ValidAt reports whether the entry is still within its TTL at the given
// instant.
func (e Entry) ValidAt(now time.Time, ttl time.Duration) bool {
	if e.SyncedAt.IsZero() {
		return false
	}
	return now.Sub(e.SyncedAt) < ttl
}

// Snapshot decodes the cached payload back into a domain snapshot. A
// corrupt payload reads as absent, never as an error.
func (e Entry) Snapshot() (domain.Snapshot, bool) {
	var snap domain.Snapshot
	if err := json.Unmarshal(e.Payload, &snap); err != nil {
		return domain.Snapshot{}, false
	}
	if !snap.HasData() {
		return domain.Snapshot{}, false
	}
	return snap, true
}

// Store is the typed key-value abstraction over local storage. Get on a
// corrupt or missing entry reports a miss rather than failing; Set stamps
// SyncedAt and replaces the whole payload.
type Store interface {
	Get(d domain.Domain) (Entry, bool)
	Set(d domain.Domain, snap domain.Snapshot) error
	GetMeta(key MetaKey) ([]byte, bool)
	SetMeta(key MetaKey, v any) error
	ClearAll() error
}

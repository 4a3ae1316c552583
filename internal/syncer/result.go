// Package syncer orchestrates the remote source client and the cache
// store per domain: cache-first reads, forced refreshes, and fail-to-cache
// fallback, plus the concurrent aggregate refresh across all domains.
package syncer

import (
	"time"

	"github.com/wealthlens/wealthlens/internal/domain"
)

// Origin says where a result's data came from.
type Origin int

const (
	// OriginNone means no data was available at all.
	OriginNone Origin = iota
	// OriginFresh means the data came from a successful live fetch.
	OriginFresh
	// OriginCache means the data was served from the local store.
	OriginCache
)

func (o Origin) String() string {
	switch o {
	case OriginFresh:
		return "fresh"
	case OriginCache:
		return "cache"
	default:
		return "none"
	}
}

// Result is the outcome of one domain sync. Ephemeral: recomputed per
// call, never persisted.
type Result struct {
	Domain   domain.Domain
	Data     *domain.Snapshot
	Origin   Origin
	Degraded bool   // live fetch failed, cached data substituted
	Err      string // failure message, empty on success
	SyncedAt time.Time
}

// Read accessors for the presentation layer.

func (r Result) HasData() bool          { return r.Data != nil }
func (r Result) IsFromCache() bool      { return r.Origin == OriginCache }
func (r Result) LastUpdated() time.Time { return r.SyncedAt }
func (r Result) Error() string          { return r.Err }

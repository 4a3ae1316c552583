package syncer

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wealthlens/wealthlens/internal/cache"
	"github.com/wealthlens/wealthlens/internal/domain"
)

// RemoteClient is the slice of the remote package the repository needs;
// tests substitute a fake.
type RemoteClient interface {
	Fetch(ctx context.Context, d domain.Domain) (domain.Snapshot, error)
}

// Config carries the repository's construction parameters.
type Config struct {
	Client RemoteClient
	Store  cache.Store
	TTL    time.Duration // zero falls back to cache.DefaultTTL
	Logger *zap.Logger
}

// Repository coordinates cache and remote per domain. It is safe for
// concurrent use; per-domain flow stays strictly sequential within one
// Sync call.
type Repository struct {
	client RemoteClient
	store  cache.Store
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewRepository builds a repository from explicit dependencies. No
// globals: tests wire fakes straight in.
func NewRepository(cfg Config) *Repository {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{
		client: cfg.Client,
		store:  cfg.Store,
		ttl:    ttl,
		logger: logger.Named("syncer"),
		now:    time.Now,
	}
}

// WithClock substitutes the time source. Test hook.
func (r *Repository) WithClock(now func() time.Time) *Repository {
	r.now = now
	return r
}

// Sync resolves one domain: valid cache wins unless forceRefresh, a live
// fetch refreshes the cache, and a failed fetch falls back to any cached
// entry regardless of its age. Only a failure with no cache at all is a
// hard miss.
func (r *Repository) Sync(ctx context.Context, d domain.Domain, forceRefresh bool) Result {
	now := r.now()

	if !forceRefresh {
		if entry, ok := r.store.Get(d); ok && entry.ValidAt(now, r.ttl) {
			if snap, ok := entry.Snapshot(); ok {
				return Result{
					Domain:   d,
					Data:     &snap,
					Origin:   OriginCache,
					SyncedAt: entry.SyncedAt,
				}
			}
		}
	}

	snap, err := r.client.Fetch(ctx, d)
	if err == nil {
		if setErr := r.store.Set(d, snap); setErr != nil {
			r.logger.Warn("cache write failed",
				zap.String("domain", d.String()), zap.Error(setErr))
		}
		return Result{Domain: d, Data: &snap, Origin: OriginFresh, SyncedAt: r.now()}
	}

	r.logger.Warn("live fetch failed, trying cache fallback",
		zap.String("domain", d.String()), zap.Error(err))

	// Staleness does not matter here: degraded data beats no data.
	if entry, ok := r.store.Get(d); ok {
		if cached, ok := entry.Snapshot(); ok {
			return Result{
				Domain:   d,
				Data:     &cached,
				Origin:   OriginCache,
				Degraded: true,
				Err:      err.Error(),
				SyncedAt: entry.SyncedAt,
			}
		}
	}

	return Result{Domain: d, Origin: OriginNone, Err: err.Error()}
}

// SyncAll refreshes every domain concurrently and joins on all of them;
// one domain's failure never short-circuits the others. The computed
// status snapshot and the last-update timestamp are persisted before
// returning.
func (r *Repository) SyncAll(ctx context.Context, forceRefresh bool) AggregateResult {
	var mu sync.Mutex
	results := make(map[domain.Domain]Result, domain.Count)

	g, gCtx := errgroup.WithContext(ctx)
	for _, d := range domain.All() {
		g.Go(func() error {
			res := r.Sync(gCtx, d, forceRefresh)
			mu.Lock()
			results[d] = res
			mu.Unlock()
			return nil // failures are carried in the Result, never here
		})
	}
	// Err is always nil by construction; Wait only joins the goroutines.
	_ = g.Wait()

	now := r.now()
	status := AggregateStatus{
		Availability: make(map[domain.Domain]bool, domain.Count),
		SyncedAt:     now,
	}
	for d, res := range results {
		status.Availability[d] = res.HasData()
	}

	if err := r.store.SetMeta(cache.MetaServiceStatus, status); err != nil {
		r.logger.Warn("status snapshot write failed", zap.Error(err))
	}
	if err := r.store.SetMeta(cache.MetaLastUpdate, now); err != nil {
		r.logger.Warn("last-update write failed", zap.Error(err))
	}

	agg := AggregateResult{Results: results, Status: status}
	r.logger.Info("aggregate sync finished",
		zap.Int("available", agg.SuccessCount()),
		zap.Int("total", domain.Count),
		zap.Bool("force_refresh", forceRefresh),
		zap.Strings("errors", agg.Errors()))
	return agg
}

// LastStatus reads back the persisted status snapshot from the store.
func (r *Repository) LastStatus() (AggregateStatus, bool) {
	raw, ok := r.store.GetMeta(cache.MetaServiceStatus)
	if !ok {
		return AggregateStatus{}, false
	}
	var status AggregateStatus
	if err := unmarshalMeta(raw, &status); err != nil {
		return AggregateStatus{}, false
	}
	return status, true
}

// LastUpdate reads back the persisted last aggregate sync timestamp.
func (r *Repository) LastUpdate() (time.Time, bool) {
	raw, ok := r.store.GetMeta(cache.MetaLastUpdate)
	if !ok {
		return time.Time{}, false
	}
	var t time.Time
	if err := unmarshalMeta(raw, &t); err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ClearCache wipes every persisted key.
func (r *Repository) ClearCache() error {
	return r.store.ClearAll()
}

func unmarshalMeta(raw []byte, v any) error {
	return json.Unmarshal(raw, v)
}

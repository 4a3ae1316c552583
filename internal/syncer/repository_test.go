package syncer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wealthlens/wealthlens/internal/cache"
	"github.com/wealthlens/wealthlens/internal/domain"
	"github.com/wealthlens/wealthlens/internal/money"
)

// fakeClient scripts per-domain outcomes and counts calls.
type fakeClient struct {
	mu       sync.Mutex
	failures map[domain.Domain]error
	calls    map[domain.Domain]int
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		failures: make(map[domain.Domain]error),
		calls:    make(map[domain.Domain]int),
	}
}

func (f *fakeClient) Fetch(_ context.Context, d domain.Domain) (domain.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[d]++
	if err, ok := f.failures[d]; ok {
		return domain.Snapshot{}, err
	}
	return snapshotFor(d), nil
}

func (f *fakeClient) callCount(d domain.Domain) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[d]
}

func snapshotFor(d domain.Domain) domain.Snapshot {
	snap := domain.Snapshot{Domain: d}
	switch d {
	case domain.NetWorthDomain:
		snap.NetWorth = &domain.NetWorth{Total: money.New("INR", 100000, 0)}
	case domain.CreditReportDomain:
		snap.CreditReport = &domain.CreditReport{Score: 746}
	case domain.EpfDetailsDomain:
		snap.EpfDetails = &domain.EpfDetails{CurrentBalance: money.New("INR", 50000, 0)}
	case domain.MfTransactionsDomain:
		snap.MfTransactions = &domain.MfTransactions{}
	}
	return snap
}

func newTestRepo(client RemoteClient, store cache.Store) *Repository {
	return NewRepository(Config{Client: client, Store: store})
}

func TestSyncFreshFetchPopulatesCache(t *testing.T) {
	client := newFakeClient()
	store := cache.NewMemoryStore()
	repo := newTestRepo(client, store)

	res := repo.Sync(context.Background(), domain.NetWorthDomain, false)
	require.True(t, res.HasData())
	assert.Equal(t, OriginFresh, res.Origin)
	assert.False(t, res.Degraded)
	assert.Empty(t, res.Error())

	_, ok := store.Get(domain.NetWorthDomain)
	assert.True(t, ok)
}

func TestSyncServesValidCacheWithoutFetch(t *testing.T) {
	client := newFakeClient()
	store := cache.NewMemoryStore()
	repo := newTestRepo(client, store)

	repo.Sync(context.Background(), domain.NetWorthDomain, false)
	require.Equal(t, 1, client.callCount(domain.NetWorthDomain))

	// One hour later the entry is still valid: no live call.
	repo.WithClock(func() time.Time { return time.Now().Add(time.Hour) })
	res := repo.Sync(context.Background(), domain.NetWorthDomain, false)
	assert.Equal(t, OriginCache, res.Origin)
	assert.False(t, res.Degraded)
	assert.True(t, res.IsFromCache())
	assert.Equal(t, 1, client.callCount(domain.NetWorthDomain))
}

func TestSyncRefetchesExpiredCache(t *testing.T) {
	client := newFakeClient()
	store := cache.NewMemoryStore()
	repo := newTestRepo(client, store)

	repo.Sync(context.Background(), domain.NetWorthDomain, false)

	// 25 hours later the 24h TTL has lapsed: a live fetch happens.
	repo.WithClock(func() time.Time { return time.Now().Add(25 * time.Hour) })
	res := repo.Sync(context.Background(), domain.NetWorthDomain, false)
	assert.Equal(t, OriginFresh, res.Origin)
	assert.Equal(t, 2, client.callCount(domain.NetWorthDomain))
}

func TestSyncForceRefreshSkipsCache(t *testing.T) {
	client := newFakeClient()
	repo := newTestRepo(client, cache.NewMemoryStore())

	repo.Sync(context.Background(), domain.NetWorthDomain, false)
	repo.Sync(context.Background(), domain.NetWorthDomain, true)
	assert.Equal(t, 2, client.callCount(domain.NetWorthDomain))
}

func TestSyncFailureFallsBackToStaleCache(t *testing.T) {
	client := newFakeClient()
	store := cache.NewMemoryStore()
	repo := newTestRepo(client, store)

	repo.Sync(context.Background(), domain.NetWorthDomain, false)

	client.failures[domain.NetWorthDomain] = errors.New("upstream down")
	repo.WithClock(func() time.Time { return time.Now().Add(48 * time.Hour) })

	res := repo.Sync(context.Background(), domain.NetWorthDomain, true)
	require.True(t, res.HasData())
	assert.Equal(t, OriginCache, res.Origin)
	assert.True(t, res.Degraded)
	assert.Contains(t, res.Error(), "upstream down")
	assert.Equal(t, int64(100000), res.Data.NetWorth.Total.Units)
}

func TestSyncFailureWithoutCacheIsHardMiss(t *testing.T) {
	client := newFakeClient()
	client.failures[domain.CreditReportDomain] = errors.New("no connection")
	repo := newTestRepo(client, cache.NewMemoryStore())

	res := repo.Sync(context.Background(), domain.CreditReportDomain, false)
	assert.False(t, res.HasData())
	assert.Equal(t, OriginNone, res.Origin)
	assert.False(t, res.Degraded)
	assert.NotEmpty(t, res.Error())
}

func TestSyncAllIsolatesDomainFailures(t *testing.T) {
	client := newFakeClient()
	client.failures[domain.EpfDetailsDomain] = errors.New("epf timeout")
	repo := newTestRepo(client, cache.NewMemoryStore())

	agg := repo.SyncAll(context.Background(), false)

	require.Len(t, agg.Results, domain.Count)
	assert.True(t, agg.AnySuccessful())
	assert.False(t, agg.AllSuccessful())
	assert.Equal(t, 3, agg.SuccessCount())
	require.Len(t, agg.Errors(), 1)
	assert.Contains(t, agg.Errors()[0], "epf timeout")

	assert.False(t, agg.Status.Availability[domain.EpfDetailsDomain])
	assert.True(t, agg.Status.Availability[domain.NetWorthDomain])
	assert.Equal(t, []domain.Domain{domain.EpfDetailsDomain}, agg.Status.UnavailableDomains())
}

func TestSyncAllPersistsStatusAndLastUpdate(t *testing.T) {
	repo := newTestRepo(newFakeClient(), cache.NewMemoryStore())
	repo.SyncAll(context.Background(), false)

	status, ok := repo.LastStatus()
	require.True(t, ok)
	assert.Equal(t, 1.0, status.AvailabilityPercentage())

	_, ok = repo.LastUpdate()
	assert.True(t, ok)
}

func TestAvailabilityPercentageSteps(t *testing.T) {
	for successCount := 0; successCount <= domain.Count; successCount++ {
		client := newFakeClient()
		for i, d := range domain.All() {
			if i >= successCount {
				client.failures[d] = errors.New("down")
			}
		}
		repo := newTestRepo(client, cache.NewMemoryStore())

		agg := repo.SyncAll(context.Background(), false)
		assert.Equal(t, successCount, agg.SuccessCount())
		assert.InDelta(t, float64(successCount)/float64(domain.Count),
			agg.Status.AvailabilityPercentage(), 1e-9)
		assert.Equal(t, successCount > 0, agg.AnySuccessful())
		assert.Equal(t, successCount == domain.Count, agg.AllSuccessful())
	}
}

func TestClearCache(t *testing.T) {
	client := newFakeClient()
	store := cache.NewMemoryStore()
	repo := newTestRepo(client, store)

	repo.SyncAll(context.Background(), false)
	require.NoError(t, repo.ClearCache())

	_, ok := store.Get(domain.NetWorthDomain)
	assert.False(t, ok)
	_, ok = repo.LastStatus()
	assert.False(t, ok)
}

package cache

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/wealthlens/wealthlens/internal/domain"
)

// MemoryStore is the in-process Store used by tests and the offline demo
// mode. Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[domain.Domain]Entry
	meta    map[MetaKey][]byte
	now     func() time.Time
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[domain.Domain]Entry),
		meta:    make(map[MetaKey][]byte),
		now:     time.Now,
	}
}

// WithClock substitutes the time source. Test hook.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) Get(d domain.Domain) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[d]
	return e, ok
}

func (s *MemoryStore) Set(d domain.Domain, snap domain.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", d, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[d] = Entry{Domain: d, Payload: payload, SyncedAt: s.now()}
	return nil
}

func (s *MemoryStore) GetMeta(key MetaKey) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, ok := s.meta[key]
	return raw, ok
}

func (s *MemoryStore) SetMeta(key MetaKey, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal meta %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.meta[key] = raw
	return nil
}

func (s *MemoryStore) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[domain.Domain]Entry)
	s.meta = make(map[MetaKey][]byte)
	return nil
}

package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wealthlens/wealthlens/internal/domain"
)

// FileStore is the persistent local Store: one JSON file per key under a
// single directory. Writes go through a temp file and rename so an entry
// is never partially written.
type FileStore struct {
	dir    string
	logger *zap.Logger
	mu     sync.Mutex
	now    func() time.Time
}

// NewFileStore creates the cache directory if needed and returns a store
// over it.
func NewFileStore(dir string, logger *zap.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{dir: dir, logger: logger.Named("cache"), now: time.Now}, nil
}

// WithClock substitutes the time source. Test hook.
func (s *FileStore) WithClock(now func() time.Time) *FileStore {
	s.now = now
	return s
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *FileStore) Get(d domain.Domain) (Entry, bool) {
	raw, err := os.ReadFile(s.path(d.String()))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("unreadable cache entry treated as miss",
				zap.String("domain", d.String()), zap.Error(err))
		}
		return Entry{}, false
	}

	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		// Corrupt on disk: downgrade to a miss so the caller refetches.
		s.logger.Warn("corrupt cache entry treated as miss",
			zap.String("domain", d.String()), zap.Error(err))
		return Entry{}, false
	}

	// The file's declared domain is free-form on disk; a tampered or
	// misplaced entry reads as a miss.
	if parsed, err := domain.Parse(string(e.Domain)); err != nil || parsed != d {
		s.logger.Warn("mismatched cache entry domain treated as miss",
			zap.String("domain", d.String()),
			zap.String("entry_domain", string(e.Domain)))
		return Entry{}, false
	}
	return e, true
}

func (s *FileStore) Set(d domain.Domain, snap domain.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", d, err)
	}
	entry := Entry{Domain: d, Payload: payload, SyncedAt: s.now()}
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal %s entry: %w", d, err)
	}
	return s.writeAtomic(d.String(), raw)
}

func (s *FileStore) GetMeta(key MetaKey) ([]byte, bool) {
	raw, err := os.ReadFile(s.path(string(key)))
	if err != nil {
		return nil, false
	}
	return raw, true
}

func (s *FileStore) SetMeta(key MetaKey, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal meta %s: %w", key, err)
	}
	return s.writeAtomic(string(key), raw)
}

func (s *FileStore) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, domain.Count+2)
	for _, d := range domain.All() {
		keys = append(keys, d.String())
	}
	keys = append(keys, string(MetaLastUpdate), string(MetaServiceStatus))

	for _, key := range keys {
		if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("clear %s: %w", key, err)
		}
	}
	return nil
}

func (s *FileStore) writeAtomic(key string, raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, key+".tmp-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

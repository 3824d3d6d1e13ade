package adapter

import (
	"context"
	"sync"
	"time"

	"studykit/internal/domain"
)

// sweepInterval bounds how often Set walks the map for expired entries.
const sweepInterval = time.Minute

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryCacheAdapter implements domain.Cache in process memory.
// It backs the job board when no Redis address is configured.
type MemoryCacheAdapter struct {
	mu        sync.RWMutex
	entries   map[string]memoryEntry
	lastSweep time.Time
	now       func() time.Time
}

// NewMemoryCacheAdapter creates a new instance of MemoryCacheAdapter.
func NewMemoryCacheAdapter() *MemoryCacheAdapter {
	return &MemoryCacheAdapter{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *MemoryCacheAdapter) Get(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return "", domain.ErrCacheMiss
	}
	if !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt) {
		m.mu.Lock()
		if current, still := m.entries[key]; still && current.expiresAt.Equal(entry.expiresAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return "", domain.ErrCacheMiss
	}
	return entry.value, nil
}

func (m *MemoryCacheAdapter) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	now := m.now()
	entry := memoryEntry{value: value}
	if expiration > 0 {
		entry.expiresAt = now.Add(expiration)
	}
	m.mu.Lock()
	if now.Sub(m.lastSweep) >= sweepInterval {
		m.purgeExpiredLocked(now)
		m.lastSweep = now
	}
	m.entries[key] = entry
	m.mu.Unlock()
	return nil
}

// Job records are rarely read after they expire, so Get alone would never
// reclaim them.
func (m *MemoryCacheAdapter) purgeExpiredLocked(now time.Time) {
	for key, entry := range m.entries {
		if !entry.expiresAt.IsZero() && !now.Before(entry.expiresAt) {
			delete(m.entries, key)
		}
	}
}

func (m *MemoryCacheAdapter) Ping(ctx context.Context) error {
	return nil
}

var _ domain.Cache = (*MemoryCacheAdapter)(nil)

package cache

import (
	"context"
	"sync"
	"time"

	"StockRadar/internal/model"
)

// MemoryStore is a map-backed Store used when Redis is not configured and
// in tests. Expired entries are evicted lazily on read.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry

	now func() time.Time
}

type memoryEntry struct {
	entry     model.CacheEntry
	expiresAt time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, key model.ResourceKey) (*model.CacheEntry, bool, error) {
	s.mu.RLock()
	e, ok := s.entries[key.String()]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if s.now().After(e.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key.String())
		s.mu.Unlock()
		return nil, false, nil
	}
	entry := e.entry
	return &entry, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key model.ResourceKey, payload []byte, ttl time.Duration) error {
	now := s.now()
	s.mu.Lock()
	s.entries[key.String()] = memoryEntry{
		entry: model.CacheEntry{
			Key:        key.String(),
			Payload:    payload,
			FetchedAt:  now,
			TTLSeconds: int(ttl.Seconds()),
		},
		expiresAt: now.Add(ttl),
	}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Close() error { return nil }

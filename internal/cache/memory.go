package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// MemoryStore implements Store in process. Values are stored JSON-encoded so
// callers never share memory with the cache.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]memoryItem
	now   func() time.Time
}

type memoryItem struct {
	payload   []byte
	expiresAt time.Time
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]memoryItem), now: time.Now}
}

func (s *MemoryStore) Set(_ context.Context, key string, v any, ttl time.Duration) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal value: %w", err)
	}

	item := memoryItem{payload: payload}
	if ttl > 0 {
		item.expiresAt = s.now().Add(ttl)
	}

	s.mu.Lock()
	s.items[key] = item
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, key string, dest any) (bool, error) {
	s.mu.Lock()
	item, ok := s.lookup(key)
	s.mu.Unlock()
	return s.decode(item, ok, dest)
}

func (s *MemoryStore) Take(_ context.Context, key string, dest any) (bool, error) {
	s.mu.Lock()
	item, ok := s.lookup(key)
	delete(s.items, key)
	s.mu.Unlock()
	return s.decode(item, ok, dest)
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }
func (s *MemoryStore) Close() error               { return nil }

// lookup must be called with mu held. Expired items are evicted lazily.
func (s *MemoryStore) lookup(key string) (memoryItem, bool) {
	item, ok := s.items[key]
	if !ok {
		return memoryItem{}, false
	}
	if !item.expiresAt.IsZero() && !s.now().Before(item.expiresAt) {
		delete(s.items, key)
		return memoryItem{}, false
	}
	return item, true
}

func (s *MemoryStore) decode(item memoryItem, ok bool, dest any) (bool, error) {
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(item.payload, dest); err != nil {
		return false, fmt.Errorf("decode value: %w", err)
	}
	return true, nil
}

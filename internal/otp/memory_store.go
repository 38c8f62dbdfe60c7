package otp

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bluele/gcache"
)

// MemoryStore is an in-process Store backed by an LRU with per-key expiry.
type MemoryStore struct {
	mu    sync.Mutex
	cache gcache.Cache
}

func NewMemoryStore(size int) *MemoryStore {
	if size <= 0 {
		size = 10000
	}
	return &MemoryStore{cache: gcache.New(size).LRU().Build()}
}

func (m *MemoryStore) Save(_ context.Context, key, code string, ttl time.Duration) error {
	return m.cache.SetWithExpire(key, code, ttl)
}

// Verify compares and consumes under one lock so a code succeeds at most once.
func (m *MemoryStore) Verify(_ context.Context, key, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, err := m.cache.Get(key)
	if errors.Is(err, gcache.KeyNotFoundError) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if stored, _ := v.(string); stored != code {
		return ErrMismatch
	}
	m.cache.Remove(key)
	return nil
}

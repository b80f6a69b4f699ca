package worldcache

import (
	"context"
	"sync"
	"time"

	"github.com/beka-birhanu/vinom-warden/service/i"
)

var _ i.WorldCache = &MemoryCache{}

type entry struct {
	data    []byte
	expires time.Time
}

// MemoryCache keeps worlds in process. Used when no Redis is configured.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]entry
	locks   map[string]chan struct{}
	now     func() time.Time
}

// NewMemoryCache creates an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]entry),
		locks:   make(map[string]chan struct{}),
		now:     time.Now,
	}
}

// Get returns the cached bytes unless they have expired.
func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return append([]byte(nil), e.data...), true, nil
}

// Set stores data under key. A zero ttl never expires.
func (m *MemoryCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := entry{data: append([]byte(nil), data...)}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.entries[key] = e
	return nil
}

// Lock waits for the key's lock or for ctx to end.
func (m *MemoryCache) Lock(ctx context.Context, key string) (func() error, error) {
	m.mu.Lock()
	sem, ok := m.locks[key]
	if !ok {
		sem = make(chan struct{}, 1)
		m.locks[key] = sem
	}
	m.mu.Unlock()

	select {
	case sem <- struct{}{}:
		var once sync.Once
		return func() error {
			once.Do(func() { <-sem })
			return nil
		}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

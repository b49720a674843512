package cache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// MemoryTokenStore implements TokenStore using ttlcache. Suitable for a
// single-process deployment; use the redis store when several instances share
// the backing database.
type MemoryTokenStore struct {
	cache *ttlcache.Cache[string, *TokenEntry]
}

// NewMemoryTokenStore creates an in-memory token store with automatic
// expiry-based cleanup.
func NewMemoryTokenStore() *MemoryTokenStore {
	cache := ttlcache.New(
		ttlcache.WithDisableTouchOnHit[string, *TokenEntry](),
	)

	go cache.Start()

	return &MemoryTokenStore{cache: cache}
}

func (s *MemoryTokenStore) Set(_ context.Context, token string, entry *TokenEntry) error {
	ttl := time.Until(entry.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	s.cache.Set(HashToken(token), entry, ttl)
	return nil
}

func (s *MemoryTokenStore) Get(_ context.Context, token string) (*TokenEntry, bool) {
	item := s.cache.Get(HashToken(token))
	if item == nil || item.IsExpired() {
		return nil, false
	}
	return item.Value(), true
}

// Close stops the cleanup goroutine.
func (s *MemoryTokenStore) Close() error {
	s.cache.Stop()
	return nil
}

var _ TokenStore = (*MemoryTokenStore)(nil)

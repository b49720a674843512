package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/pagemark/readsync/cache"
)

// TokenStore implements cache.TokenStore on Redis, letting several server
// instances share one validation cache so a revocation on one node is seen by
// the others immediately.
type TokenStore struct {
	client *redis.Client
	prefix string
}

// NewTokenStore creates a Redis-backed token store. prefix namespaces the
// keys within a shared Redis instance.
func NewTokenStore(client *redis.Client, prefix string) *TokenStore {
	return &TokenStore{client: client, prefix: prefix}
}

func (r *TokenStore) redisKey(token string) string {
	return fmt.Sprintf("%s:token:%s", r.prefix, cache.HashToken(token))
}

func (r *TokenStore) Set(ctx context.Context, token string, entry *cache.TokenEntry) error {
	ttl := time.Until(entry.ExpiresAt)
	if ttl <= 0 {
		return nil
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal token entry: %w", err)
	}

	if err := r.client.Set(ctx, r.redisKey(token), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set token in redis: %w", err)
	}

	return nil
}

func (r *TokenStore) Get(ctx context.Context, token string) (*cache.TokenEntry, bool) {
	payload, err := r.client.Get(ctx, r.redisKey(token)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Msg("redis token cache read failed")
		}
		return nil, false
	}

	var entry cache.TokenEntry
	if err := json.Unmarshal(payload, &entry); err != nil {
		log.Warn().Err(err).Msg("corrupt token cache entry, dropping")
		_ = r.client.Del(ctx, r.redisKey(token)).Err()
		return nil, false
	}

	return &entry, true
}

var _ cache.TokenStore = (*TokenStore)(nil)

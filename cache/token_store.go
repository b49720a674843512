package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// TokenEntry is the cached validation result for one bearer token. Entries
// are keyed by a hash of the token value so the raw credential never sits in
// the cache backend. Revocation overwrites the entry with Revoked set, a
// tombstone that shadows any stale positive copy until it expires.
type TokenEntry struct {
	UserID    string    `json:"user_id" redis:"user_id"`
	ExpiresAt time.Time `json:"expires_at" redis:"expires_at"`
	Revoked   bool      `json:"revoked" redis:"revoked"`
}

// TokenStore is a read-through cache in front of the token repository.
// A miss is not an error; it just sends the caller to the database.
type TokenStore interface {
	Set(ctx context.Context, token string, entry *TokenEntry) error
	Get(ctx context.Context, token string) (*TokenEntry, bool)
}

// HashToken returns the hex SHA-256 of a token value, used as the cache key.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

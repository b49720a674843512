package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pagemark/readsync/cache"
	"github.com/pagemark/readsync/domain"
	serrors "github.com/pagemark/readsync/errors"
	"github.com/pagemark/readsync/internal/metrics"
)

const tokenByteLength = 32

// TokenService owns the bearer-token ledger: issuance, validation, individual
// and bulk revocation, and expiry-based purging. Validation goes through a
// read-through cache; the repository stays the source of truth.
type TokenService struct {
	repo   domain.TokenRepository
	store  cache.TokenStore
	prefix string
	ttl    time.Duration
}

// NewTokenService creates a TokenService. prefix distinguishes our bearer
// tokens from provider tokens at a glance (e.g. "ur_").
func NewTokenService(repo domain.TokenRepository, store cache.TokenStore, prefix string, ttl time.Duration) *TokenService {
	return &TokenService{repo: repo, store: store, prefix: prefix, ttl: ttl}
}

// Issue mints a fresh opaque token for the user. Tokens are additive: issuing
// never touches any previously issued token, so any number of devices can
// hold valid credentials concurrently.
func (t *TokenService) Issue(ctx context.Context, userID string) (*domain.UserToken, error) {
	b := make([]byte, tokenByteLength)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	now := time.Now().UTC()
	token := &domain.UserToken{
		Token:     t.prefix + hex.EncodeToString(b),
		UserID:    userID,
		IssuedAt:  now,
		ExpiresAt: now.Add(t.ttl),
	}

	if err := t.repo.SaveToken(ctx, token); err != nil {
		return nil, err
	}

	if err := t.store.Set(ctx, token.Token, &cache.TokenEntry{
		UserID:    token.UserID,
		ExpiresAt: token.ExpiresAt,
	}); err != nil {
		log.Warn().Err(err).Msg("failed to cache issued token")
	}

	metrics.TokensIssuedTotal.Inc()

	return token, nil
}

// Validate resolves a presented bearer token to its owning user ID. Unknown,
// expired and revoked tokens all fail with ErrUnauthorized.
func (t *TokenService) Validate(ctx context.Context, value string) (string, error) {
	if entry, ok := t.store.Get(ctx, value); ok {
		if entry.Revoked || !time.Now().Before(entry.ExpiresAt) {
			return "", serrors.ErrUnauthorized
		}
		return entry.UserID, nil
	}

	token, err := t.repo.GetTokenByValue(ctx, value)
	if err != nil {
		if errors.Is(err, serrors.ErrTokenNotFound) {
			return "", serrors.ErrUnauthorized
		}
		return "", err
	}

	if !token.Valid(time.Now()) {
		return "", serrors.ErrUnauthorized
	}

	if err := t.store.Set(ctx, value, &cache.TokenEntry{
		UserID:    token.UserID,
		ExpiresAt: token.ExpiresAt,
	}); err != nil {
		log.Warn().Err(err).Msg("failed to cache validated token")
	}

	return token.UserID, nil
}

// Revoke invalidates exactly one token owned by the user. Reports false if
// the token is unknown, owned by someone else or already revoked. On success
// the cache entry is overwritten with a revoked tombstone, so validation
// cannot be answered from a stale copy.
func (t *TokenService) Revoke(ctx context.Context, userID, value string) (bool, error) {
	revoked, err := t.repo.RevokeToken(ctx, userID, value)
	if err != nil {
		return false, err
	}
	if revoked {
		t.tombstone(ctx, userID, value)
		metrics.TokensRevokedTotal.Inc()
	}
	return revoked, nil
}

// RevokeAll invalidates every currently valid token of the user. The
// repository revokes first and reports exactly which values it stamped, so a
// token issued while the call is in flight still gets its cache entry
// overwritten rather than surviving on a pre-revocation snapshot.
func (t *TokenService) RevokeAll(ctx context.Context, userID string) (int64, error) {
	revoked, err := t.repo.RevokeAllTokens(ctx, userID)
	if err != nil {
		return 0, err
	}

	for _, value := range revoked {
		t.tombstone(ctx, userID, value)
	}

	count := int64(len(revoked))
	metrics.TokensRevokedTotal.Add(float64(count))

	log.Info().Str("user_id", userID).Int64("count", count).Msg("revoked all user tokens")

	return count, nil
}

// tombstone writes a revoked cache entry for the token. The tombstone's TTL
// is the full token lifetime, an upper bound on whatever validity the token
// had left, so it outlives any stale positive entry it replaces.
func (t *TokenService) tombstone(ctx context.Context, userID, value string) {
	err := t.store.Set(ctx, value, &cache.TokenEntry{
		UserID:    userID,
		ExpiresAt: time.Now().Add(t.ttl),
		Revoked:   true,
	})
	if err != nil {
		log.Warn().Err(err).Msg("failed to write revoked token tombstone")
	}
}

// PurgeExpired physically deletes tokens past expiry. Validity already
// excludes them, so this only reclaims storage.
func (t *TokenService) PurgeExpired(ctx context.Context) (int64, error) {
	return t.repo.PurgeExpiredTokens(ctx, time.Now().UTC())
}

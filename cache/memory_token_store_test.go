package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTokenStoreSetGet(t *testing.T) {
	store := NewMemoryTokenStore()
	defer store.Close()

	ctx := context.Background()
	entry := &TokenEntry{
		UserID:    "user-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}

	require.NoError(t, store.Set(ctx, "ur_abc", entry))

	got, ok := store.Get(ctx, "ur_abc")
	require.True(t, ok)
	assert.Equal(t, "user-1", got.UserID)
	assert.False(t, got.Revoked)
}

func TestMemoryTokenStoreMiss(t *testing.T) {
	store := NewMemoryTokenStore()
	defer store.Close()

	_, ok := store.Get(context.Background(), "ur_never_set")
	assert.False(t, ok)
}

func TestMemoryTokenStoreOverwrite(t *testing.T) {
	store := NewMemoryTokenStore()
	defer store.Close()

	ctx := context.Background()
	live := &TokenEntry{UserID: "user-1", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, store.Set(ctx, "ur_abc", live))

	// A revoked tombstone replaces the live entry under the same key.
	dead := &TokenEntry{UserID: "user-1", ExpiresAt: time.Now().Add(2 * time.Hour), Revoked: true}
	require.NoError(t, store.Set(ctx, "ur_abc", dead))

	got, ok := store.Get(ctx, "ur_abc")
	require.True(t, ok)
	assert.True(t, got.Revoked)
}

func TestMemoryTokenStoreSkipsDeadEntries(t *testing.T) {
	store := NewMemoryTokenStore()
	defer store.Close()

	ctx := context.Background()
	entry := &TokenEntry{
		UserID:    "user-1",
		ExpiresAt: time.Now().Add(-time.Minute),
	}

	// Already expired entries are not stored at all.
	require.NoError(t, store.Set(ctx, "ur_old", entry))
	_, ok := store.Get(ctx, "ur_old")
	assert.False(t, ok)
}

func TestMemoryTokenStoreHonorsTTL(t *testing.T) {
	store := NewMemoryTokenStore()
	defer store.Close()

	ctx := context.Background()
	entry := &TokenEntry{
		UserID:    "user-1",
		ExpiresAt: time.Now().Add(30 * time.Millisecond),
	}
	require.NoError(t, store.Set(ctx, "ur_short", entry))

	_, ok := store.Get(ctx, "ur_short")
	assert.True(t, ok)

	time.Sleep(60 * time.Millisecond)
	_, ok = store.Get(ctx, "ur_short")
	assert.False(t, ok)
}

func TestHashTokenIsStableAndHidesValue(t *testing.T) {
	h1 := HashToken("ur_abc")
	h2 := HashToken("ur_abc")
	h3 := HashToken("ur_abd")

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64)
	assert.NotContains(t, h1, "ur_")
}

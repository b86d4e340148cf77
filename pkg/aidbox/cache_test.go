package aidbox_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fivetwenty-io/aidbox-client/pkg/aidbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetAndGet(t *testing.T) {
	t.Parallel()

	cache := aidbox.NewMemoryCache(10)
	ctx := context.Background()

	entry := &aidbox.CacheEntry{
		Data:      []byte(`["id","name"]`),
		ExpiresAt: time.Now().Add(time.Hour),
		ETag:      "v1",
	}

	require.NoError(t, cache.Set(ctx, "schema.Patient", entry))

	retrieved, err := cache.Get(ctx, "schema.Patient")
	require.NoError(t, err)
	assert.Equal(t, entry.Data, retrieved.Data)
	assert.Equal(t, entry.ETag, retrieved.ETag)
}

func TestMemoryCache_GetMissingAndExpired(t *testing.T) {
	t.Parallel()

	cache := aidbox.NewMemoryCache(10)
	ctx := context.Background()

	_, err := cache.Get(ctx, "nonexistent")
	require.ErrorIs(t, err, aidbox.ErrCacheKeyNotFound)

	require.NoError(t, cache.Set(ctx, "old", &aidbox.CacheEntry{
		Data:      []byte("x"),
		ExpiresAt: time.Now().Add(-time.Hour),
	}))

	assert.False(t, cache.Has(ctx, "old"))

	_, err = cache.Get(ctx, "old")
	require.ErrorIs(t, err, aidbox.ErrCacheEntryExpired)
	assert.Equal(t, 0, cache.Len())
}

func TestMemoryCache_ZeroExpiryNeverExpires(t *testing.T) {
	t.Parallel()

	cache := aidbox.NewMemoryCache(10)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "forever", &aidbox.CacheEntry{Data: []byte("x")}))

	cache.Cleanup()

	assert.True(t, cache.Has(ctx, "forever"))
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	cache := aidbox.NewMemoryCache(2)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a", &aidbox.CacheEntry{Data: []byte("a")}))
	require.NoError(t, cache.Set(ctx, "b", &aidbox.CacheEntry{Data: []byte("b")}))

	_, err := cache.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, cache.Set(ctx, "c", &aidbox.CacheEntry{Data: []byte("c")}))

	assert.True(t, cache.Has(ctx, "a"))
	assert.False(t, cache.Has(ctx, "b"))
	assert.True(t, cache.Has(ctx, "c"))
	assert.Equal(t, 2, cache.Len())
}

func TestMemoryCache_DeleteAndClear(t *testing.T) {
	t.Parallel()

	cache := aidbox.NewMemoryCache(10)
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		require.NoError(t, cache.Set(ctx, key, &aidbox.CacheEntry{Data: []byte(key)}))
	}

	require.NoError(t, cache.Delete(ctx, "a"))
	assert.False(t, cache.Has(ctx, "a"))
	assert.True(t, cache.Has(ctx, "b"))

	require.NoError(t, cache.Clear(ctx))
	assert.Equal(t, 0, cache.Len())
}

func TestMemoryCache_Cleanup(t *testing.T) {
	t.Parallel()

	cache := aidbox.NewMemoryCache(10)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "stale", &aidbox.CacheEntry{ExpiresAt: time.Now().Add(-time.Minute)}))
	require.NoError(t, cache.Set(ctx, "fresh", &aidbox.CacheEntry{ExpiresAt: time.Now().Add(time.Minute)}))

	cache.Cleanup()

	assert.Equal(t, 1, cache.Len())
	assert.True(t, cache.Has(ctx, "fresh"))
}

func TestCacheFactory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		config  *aidbox.CacheConfig
		wantErr error
		check   func(t *testing.T, cache aidbox.Cache)
	}{
		{
			name:   "nil uses default memory cache",
			config: nil,
			check: func(t *testing.T, cache aidbox.Cache) {
				t.Helper()
				assert.IsType(t, &aidbox.MemoryCache{}, cache)
			},
		},
		{
			name:   "memory",
			config: &aidbox.CacheConfig{Type: aidbox.CacheTypeMemory, Memory: &aidbox.MemoryCacheConfig{MaxSize: 5}},
			check: func(t *testing.T, cache aidbox.Cache) {
				t.Helper()
				assert.IsType(t, &aidbox.MemoryCache{}, cache)
			},
		},
		{
			name:   "none",
			config: &aidbox.CacheConfig{Type: aidbox.CacheTypeNone},
			check: func(t *testing.T, cache aidbox.Cache) {
				t.Helper()

				ctx := context.Background()
				require.NoError(t, cache.Set(ctx, "k", &aidbox.CacheEntry{}))
				assert.False(t, cache.Has(ctx, "k"))

				_, err := cache.Get(ctx, "k")
				assert.ErrorIs(t, err, aidbox.ErrCacheDisabled)
			},
		},
		{
			name:    "nats without settings",
			config:  &aidbox.CacheConfig{Type: aidbox.CacheTypeNATS},
			wantErr: aidbox.ErrNATSConfigRequired,
		},
		{
			name:    "unknown type",
			config:  &aidbox.CacheConfig{Type: "redis"},
			wantErr: aidbox.ErrUnsupportedCache,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cache, err := aidbox.NewCacheFromConfig(tt.config)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			tt.check(t, cache)
		})
	}
}

type failingCache struct {
	aidbox.NoOpCache
	err error
}

func (c *failingCache) Set(ctx context.Context, key string, entry *aidbox.CacheEntry) error {
	return c.err
}

func (c *failingCache) Clear(ctx context.Context) error {
	return c.err
}

func TestCacheChain_GetPromotesToEarlierLevels(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l1 := aidbox.NewMemoryCache(10)
	l2 := aidbox.NewMemoryCache(10)
	chain := aidbox.NewCacheChain(l1, l2)

	require.NoError(t, l2.Set(ctx, "k", &aidbox.CacheEntry{Data: []byte("v")}))
	assert.False(t, l1.Has(ctx, "k"))

	entry, err := chain.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), entry.Data)
	assert.True(t, l1.Has(ctx, "k"))

	_, err = chain.Get(ctx, "missing")
	assert.ErrorIs(t, err, aidbox.ErrCacheKeyNotFound)
}

func TestCacheChain_AggregatesErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	first := errors.New("first down")
	second := errors.New("second down")
	memory := aidbox.NewMemoryCache(10)
	chain := aidbox.NewCacheChain(&failingCache{err: first}, memory, &failingCache{err: second})

	err := chain.Set(ctx, "k", &aidbox.CacheEntry{Data: []byte("v")})
	require.Error(t, err)
	require.ErrorIs(t, err, first)
	require.ErrorIs(t, err, second)

	assert.True(t, memory.Has(ctx, "k"))
	assert.True(t, chain.Has(ctx, "k"))

	require.NoError(t, chain.Delete(ctx, "k"))
	assert.False(t, chain.Has(ctx, "k"))

	assert.Error(t, chain.Clear(ctx))
}

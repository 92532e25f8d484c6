package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The package-level client is shared state, so these tests swap it in and out
// per test instead of running in parallel.
func useMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

type cachedPage struct {
	Username string `json:"username"`
	Count    int    `json:"count"`
}

func TestGetSetJSON(t *testing.T) {
	mr := useMiniredis(t)
	ctx := context.Background()

	var out cachedPage
	found, err := GetJSON(ctx, "missing", &out)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetJSON(ctx, PublicStashKey("maya-makes"), cachedPage{Username: "maya-makes", Count: 3}, PublicStashTTL))

	found, err = GetJSON(ctx, PublicStashKey("maya-makes"), &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, cachedPage{Username: "maya-makes", Count: 3}, out)

	// TTL was applied.
	mr.FastForward(PublicStashTTL * 2)
	found, err = GetJSON(ctx, PublicStashKey("maya-makes"), &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAside(t *testing.T) {
	useMiniredis(t)
	ctx := context.Background()

	fetches := 0
	fetch := func(dest *cachedPage) func() error {
		return func() error {
			fetches++
			*dest = cachedPage{Username: "maya-makes", Count: 7}
			return nil
		}
	}

	var first cachedPage
	require.NoError(t, Aside(ctx, StashKey(1), &first, StashTTL, fetch(&first)))
	assert.Equal(t, 1, fetches)
	assert.Equal(t, 7, first.Count)

	var second cachedPage
	require.NoError(t, Aside(ctx, StashKey(1), &second, StashTTL, fetch(&second)))
	assert.Equal(t, 1, fetches, "second read is served from cache")
	assert.Equal(t, first, second)
}

func TestAside_FetchErrorNotCached(t *testing.T) {
	useMiniredis(t)
	ctx := context.Background()

	var out cachedPage
	wantErr := errors.New("db down")
	err := Aside(ctx, StashKey(2), &out, StashTTL, func() error { return wantErr })
	assert.ErrorIs(t, err, wantErr)

	fetched := false
	require.NoError(t, Aside(ctx, StashKey(2), &out, StashTTL, func() error {
		fetched = true
		out = cachedPage{Count: 1}
		return nil
	}))
	assert.True(t, fetched, "failed fetch must not poison the cache")
}

func TestInvalidation(t *testing.T) {
	useMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, StashKey(1), cachedPage{Count: 1}, StashTTL))
	require.NoError(t, SetJSON(ctx, PublicStashKey("maya-makes"), cachedPage{Count: 2}, PublicStashTTL))
	require.NoError(t, SetJSON(ctx, ProfileKey("maya-makes"), cachedPage{Count: 3}, ProfileTTL))

	InvalidateStash(ctx, 1)
	InvalidatePublicStash(ctx, "maya-makes")

	var out cachedPage
	for _, key := range []string{StashKey(1), PublicStashKey("maya-makes"), ProfileKey("maya-makes")} {
		found, err := GetJSON(ctx, key, &out)
		require.NoError(t, err)
		assert.False(t, found, key)
	}
}

func TestNilClientIsSafe(t *testing.T) {
	SetClient(nil)
	ctx := context.Background()

	var out cachedPage
	found, err := GetJSON(ctx, "any", &out)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetJSON(ctx, "any", cachedPage{}, StashTTL))
	Invalidate(ctx, "any")
	InvalidateStash(ctx, 1)
	InvalidatePublicStash(ctx, "maya-makes")

	fetched := false
	require.NoError(t, Aside(ctx, "any", &out, StashTTL, func() error {
		fetched = true
		return nil
	}))
	assert.True(t, fetched, "cacheless mode always fetches")
}

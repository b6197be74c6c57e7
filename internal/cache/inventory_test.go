package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedProfile struct {
	ID     uint    `json:"id"`
	Campus *string `json:"campus"`
}

func withMiniredis(t *testing.T) *miniredis.Miniredis {
	mr := miniredis.RunT(t)
	client = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client = nil })
	return mr
}

func TestProfileKey(t *testing.T) {
	assert.Equal(t, "profile:42", ProfileKey(42))
}

func TestAside_FetchesOnMissAndServesFromCacheAfter(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()
	campus := "pune"

	fetches := 0
	fetch := func(dest *cachedProfile) func() error {
		return func() error {
			fetches++
			*dest = cachedProfile{ID: 1, Campus: &campus}
			return nil
		}
	}

	var first cachedProfile
	require.NoError(t, Aside(ctx, ProfileKey(1), &first, ProfileTTL, fetch(&first)))
	assert.Equal(t, 1, fetches)
	require.NotNil(t, first.Campus)

	var second cachedProfile
	require.NoError(t, Aside(ctx, ProfileKey(1), &second, ProfileTTL, fetch(&second)))
	assert.Equal(t, 1, fetches, "second read must come from cache")
	require.NotNil(t, second.Campus)
	assert.Equal(t, "pune", *second.Campus)
}

func TestAside_InvalidateForcesRefetch(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()

	fetches := 0
	var out cachedProfile
	fetch := func() error {
		fetches++
		out = cachedProfile{ID: 7}
		return nil
	}

	require.NoError(t, Aside(ctx, ProfileKey(7), &out, ProfileTTL, fetch))
	InvalidateProfile(ctx, 7)
	require.NoError(t, Aside(ctx, ProfileKey(7), &out, ProfileTTL, fetch))
	assert.Equal(t, 2, fetches)
}

func TestAside_ExpiredEntryRefetches(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	fetches := 0
	var out cachedProfile
	fetch := func() error {
		fetches++
		out = cachedProfile{ID: 9}
		return nil
	}

	require.NoError(t, Aside(ctx, ProfileKey(9), &out, time.Minute, fetch))
	mr.FastForward(2 * time.Minute)
	require.NoError(t, Aside(ctx, ProfileKey(9), &out, time.Minute, fetch))
	assert.Equal(t, 2, fetches)
}

func TestAside_NoRedisDegradesToFetch(t *testing.T) {
	client = nil
	ctx := context.Background()

	fetches := 0
	var out cachedProfile
	fetch := func() error {
		fetches++
		return nil
	}

	require.NoError(t, Aside(ctx, ProfileKey(1), &out, ProfileTTL, fetch))
	require.NoError(t, Aside(ctx, ProfileKey(1), &out, ProfileTTL, fetch))
	assert.Equal(t, 2, fetches, "without Redis every read goes to storage")
}

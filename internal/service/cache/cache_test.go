package cache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLCache_SetGetExpire(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewTTLCache()
	t.Cleanup(func() { _ = c.Close() })
	c.now = func() time.Time { return now }

	require.NoError(t, c.SetBytes(ctx, "k", []byte("v"), time.Minute))
	b, ok, err := c.GetBytes(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), b)

	now = now.Add(2 * time.Minute)
	_, ok, err = c.GetBytes(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestTTLCache_ZeroTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	c := NewTTLCache()
	t.Cleanup(func() { _ = c.Close() })
	require.NoError(t, c.SetBytes(ctx, "k", []byte("v"), 0))
	c.now = func() time.Time { return time.Now().Add(24 * time.Hour) }
	_, ok, _ := c.GetBytes(ctx, "k")
	assert.True(t, ok)
}

func TestTTLCache_OldGenerationsAreSwept(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewTTLCache(WithMemoryCleanup(0), WithMemoryMaxSize(0))
	c.now = func() time.Time { return now }

	for gen := int64(1); gen <= 50; gen++ {
		for i := 0; i < 100; i++ {
			require.NoError(t, c.SetBytes(ctx, Key("returns", gen, strconv.Itoa(i)), []byte("v"), time.Minute))
		}
		now = now.Add(time.Hour)
		assert.Equal(t, 100, c.Purge(), "generation %d", gen)
	}
	assert.Equal(t, 0, c.Len())
}

func TestTTLCache_SetSweepsExpiredBeforeEvicting(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewTTLCache(WithMemoryCleanup(0), WithMemoryMaxSize(3))
	c.now = func() time.Time { return now }

	require.NoError(t, c.SetBytes(ctx, "stale", []byte("1"), time.Minute))
	require.NoError(t, c.SetBytes(ctx, "a", []byte("2"), 0))
	require.NoError(t, c.SetBytes(ctx, "b", []byte("3"), 0))
	now = now.Add(time.Hour)

	require.NoError(t, c.SetBytes(ctx, "c", []byte("4"), 0))
	assert.Equal(t, 3, c.Len())
	for _, k := range []string{"a", "b", "c"} {
		_, ok, _ := c.GetBytes(ctx, k)
		assert.True(t, ok, k)
	}
}

func TestTTLCache_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	c := NewTTLCache(WithMemoryCleanup(0), WithMemoryMaxSize(2))

	require.NoError(t, c.SetBytes(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.SetBytes(ctx, "b", []byte("2"), 0))
	_, ok, _ := c.GetBytes(ctx, "a")
	require.True(t, ok)

	require.NoError(t, c.SetBytes(ctx, "c", []byte("3"), 0))
	assert.Equal(t, 2, c.Len())
	_, ok, _ = c.GetBytes(ctx, "b")
	assert.False(t, ok, "b was least recently used")
	_, ok, _ = c.GetBytes(ctx, "a")
	assert.True(t, ok)

	// overwriting an existing key never evicts
	require.NoError(t, c.SetBytes(ctx, "a", []byte("9"), 0))
	assert.Equal(t, 2, c.Len())
}

func TestTTLCache_JanitorPurgesAndCloses(t *testing.T) {
	ctx := context.Background()
	c := NewTTLCache(WithMemoryCleanup(5 * time.Millisecond))
	require.NoError(t, c.SetBytes(ctx, "k", []byte("v"), time.Millisecond))

	assert.Eventually(t, func() bool { return c.Len() == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}

func TestNew(t *testing.T) {
	c, err := New("none", RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = New("memory", RedisConfig{}, WithMemoryCleanup(0))
	require.NoError(t, err)
	assert.IsType(t, &TTLCache{}, c)

	c, err = New("redis", RedisConfig{Addr: "localhost:6379"})
	require.NoError(t, err)
	assert.IsType(t, &RedisCache{}, c)

	_, err = New("memcached", RedisConfig{})
	assert.Error(t, err)
}

func TestKey(t *testing.T) {
	a := Key("returns", 1, "BTC,ETH", "simple")
	assert.Equal(t, a, Key("returns", 1, "BTC,ETH", "simple"))
	assert.NotEqual(t, a, Key("returns", 2, "BTC,ETH", "simple"))
	assert.NotEqual(t, a, Key("returns", 1, "BTC", "ETH,simple"))
	assert.Contains(t, a, "coinscope:returns:1:")
}

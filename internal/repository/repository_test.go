package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredisCache(t *testing.T) (*RedisSlotCache, *miniredis.Miniredis) {
	t.Helper()

	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisSlotCache(client, time.Minute), s
}

func TestRedisSlotCacheRoundTrip(t *testing.T) {
	cache, _ := newMiniredisCache(t)
	ctx := context.Background()

	_, found, err := cache.GetOccupied(ctx, "sp-1", "2026-09-15")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, cache.SetOccupied(ctx, "sp-1", "2026-09-15", []string{"09:00–10:00", "10:00–11:00"}))

	slots, found, err := cache.GetOccupied(ctx, "sp-1", "2026-09-15")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"09:00–10:00", "10:00–11:00"}, slots)

	// A cached empty day is a hit, not a miss.
	require.NoError(t, cache.SetOccupied(ctx, "sp-1", "2026-09-16", nil))
	slots, found, err = cache.GetOccupied(ctx, "sp-1", "2026-09-16")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, slots)

	require.NoError(t, cache.Invalidate(ctx, "sp-1", "2026-09-15"))
	_, found, err = cache.GetOccupied(ctx, "sp-1", "2026-09-15")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisSlotCacheTTL(t *testing.T) {
	cache, s := newMiniredisCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetOccupied(ctx, "sp-1", "2026-09-15", []string{"09:00–10:00"}))

	s.FastForward(2 * time.Minute)

	_, found, err := cache.GetOccupied(ctx, "sp-1", "2026-09-15")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisCheckRateLimit(t *testing.T) {
	cache, s := newMiniredisCache(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := cache.CheckRateLimit(ctx, "key-1", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := cache.CheckRateLimit(ctx, "key-1", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	s.FastForward(2 * time.Minute)

	allowed, err = cache.CheckRateLimit(ctx, "key-1", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestMemorySlotCache(t *testing.T) {
	cache := NewMemorySlotCache(50 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, cache.SetOccupied(ctx, "sp-1", "2026-09-15", []string{"09:00–10:00"}))

	slots, found, err := cache.GetOccupied(ctx, "sp-1", "2026-09-15")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"09:00–10:00"}, slots)

	time.Sleep(60 * time.Millisecond)

	_, found, err = cache.GetOccupied(ctx, "sp-1", "2026-09-15")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryCheckRateLimit(t *testing.T) {
	cache := NewMemorySlotCache(time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, err := cache.CheckRateLimit(ctx, "key-1", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := cache.CheckRateLimit(ctx, "key-1", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)
}

// Concurrent callers must see an exact count: with a limit of 4, exactly 4
// of 10 simultaneous requests get through.
func TestMemoryCheckRateLimitConcurrent(t *testing.T) {
	cache := NewMemorySlotCache(time.Minute)
	ctx := context.Background()

	const calls = 10
	var wg sync.WaitGroup
	results := make([]bool, calls)

	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			allowed, err := cache.CheckRateLimit(ctx, "key-1", 4, time.Minute)
			assert.NoError(t, err)
			results[i] = allowed
		}(i)
	}
	wg.Wait()

	allowed := 0
	for _, ok := range results {
		if ok {
			allowed++
		}
	}
	assert.Equal(t, 4, allowed)
}

func TestFailoverSwitchesToFallback(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { client.Close() })

	primary := NewRedisSlotCache(client, time.Minute)
	fallback := NewMemorySlotCache(time.Minute)
	logger := zerolog.Nop()
	cache := NewFailoverSlotCache(primary, fallback, &logger)
	ctx := context.Background()

	require.NoError(t, cache.SetOccupied(ctx, "sp-1", "2026-09-15", []string{"09:00–10:00"}))

	slots, found, err := cache.GetOccupied(ctx, "sp-1", "2026-09-15")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"09:00–10:00"}, slots)

	// Kill Redis: reads start failing, the failover flips to memory.
	s.Close()

	_, _, err = cache.GetOccupied(ctx, "sp-1", "2026-09-15")
	require.NoError(t, err)
	assert.True(t, cache.isDown.Load())

	// Writes now land in the fallback and are readable from it.
	require.NoError(t, cache.SetOccupied(ctx, "sp-2", "2026-09-15", []string{"11:00–12:00"}))
	slots, found, err = cache.GetOccupied(ctx, "sp-2", "2026-09-15")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"11:00–12:00"}, slots)
}

// Losing the primary mid-flight must not corrupt the failover's down/retry
// bookkeeping under parallel requests.
func TestFailoverConcurrentAfterPrimaryLoss(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { client.Close() })

	primary := NewRedisSlotCache(client, time.Minute)
	fallback := NewMemorySlotCache(time.Minute)
	logger := zerolog.Nop()
	cache := NewFailoverSlotCache(primary, fallback, &logger)
	ctx := context.Background()

	s.Close()

	const workers = 16
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			date := fmt.Sprintf("2026-09-%02d", 1+i)
			assert.NoError(t, cache.SetOccupied(ctx, "sp-1", date, []string{"09:00–10:00"}))
			_, _, err := cache.GetOccupied(ctx, "sp-1", date)
			assert.NoError(t, err)
			_, err = cache.CheckRateLimit(ctx, "key-1", workers, time.Minute)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.True(t, cache.isDown.Load())
}

package infra

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheSetGet(t *testing.T) {
	cache := NewCache(time.Minute)

	cache.Set("key", "value")

	v, ok := cache.Get("key")
	require.True(t, ok)
	assert.Equal(t, "value", v)

	_, ok = cache.Get("missing")
	assert.False(t, ok)
}

func TestCacheExpiry(t *testing.T) {
	cache := NewCache(time.Minute)

	cache.SetWithTTL("key", "value", 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	_, ok := cache.Get("key")
	assert.False(t, ok)
}

func TestCacheInvalidateAndFlush(t *testing.T) {
	cache := NewCache(time.Minute)
	cache.Set("a", 1)
	cache.Set("b", 2)

	cache.Invalidate("a")
	_, ok := cache.Get("a")
	assert.False(t, ok)
	_, ok = cache.Get("b")
	assert.True(t, ok)

	cache.Flush()
	_, ok = cache.Get("b")
	assert.False(t, ok)
}

func TestCacheCleanup(t *testing.T) {
	cache := NewCache(time.Minute)
	cache.SetWithTTL("stale", 1, 5*time.Millisecond)
	cache.Set("fresh", 2)

	time.Sleep(20 * time.Millisecond)
	cache.Cleanup()

	_, ok := cache.Get("fresh")
	assert.True(t, ok)
	_, ok = cache.Get("stale")
	assert.False(t, ok)
}

func TestGetOrComputeCachesResult(t *testing.T) {
	cache := NewCache(time.Minute)
	var calls int32

	compute := func() (any, error) {
		atomic.AddInt32(&calls, 1)
		return "computed", nil
	}

	v, err := cache.GetOrCompute("key", compute)
	require.NoError(t, err)
	assert.Equal(t, "computed", v)

	v, err = cache.GetOrCompute("key", compute)
	require.NoError(t, err)
	assert.Equal(t, "computed", v)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetOrComputeSharesConcurrentCalls(t *testing.T) {
	cache := NewCache(time.Minute)
	var calls int32
	release := make(chan struct{})

	compute := func() (any, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "shared", nil
	}

	const n = 8
	var wg sync.WaitGroup
	results := make([]any, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := cache.GetOrCompute("key", compute)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "concurrent misses share one compute")
	for _, v := range results {
		assert.Equal(t, "shared", v)
	}
}

func TestGetOrComputeErrorNotCached(t *testing.T) {
	cache := NewCache(time.Minute)
	wantErr := errors.New("boom")

	_, err := cache.GetOrCompute("key", func() (any, error) { return nil, wantErr })
	assert.ErrorIs(t, err, wantErr)

	v, err := cache.GetOrCompute("key", func() (any, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestMemo(t *testing.T) {
	memo := NewMemo()

	_, ok := memo.Get("key")
	assert.False(t, ok)

	memo.Set("key", 42)
	v, ok := memo.Get("key")
	require.True(t, ok)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, memo.Len())
}

func TestRateLimiterAllowsBurst(t *testing.T) {
	rl := NewRateLimiter(5, time.Second)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, rl.Wait(ctx))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond, "burst within capacity must not block")
}

func TestRateLimiterBlocksWhenExhausted(t *testing.T) {
	rl := NewRateLimiter(1, 200*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, rl.Wait(ctx))

	start := time.Now()
	require.NoError(t, rl.Wait(ctx))
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestRateLimiterHonorsContext(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	require.NoError(t, rl.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := rl.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDoGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer srv.Close()

	body, status, err := DoGet(context.Background(), srv.URL, map[string]string{"User-Agent": "test-agent"})
	require.NoError(t, err)
	defer body.Close()
	assert.Equal(t, http.StatusOK, status)
}

func TestDoGetNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, status, err := DoGet(context.Background(), srv.URL, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, status)
}

package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// admits reports whether the limiter lets a request through without a noticeable wait.
func admits(l *Limiter, endpoint string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	return l.Wait(ctx, endpoint) == nil
}

func TestLimiter_New(t *testing.T) {
	limiter := New(10, time.Second)

	assert.NotNil(t, limiter)
	assert.Equal(t, 0, limiter.Metrics().BucketCount)
}

func TestLimiter_SharedBudget(t *testing.T) {
	limiter := New(5, time.Hour)

	for i := 0; i < 5; i++ {
		assert.True(t, admits(limiter, "v5/market/time"), "request %d should be allowed", i+1)
	}

	assert.False(t, admits(limiter, "v5/market/instruments-info"), "request 6 should be blocked by the shared budget")
}

func TestLimiter_Wait(t *testing.T) {
	limiter := New(5, 100*time.Millisecond)

	for i := 0; i < 5; i++ {
		err := limiter.Wait(context.Background(), "v5/market/time")
		assert.NoError(t, err)
	}
}

func TestLimiter_Wait_ContextCancellation(t *testing.T) {
	limiter := New(1, time.Second)

	err := limiter.Wait(context.Background(), "v5/market/time")
	assert.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err = limiter.Wait(ctx, "v5/market/time")
	assert.Error(t, err)
	assert.Equal(t, int64(1), limiter.Metrics().DeniedRequests)
}

func TestLimiter_EndpointBucket(t *testing.T) {
	limiter := New(100, time.Second, WithBucket("v5/asset/coin/query-info", 2, time.Hour))

	assert.True(t, admits(limiter, "v5/asset/coin/query-info"))
	assert.True(t, admits(limiter, "v5/asset/coin/query-info"))
	assert.False(t, admits(limiter, "v5/asset/coin/query-info"), "bucket exhausted")

	assert.True(t, admits(limiter, "v5/market/instruments-info"), "other endpoints only use the shared budget")
	assert.Equal(t, 1, limiter.Metrics().BucketCount)
}

func TestLimiter_BucketDenialKeepsSharedTokens(t *testing.T) {
	limiter := New(3, time.Hour, WithBucket("private", 1, time.Hour))

	assert.True(t, admits(limiter, "private"))
	assert.False(t, admits(limiter, "private"))

	assert.True(t, admits(limiter, "public"))
	assert.True(t, admits(limiter, "public"))
	assert.False(t, admits(limiter, "public"))
}

func TestLimiter_Unlimited(t *testing.T) {
	limiter := New(0, 0)

	for i := 0; i < 1000; i++ {
		assert.NoError(t, limiter.Wait(context.Background(), "any"))
	}
}

func TestLimiter_Metrics(t *testing.T) {
	limiter := New(2, time.Hour)

	admits(limiter, "a")
	admits(limiter, "a")
	admits(limiter, "a")

	m := limiter.Metrics()
	assert.Equal(t, int64(3), m.TotalRequests)
	assert.Equal(t, int64(2), m.AllowedRequests)
	assert.Equal(t, int64(1), m.DeniedRequests)
}

func TestLimiter_Concurrent(t *testing.T) {
	limiter := New(1000, time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = limiter.Wait(context.Background(), "v5/market/instruments-info")
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), limiter.Metrics().AllowedRequests)
}

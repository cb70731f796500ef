package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Limiter throttles outgoing requests with one shared budget and optional per-endpoint budgets.
// Every request draws from the shared budget; requests to an endpoint with its own bucket
// additionally draw from that bucket.
type Limiter struct {
	global  *rate.Limiter
	mu      sync.RWMutex
	buckets map[string]*rate.Limiter
	metrics *Metrics
}

// Metrics tracks statistics about limiter usage.
type Metrics struct {
	totalRequests   atomic.Int64
	allowedRequests atomic.Int64
	deniedRequests  atomic.Int64
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithBucket gives an endpoint its own budget of requests per period on top of the shared one.
func WithBucket(endpoint string, requests int, period time.Duration) Option {
	return func(l *Limiter) {
		l.buckets[endpoint] = newLimiter(requests, period)
	}
}

// New creates a Limiter allowing requests per period across all endpoints.
func New(requests int, period time.Duration, opts ...Option) *Limiter {
	l := &Limiter{
		global:  newLimiter(requests, period),
		buckets: make(map[string]*rate.Limiter),
		metrics: &Metrics{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func newLimiter(requests int, period time.Duration) *rate.Limiter {
	if requests <= 0 || period <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(float64(requests)/period.Seconds()), requests)
}

// Wait blocks until the endpoint's bucket, if any, and the shared budget allow one request.
// It returns early with the context error when ctx is done first. The bucket is drawn
// first so that a request refused by its own bucket leaves the shared budget untouched.
func (l *Limiter) Wait(ctx context.Context, endpoint string) error {
	l.metrics.totalRequests.Add(1)

	if bucket := l.bucket(endpoint); bucket != nil {
		if err := bucket.Wait(ctx); err != nil {
			l.metrics.deniedRequests.Add(1)
			return fmt.Errorf("rate limit wait %s: %w", endpoint, err)
		}
	}
	if err := l.global.Wait(ctx); err != nil {
		l.metrics.deniedRequests.Add(1)
		return fmt.Errorf("rate limit wait: %w", err)
	}

	l.metrics.allowedRequests.Add(1)
	return nil
}

func (l *Limiter) bucket(endpoint string) *rate.Limiter {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.buckets[endpoint]
}

// Metrics returns a snapshot of the current limiter statistics.
func (l *Limiter) Metrics() MetricsSnapshot {
	l.mu.RLock()
	buckets := len(l.buckets)
	l.mu.RUnlock()

	return MetricsSnapshot{
		TotalRequests:   l.metrics.totalRequests.Load(),
		AllowedRequests: l.metrics.allowedRequests.Load(),
		DeniedRequests:  l.metrics.deniedRequests.Load(),
		BucketCount:     buckets,
	}
}

// MetricsSnapshot is a point-in-time capture of limiter statistics.
type MetricsSnapshot struct {
	TotalRequests   int64
	AllowedRequests int64
	DeniedRequests  int64
	// BucketCount is the number of endpoints with their own budget.
	BucketCount int
}

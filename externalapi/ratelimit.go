package externalapi

import (
	"context"
	"sync"
	"time"

	"github.com/juju/ratelimit"
)

// Limiter throttles outbound API calls. Callers block until a slot is
// available; nothing is rejected.
type Limiter interface {
	Wait(ctx context.Context) error
}

// BucketLimiter enforces the public API quota client-side: a token bucket
// (4 tokens/sec, burst 4) plus a minimum spacing between requests. State is
// owned by the limiter instance, one per client.
type BucketLimiter struct {
	bucket     *ratelimit.Bucket
	minSpacing time.Duration

	mu       sync.Mutex
	lastCall time.Time
}

// NewBucketLimiter builds a limiter with the given sustained rate, burst
// capacity and minimum spacing between consecutive requests.
func NewBucketLimiter(ratePerSec float64, capacity int64, minSpacing time.Duration) *BucketLimiter {
	return &BucketLimiter{
		bucket:     ratelimit.NewBucketWithRate(ratePerSec, capacity),
		minSpacing: minSpacing,
	}
}

// NewDefaultLimiter matches the published OpenFDA quota: 4 requests per
// second with at least 250ms between requests.
func NewDefaultLimiter() *BucketLimiter {
	return NewBucketLimiter(4, 4, 250*time.Millisecond)
}

// Wait blocks until the next request may be issued, or until ctx is done.
func (l *BucketLimiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	var spacing time.Duration
	if !l.lastCall.IsZero() {
		if since := time.Since(l.lastCall); since < l.minSpacing {
			spacing = l.minSpacing - since
		}
	}
	l.lastCall = time.Now().Add(spacing)
	l.mu.Unlock()

	wait := l.bucket.Take(1)
	if spacing > wait {
		wait = spacing
	}
	if wait <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NopLimiter never throttles. Used in tests.
type NopLimiter struct{}

// Wait returns immediately.
func (NopLimiter) Wait(ctx context.Context) error { return ctx.Err() }

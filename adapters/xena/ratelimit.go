package xena

import (
	"context"
	"sync"
	"time"
)

// RateLimiter enforces a simple requests-per-minute budget between calls to
// the data service.
type RateLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

// NewRateLimiter creates a limiter allowing ratePerMinute requests.
func NewRateLimiter(ratePerMinute int) *RateLimiter {
	if ratePerMinute <= 0 {
		ratePerMinute = 60
	}
	return &RateLimiter{interval: time.Minute / time.Duration(ratePerMinute)}
}

// Wait blocks until the next request slot or the context is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	now := time.Now()
	wait := r.interval - now.Sub(r.last)
	if wait < 0 {
		wait = 0
	}
	r.last = now.Add(wait)
	r.mu.Unlock()

	if wait == 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

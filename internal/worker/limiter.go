package worker

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter spaces out calls per named service. Each service gets its own
// token bucket with burst 1, so consecutive calls are separated by at
// least the configured delay.
type Limiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	minDelay time.Duration
}

// NewLimiter creates a limiter enforcing minDelay between calls to the
// same service. A non-positive delay disables limiting.
func NewLimiter(minDelay time.Duration) *Limiter {
	return &Limiter{
		limiters: make(map[string]*rate.Limiter),
		minDelay: minDelay,
	}
}

// Wait blocks until the next call to service is allowed or ctx ends.
func (l *Limiter) Wait(ctx context.Context, service string) error {
	return l.getLimiter(service).Wait(ctx)
}

// Allow reports whether a call to service may proceed right now.
func (l *Limiter) Allow(service string) bool {
	return l.getLimiter(service).Allow()
}

// getLimiter returns the limiter for a service, creating it on first use.
func (l *Limiter) getLimiter(service string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[service]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := l.limiters[service]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(delayToRate(l.minDelay), 1)
	l.limiters[service] = limiter

	return limiter
}

// SetServiceDelay overrides the delay for a specific service.
func (l *Limiter) SetServiceDelay(service string, minDelay time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.limiters[service] = rate.NewLimiter(delayToRate(minDelay), 1)
}

// WaitWithDelay waits for rate limit clearance and then an additional
// delay, used for backoff after failed calls.
func (l *Limiter) WaitWithDelay(ctx context.Context, service string, additionalDelay time.Duration) error {
	if err := l.Wait(ctx, service); err != nil {
		return err
	}

	if additionalDelay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(additionalDelay):
		}
	}

	return nil
}

func delayToRate(minDelay time.Duration) rate.Limit {
	if minDelay <= 0 {
		return rate.Inf
	}
	return rate.Every(minDelay)
}

package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	initialBackoff = 250 * time.Millisecond
	maxBackoff     = 30 * time.Second
)

// Limiter throttles calls to a remote API and backs off after HTTP 429
type Limiter struct {
	limiter *rate.Limiter
	name    string

	mu          sync.Mutex
	backoff     time.Duration
	limitedOnce bool
}

// NewLimiter creates a limiter allowing perMinute requests per minute.
// Burst is a tenth of the per-minute budget, between 1 and 5.
func NewLimiter(name string, perMinute int) *Limiter {
	if perMinute < 1 {
		perMinute = 1
	}
	burst := min(max(perMinute/10, 1), 5)

	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), burst),
		name:    name,
		backoff: initialBackoff,
	}
}

// Wait blocks until a token is available, plus the current backoff if the
// remote side has rate limited us since the last success.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return err
	}

	l.mu.Lock()
	pause := time.Duration(0)
	if l.limitedOnce {
		pause = l.backoff
	}
	l.mu.Unlock()

	if pause == 0 {
		return nil
	}

	timer := time.NewTimer(pause)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// SignalRateLimited doubles the backoff, capped at maxBackoff
func (l *Limiter) SignalRateLimited() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.limitedOnce {
		l.backoff = min(l.backoff*2, maxBackoff)
	}
	l.limitedOnce = true
}

// ResetBackoff clears the backoff after a successful request
func (l *Limiter) ResetBackoff() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.backoff = initialBackoff
	l.limitedOnce = false
}

// Backoff returns the pause Wait currently adds, zero when not rate limited
func (l *Limiter) Backoff() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.limitedOnce {
		return 0
	}
	return l.backoff
}

// Name returns the limiter name
func (l *Limiter) Name() string {
	return l.name
}

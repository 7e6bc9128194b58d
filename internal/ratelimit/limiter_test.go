package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestNewLimiter(t *testing.T) {
	limiter := NewLimiter("rates", 60) // 60 per minute = 1 per second, burst 5

	if limiter.Name() != "rates" {
		t.Errorf("Expected name 'rates', got '%s'", limiter.Name())
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for i := 0; i < 3; i++ {
		if err := limiter.Wait(ctx); err != nil {
			t.Errorf("Request %d should have been allowed within the burst: %v", i, err)
		}
	}
}

func TestNewLimiter_ClampsRate(t *testing.T) {
	limiter := NewLimiter("rates", 0)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := limiter.Wait(ctx); err != nil {
		t.Errorf("First request should be allowed even with a zero budget: %v", err)
	}
}

func TestLimiterWait(t *testing.T) {
	limiter := NewLimiter("rates", 120)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	if err := limiter.Wait(ctx); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("Wait took too long")
	}
}

func TestLimiterBackoff(t *testing.T) {
	limiter := NewLimiter("rates", 60)

	if limiter.Backoff() != 0 {
		t.Fatalf("Expected no backoff before any 429, got %s", limiter.Backoff())
	}

	limiter.SignalRateLimited()
	after1 := limiter.Backoff()
	if after1 != initialBackoff {
		t.Errorf("Expected first backoff %s, got %s", initialBackoff, after1)
	}

	limiter.SignalRateLimited()
	after2 := limiter.Backoff()
	if after2 <= after1 {
		t.Error("Backoff should increase on repeated rate limit signals")
	}

	for i := 0; i < 20; i++ {
		limiter.SignalRateLimited()
	}
	if limiter.Backoff() != maxBackoff {
		t.Errorf("Backoff should be capped at %s, got %s", maxBackoff, limiter.Backoff())
	}

	limiter.ResetBackoff()
	if limiter.Backoff() != 0 {
		t.Error("Backoff should be cleared after reset")
	}
}

func TestLimiterWaitHonoursBackoff(t *testing.T) {
	limiter := NewLimiter("rates", 600)
	limiter.SignalRateLimited()

	start := time.Now()
	if err := limiter.Wait(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < initialBackoff {
		t.Errorf("Expected Wait to pause at least %s, took %s", initialBackoff, elapsed)
	}
}

func TestLimiterContextCancellation(t *testing.T) {
	limiter := NewLimiter("rates", 1)
	if err := limiter.Wait(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := limiter.Wait(ctx); err == nil {
		t.Error("Expected error from cancelled context")
	}
}

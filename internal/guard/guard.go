package guard

import (
	"fmt"
	"sync"
	"time"
)

// Verdict is the outcome of a guard check.
type Verdict struct {
	Allowed bool
	Reason  string
	Guard   string
}

func allow() Verdict { return Verdict{Allowed: true} }

// RateLimiter is a sliding window limiter keyed by an arbitrary string,
// typically an account ID. It protects the wager placement path from
// runaway clients hammering the API between clock ticks.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	limit   int
	window  time.Duration
	now     func() time.Time
}

// NewRateLimiter creates a limiter allowing limit calls per key per window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		windows: make(map[string][]time.Time),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// Allow records an attempt for key and reports whether it fits the window.
func (rl *RateLimiter) Allow(key string) Verdict {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-rl.window)

	entries := rl.windows[key]
	valid := entries[:0]
	for _, t := range entries {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}

	if len(valid) >= rl.limit {
		rl.windows[key] = valid
		return Verdict{
			Allowed: false,
			Reason:  fmt.Sprintf("rate limit exceeded: %d per %s", rl.limit, rl.window),
			Guard:   "rate_limiter",
		}
	}

	rl.windows[key] = append(valid, now)
	return allow()
}

// IdempotencyGuard deduplicates requests carrying an Idempotency-Key header.
// A wager submitted twice with the same key is only placed once.
type IdempotencyGuard struct {
	mu   sync.Mutex
	seen map[string]bool
}

func NewIdempotencyGuard() *IdempotencyGuard {
	return &IdempotencyGuard{seen: make(map[string]bool)}
}

// Claim marks key as processed. An empty key always passes.
func (ig *IdempotencyGuard) Claim(key string) Verdict {
	if key == "" {
		return allow()
	}

	ig.mu.Lock()
	defer ig.mu.Unlock()

	if ig.seen[key] {
		return Verdict{
			Allowed: false,
			Reason:  "duplicate request: idempotency key already processed",
			Guard:   "idempotency",
		}
	}

	ig.seen[key] = true
	return allow()
}

// Release frees a key so a failed request can be retried with the same key.
func (ig *IdempotencyGuard) Release(key string) {
	ig.mu.Lock()
	defer ig.mu.Unlock()
	delete(ig.seen, key)
}

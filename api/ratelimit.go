package api

import (
	"sync"
	"time"
)

// RateLimiter is a fixed-window counter gating outbound API calls. It is
// a client-side courtesy throttle, not an enforcement boundary: the
// upstream provider applies its own limits regardless. A burst at the
// window boundary can momentarily allow up to twice the nominal rate;
// that is accepted.
type RateLimiter struct {
	mu       sync.Mutex
	maxCalls int
	window   time.Duration
	calls    []time.Time
	stats    RateLimiterStats

	now func() time.Time
}

// RateLimiterStats tracks limiter activity for the diagnostics view.
type RateLimiterStats struct {
	MaxCalls  int
	InWindow  int
	Remaining int
	Granted   int
	Denied    int
}

// NewRateLimiter creates a limiter allowing maxCalls per window.
func NewRateLimiter(maxCalls int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		maxCalls: maxCalls,
		window:   window,
		now:      time.Now,
	}
}

// Admit prunes expired timestamps, then grants and records a new call if
// under the cap. It never blocks; a higher layer may choose to wait and
// try again.
func (rl *RateLimiter) Admit() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	live := rl.calls[:0]
	for _, t := range rl.calls {
		if now.Sub(t) < rl.window {
			live = append(live, t)
		}
	}
	rl.calls = live

	if len(rl.calls) >= rl.maxCalls {
		rl.stats.Denied++
		return false
	}

	rl.calls = append(rl.calls, now)
	rl.stats.Granted++
	return true
}

// Stats returns a snapshot of the limiter counters.
func (rl *RateLimiter) Stats() RateLimiterStats {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	inWindow := 0
	for _, t := range rl.calls {
		if now.Sub(t) < rl.window {
			inWindow++
		}
	}

	stats := rl.stats
	stats.MaxCalls = rl.maxCalls
	stats.InWindow = inWindow
	stats.Remaining = rl.maxCalls - inWindow
	if stats.Remaining < 0 {
		stats.Remaining = 0
	}
	return stats
}

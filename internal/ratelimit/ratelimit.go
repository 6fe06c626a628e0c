// Package ratelimit provides a fixed-window request counter that bounds how
// many generation calls the process issues per window, independent of any
// server-side limits the provider enforces.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter is an in-memory fixed-window counter. The count resets when the
// current window expires; there is no carry-over between windows. Safe for
// concurrent use.
type Limiter struct {
	mu          sync.Mutex
	limit       int
	window      time.Duration
	count       int
	windowStart time.Time
	now         func() time.Time // injectable clock for tests
}

// New creates a limiter allowing limit requests per window. A limit of zero
// or below disables limiting.
func New(limit int, window time.Duration) *Limiter {
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Allow reports whether another request fits in the current window and
// consumes a slot when it does.
func (l *Limiter) Allow() bool {
	if l.limit <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.roll()

	if l.count >= l.limit {
		return false
	}
	l.count++
	return true
}

// Remaining returns the number of request slots left in the current window.
func (l *Limiter) Remaining() int {
	if l.limit <= 0 {
		return -1 // unlimited
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.roll()

	remaining := l.limit - l.count
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Reset returns when the current window ends and the counter clears.
func (l *Limiter) Reset() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.roll()
	return l.windowStart.Add(l.window)
}

// roll starts a fresh window if the current one has expired.
// Callers must hold l.mu.
func (l *Limiter) roll() {
	now := l.now()
	if l.windowStart.IsZero() || now.Sub(l.windowStart) >= l.window {
		l.windowStart = now
		l.count = 0
	}
}

// ABOUTME: Thread-safe sliding-window rate limiter keyed by user id.
// ABOUTME: Tracks request timestamps per key and prunes expired windows.

package ratelimit

import (
	"sync"
	"time"
)

// Limiter allows at most limit requests per key within a sliding window.
// A background goroutine periodically drops keys whose whole window has
// expired, so idle users don't accumulate memory.
type Limiter struct {
	mu     sync.Mutex
	seen   map[string][]time.Time
	limit  int
	window time.Duration
	done   chan struct{}
	closed bool

	// now is swappable for tests
	now func() time.Time
}

// New creates a limiter allowing limit requests per window for each key.
func New(limit int, window time.Duration) *Limiter {
	l := &Limiter{
		seen:   make(map[string][]time.Time),
		limit:  limit,
		window: window,
		done:   make(chan struct{}),
		now:    time.Now,
	}
	go l.sweep()
	return l
}

// Allow records one request for key and reports whether it is within the
// limit. Rejected requests are not recorded, so a client hammering the
// endpoint does not extend its own lockout.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	recent := l.seen[key][:0]
	for _, ts := range l.seen[key] {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}

	if len(recent) >= l.limit {
		l.seen[key] = recent
		return false
	}

	l.seen[key] = append(recent, now)
	return true
}

// sweep runs in a background goroutine, removing keys with no live entries.
func (l *Limiter) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.runSweep()
		case <-l.done:
			return
		}
	}
}

func (l *Limiter) runSweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.window)
	for key, times := range l.seen {
		live := false
		for _, ts := range times {
			if ts.After(cutoff) {
				live = true
				break
			}
		}
		if !live {
			delete(l.seen, key)
		}
	}
}

// Close stops the background sweep goroutine. Safe to call multiple times.
func (l *Limiter) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.closed {
		close(l.done)
		l.closed = true
	}
}

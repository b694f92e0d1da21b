// Package ratelimit implements a fixed-window request counter shared by the
// room actors and the stateless HTTP handlers.
package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// gcThreshold bounds the counter table; expired windows are swept
// opportunistically once the table grows past it.
const gcThreshold = 10000

// Quota is one named limit: at most Max events per Window.
type Quota struct {
	Max    int
	Window time.Duration
}

type window struct {
	count   int
	resetAt time.Time
}

// Limiter counts events per (subject, window) key. It is safe for concurrent
// use; the clock is injectable for tests.
type Limiter struct {
	clock func() time.Time

	mu      sync.Mutex
	windows map[string]*window
}

func New() *Limiter {
	return NewWithClock(time.Now)
}

func NewWithClock(clock func() time.Time) *Limiter {
	return &Limiter{
		clock:   clock,
		windows: make(map[string]*window),
	}
}

// Allow records one event for subject under the quota. It returns whether
// the event is admitted and, on denial, how long until the window resets.
func (l *Limiter) Allow(subject string, quota Quota) (bool, time.Duration) {
	now := l.clock()
	key := fmt.Sprintf("%s#%d", subject, now.UnixMilli()/quota.Window.Milliseconds())

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.windows) > gcThreshold {
		l.sweepLocked(now)
	}

	current, ok := l.windows[key]
	if !ok || now.After(current.resetAt) {
		l.windows[key] = &window{count: 1, resetAt: now.Add(quota.Window)}
		return true, 0
	}
	if current.count >= quota.Max {
		return false, current.resetAt.Sub(now)
	}
	current.count++
	return true, 0
}

func (l *Limiter) sweepLocked(now time.Time) {
	for key, w := range l.windows {
		if now.After(w.resetAt) {
			delete(l.windows, key)
		}
	}
}

package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// Clock returns the current time. Injectable for deterministic tests.
type Clock func() time.Time

// window is a rolling-window counter
type window struct {
	count       int
	windowStart time.Time
}

// Limiter tracks in-process request counters. State is process-scoped and
// never persisted; each horizontally scaled instance counts independently,
// which is an accepted weakness of this design, not a bug. Key-space grows
// for the process lifetime.
//
// Two distinct algorithms coexist on purpose:
//   - Allow uses a rolling window that resets relative to the first
//     request after expiry (caller quotas).
//   - AllowBucket uses fixed buckets keyed by floor(unix/size) that roll
//     over on the boundary (source quotas).
//
// Their reset-timing edge behavior differs and callers rely on that.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	buckets map[string]int
	now     Clock
}

// Option configures a Limiter
type Option func(*Limiter)

// WithClock replaces the wall clock, for tests
func WithClock(clock Clock) Option {
	return func(l *Limiter) {
		l.now = clock
	}
}

// New creates a Limiter
func New(opts ...Option) *Limiter {
	l := &Limiter{
		windows: make(map[string]*window),
		buckets: make(map[string]int),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow consumes one slot of the rolling window for key and reports
// whether the post-increment count is within limit. The slot is consumed
// even when the answer is false, so sustained hammering cannot probe for
// free.
func (l *Limiter) Allow(key string, size time.Duration, limit int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok {
		w = &window{windowStart: now}
		l.windows[key] = w
	}

	if now.Sub(w.windowStart) > size {
		w.count = 0
		w.windowStart = now
	}

	w.count++
	return w.count <= limit
}

// AllowBucket consumes one slot of the fixed bucket of the given size for
// key. Unlike Allow, a rejected request does not consume a slot: the
// bucket protects the upstream, and a rejected request never reaches it.
func (l *Limiter) AllowBucket(key string, size time.Duration, limit int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	bucket := fmt.Sprintf("%s:%d", key, l.now().Unix()/int64(size.Seconds()))
	if l.buckets[bucket] >= limit {
		return false
	}
	l.buckets[bucket]++
	return true
}

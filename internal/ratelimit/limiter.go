// Package ratelimit implements a per-client token bucket registry used to
// gate inbound API traffic.
package ratelimit

import (
	"sync"
	"time"
)

// Decision is the outcome of a single Allow call, including the header
// values the HTTP layer exposes.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// bucket holds the mutable state for one client.
type bucket struct {
	tokens  int
	resetAt time.Time
}

// Limiter is a registry of per-client token buckets. Buckets are created
// lazily with full capacity on first sight of a client and are never
// evicted, so memory grows with the number of distinct client identifiers.
// Refill is interval-based: when the interval elapses the bucket resets to
// full capacity rather than trickling tokens back.
type Limiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	capacity int
	interval time.Duration

	// now is replaceable in tests.
	now func() time.Time
}

// New creates a Limiter with the given bucket capacity and refill interval.
func New(capacity int, interval time.Duration) *Limiter {
	return &Limiter{
		buckets:  make(map[string]*bucket),
		capacity: capacity,
		interval: interval,
		now:      time.Now,
	}
}

// Allow consumes one token from the client's bucket if available. The
// consume is atomic under the registry lock, so concurrent requests from
// the same client cannot over-admit.
func (l *Limiter) Allow(clientID string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	b, ok := l.buckets[clientID]
	if !ok {
		b = &bucket{tokens: l.capacity, resetAt: now.Add(l.interval)}
		l.buckets[clientID] = b
	} else if !now.Before(b.resetAt) {
		b.tokens = l.capacity
		b.resetAt = now.Add(l.interval)
	}

	d := Decision{Limit: l.capacity, ResetAt: b.resetAt}
	if b.tokens > 0 {
		b.tokens--
		d.Allowed = true
	}
	d.Remaining = b.tokens
	return d
}

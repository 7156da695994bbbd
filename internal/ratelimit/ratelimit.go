package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter decides whether the caller identified by key may act now.
type Limiter interface {
	Allow(key string) bool
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// InMemoryLimiter keeps one token bucket per key in memory.
type InMemoryLimiter struct {
	buckets map[string]*bucket
	mu      sync.Mutex
	r       rate.Limit
	b       int
	idle    time.Duration
	now     func() time.Time
}

// NewInMemoryLimiter allows requests per window per key with the given burst.
// Example: NewInMemoryLimiter(30, time.Minute, 10) refills one token every 2s.
func NewInMemoryLimiter(requests int, per time.Duration, burst int) *InMemoryLimiter {
	if requests < 1 {
		requests = 1
	}
	if burst < 1 {
		burst = 1
	}
	return &InMemoryLimiter{
		buckets: make(map[string]*bucket),
		r:       rate.Every(per / time.Duration(requests)),
		b:       burst,
		idle:    10 * per,
		now:     time.Now,
	}
}

// Allow consumes one token from key's bucket.
func (l *InMemoryLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	bk, ok := l.buckets[key]
	if !ok {
		bk = &bucket{limiter: rate.NewLimiter(l.r, l.b)}
		l.buckets[key] = bk
	}
	bk.lastSeen = now
	return bk.limiter.AllowN(now, 1)
}

// Prune forgets buckets that have been idle long enough to be full again and
// returns how many were dropped.
func (l *InMemoryLimiter) Prune() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.idle)
	n := 0
	for key, bk := range l.buckets {
		if bk.lastSeen.Before(cutoff) {
			delete(l.buckets, key)
			n++
		}
	}
	return n
}

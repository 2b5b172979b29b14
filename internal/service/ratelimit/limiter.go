package ratelimit

import (
	"sync"
	"time"
)

const (
	// sweepEvery is the minimum clock time between idle-bucket sweeps.
	sweepEvery = time.Minute
	// DefaultIdleTTL drops buckets untouched for this long even if they never refill.
	DefaultIdleTTL = 10 * time.Minute
)

type bucket struct {
	tokens     float64
	capacity   float64
	refillRate float64 // tokens per second
	last       time.Time
}

// full reports whether the bucket would be back at capacity by now, which
// makes it indistinguishable from a fresh one.
func (b *bucket) full(now time.Time) bool {
	return b.tokens+now.Sub(b.last).Seconds()*b.refillRate >= b.capacity
}

// Limiter is a per-key token bucket. Idle buckets are pruned as Allow is called.
type Limiter struct {
	mu           sync.Mutex
	m            map[string]*bucket
	capacity     float64
	refillPerSec float64
	idleTTL      time.Duration
	lastSweep    time.Time
	now          func() time.Time
}

// New returns a limiter whose buckets hold capacity tokens refilled at refillPerSec.
// A zero capacity disables limiting.
func New(capacity, refillPerSec float64) *Limiter {
	return &Limiter{
		m:            make(map[string]*bucket),
		capacity:     capacity,
		refillPerSec: refillPerSec,
		idleTTL:      DefaultIdleTTL,
		now:          time.Now,
	}
}

func (l *Limiter) Enabled() bool { return l != nil && l.capacity > 0 }

// Allow returns true if one token can be consumed for key.
func (l *Limiter) Allow(key string) bool {
	if !l.Enabled() {
		return true
	}
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	if now.Sub(l.lastSweep) >= sweepEvery {
		l.sweep(now)
	}
	b, ok := l.m[key]
	if !ok {
		b = &bucket{tokens: l.capacity, capacity: l.capacity, refillRate: l.refillPerSec, last: now}
		l.m[key] = b
	}
	// refill
	elapsed := now.Sub(b.last).Seconds()
	if elapsed > 0 {
		b.tokens += elapsed * b.refillRate
		if b.tokens > b.capacity {
			b.tokens = b.capacity
		}
		b.last = now
	}
	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// Len reports the number of tracked keys.
func (l *Limiter) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.m)
}

// sweep drops buckets that have refilled completely or sat idle past idleTTL.
func (l *Limiter) sweep(now time.Time) {
	for k, b := range l.m {
		if b.full(now) || now.Sub(b.last) >= l.idleTTL {
			delete(l.m, k)
		}
	}
	l.lastSweep = now
}

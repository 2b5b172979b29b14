package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryOption configures the in-process cache.
type MemoryOption func(*MemoryConfig)

// MemoryConfig holds in-process cache limits.
type MemoryConfig struct {
	MaxSize         int
	CleanupInterval time.Duration
}

// WithMemoryMaxSize caps the number of entries; the least recently used one is evicted first.
func WithMemoryMaxSize(size int) MemoryOption {
	return func(c *MemoryConfig) {
		c.MaxSize = size
	}
}

// WithMemoryCleanup sets the janitor interval. Zero disables the janitor.
func WithMemoryCleanup(interval time.Duration) MemoryOption {
	return func(c *MemoryConfig) {
		c.CleanupInterval = interval
	}
}

type entry struct {
	v    []byte
	exp  time.Time
	used uint64
}

// TTLCache is an in-process BytesCache with per-entry expiry, LRU eviction
// at MaxSize and a background janitor that drops expired entries.
type TTLCache struct {
	mu      sync.Mutex
	m       map[string]*entry
	maxSize int
	tick    uint64
	now     func() time.Time

	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

var _ BytesCache = (*TTLCache)(nil)

func NewTTLCache(opts ...MemoryOption) *TTLCache {
	cfg := &MemoryConfig{
		MaxSize:         1000,
		CleanupInterval: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	c := &TTLCache{
		m:       make(map[string]*entry),
		maxSize: cfg.MaxSize,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	if cfg.CleanupInterval > 0 {
		c.ticker = time.NewTicker(cfg.CleanupInterval)
		go c.cleanupExpired()
	}
	return c
}

func (c *TTLCache) GetBytes(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.m[key]
	if !ok {
		return nil, false, nil
	}
	if e.expired(c.now()) {
		delete(c.m, key)
		return nil, false, nil
	}
	c.tick++
	e.used = c.tick
	return e.v, true, nil
}

func (c *TTLCache) SetBytes(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var exp time.Time
	if ttl > 0 {
		exp = c.now().Add(ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.m[key]; !ok && c.maxSize > 0 && len(c.m) >= c.maxSize {
		c.purgeLocked()
		if len(c.m) >= c.maxSize {
			c.evictLRU()
		}
	}
	c.tick++
	c.m[key] = &entry{v: value, exp: exp, used: c.tick}
	return nil
}

// Purge drops every expired entry and returns how many were removed.
func (c *TTLCache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.purgeLocked()
}

// Len reports the number of stored entries, expired ones not yet purged included.
func (c *TTLCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}

// Close stops the janitor. It is safe to call more than once.
func (c *TTLCache) Close() error {
	c.once.Do(func() {
		if c.ticker != nil {
			c.ticker.Stop()
		}
		close(c.done)
	})
	return nil
}

func (c *TTLCache) purgeLocked() int {
	now := c.now()
	n := 0
	for k, e := range c.m {
		if e.expired(now) {
			delete(c.m, k)
			n++
		}
	}
	return n
}

func (c *TTLCache) evictLRU() {
	var oldestKey string
	var oldest uint64
	for k, e := range c.m {
		if oldestKey == "" || e.used < oldest {
			oldestKey, oldest = k, e.used
		}
	}
	if oldestKey != "" {
		delete(c.m, oldestKey)
	}
}

func (c *TTLCache) cleanupExpired() {
	for {
		select {
		case <-c.ticker.C:
			c.Purge()
		case <-c.done:
			return
		}
	}
}

func (e *entry) expired(now time.Time) bool {
	return !e.exp.IsZero() && now.After(e.exp)
}

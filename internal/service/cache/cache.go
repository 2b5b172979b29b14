package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// BytesCache stores rendered responses keyed by request.
type BytesCache interface {
	GetBytes(ctx context.Context, key string) (b []byte, ok bool, err error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Backend names accepted by New.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// New builds the cache for backend. BackendNone returns nil, which callers treat as disabled.
// memOpts apply to BackendMemory only.
func New(backend string, redisCfg RedisConfig, memOpts ...MemoryOption) (BytesCache, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case BackendNone, "":
		return nil, nil
	case BackendMemory:
		return NewTTLCache(memOpts...), nil
	case BackendRedis:
		return NewRedisCache(redisCfg), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", backend)
	}
}

// Key derives a compact cache key from a namespace, the snapshot generation and request parts.
func Key(namespace string, generation int64, parts ...string) string {
	h := sha1.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("coinscope:%s:%d:%s", namespace, generation, hex.EncodeToString(h.Sum(nil))[:16])
}

package ratelimit

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_ExhaustAndRefill(t *testing.T) {
	now := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New(2, 1)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"), "buckets are per key")

	now = now.Add(1500 * time.Millisecond)
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
}

func TestLimiter_Disabled(t *testing.T) {
	l := New(0, 0)
	assert.False(t, l.Enabled())
	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow("k"))
	}
	var nilLimiter *Limiter
	assert.True(t, nilLimiter.Allow("k"))
}

func TestLimiter_PrunesIdleBuckets(t *testing.T) {
	now := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New(2, 1)
	l.now = func() time.Time { return now }

	for i := 0; i < 500; i++ {
		l.Allow(fmt.Sprintf("10.0.%d.%d", i/256, i%256))
	}
	assert.Equal(t, 500, l.Len())

	// every bucket refills within two seconds, so the next sweep drops them all
	now = now.Add(2 * time.Minute)
	assert.True(t, l.Allow("10.9.9.9"))
	assert.Equal(t, 1, l.Len())
}

func TestLimiter_SweepKeepsDrainedBuckets(t *testing.T) {
	now := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New(2, 0)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("busy"))
	assert.True(t, l.Allow("busy"))
	now = now.Add(2 * time.Minute)
	assert.False(t, l.Allow("busy"), "a drained bucket survives sweeps until idleTTL")

	now = now.Add(DefaultIdleTTL)
	assert.True(t, l.Allow("busy"))
	assert.Equal(t, 1, l.Len())
}

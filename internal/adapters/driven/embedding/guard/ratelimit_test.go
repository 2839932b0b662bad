package guard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Unlimited(t *testing.T) {
	r := NewRateLimiter(0, 0)
	for range 100 {
		assert.True(t, r.Allow())
	}
}

func TestRateLimiter_Burst(t *testing.T) {
	r := NewRateLimiter(0.001, 2)
	assert.True(t, r.Allow())
	assert.True(t, r.Allow())
	assert.False(t, r.Allow())
}

func TestRateLimiter_Backoff(t *testing.T) {
	r := NewRateLimiter(0, 1)
	r.Backoff(time.Hour)
	assert.False(t, r.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Wait(ctx), context.DeadlineExceeded)

	// A shorter backoff does not shorten the current one.
	r.Backoff(time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	assert.False(t, r.Allow())
}

func TestRateLimiter_WaitAfterBackoffExpires(t *testing.T) {
	r := NewRateLimiter(0, 1)
	r.Backoff(5 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, r.Wait(ctx))
}

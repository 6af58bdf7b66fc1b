package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_BurstPerKey(t *testing.T) {
	l := New(0.001, 2)
	assert.True(t, l.Allow("query1.finance.yahoo.com"))
	assert.True(t, l.Allow("query1.finance.yahoo.com"))
	assert.False(t, l.Allow("query1.finance.yahoo.com"))
	assert.True(t, l.Allow("other.host"))
}

func TestLimiter_WaitHonoursContext(t *testing.T) {
	l := New(0.001, 1)
	assert.True(t, l.Allow("h"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, l.Wait(ctx, "h"))
}

func TestLimiter_Unlimited(t *testing.T) {
	l := New(0, 1)
	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow("h"))
	}
}

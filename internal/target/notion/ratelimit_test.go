package notion

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBucket_BurstThenPaced(t *testing.T) {
	tb := NewTokenBucket(100, 2)

	start := time.Now()
	for i := 0; i < 2; i++ {
		require.NoError(t, tb.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond, "burst capacity is free")

	// The third call has to wait for a refill.
	require.NoError(t, tb.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)
}

func TestTokenBucket_ContextCancelled(t *testing.T) {
	tb := NewTokenBucket(0.001, 1)
	require.NoError(t, tb.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := tb.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTokenBucket_Defaults(t *testing.T) {
	tb := NewTokenBucket(0, 0)
	assert.Equal(t, 3.0, tb.refillRate)
	assert.Equal(t, 1.0, tb.capacity)
}

package ratelimiter_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"symbol_backend/internal/shared/ratelimiter"
)

func TestIntervalLimiter_SpacesCalls(t *testing.T) {
	t.Parallel()

	rl := ratelimiter.NewIntervalLimiter(20 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, rl.WaitIfNeeded(ctx))
	}

	// 1回目は即時、残り2回は 20ms ずつ待つ
	assert.GreaterOrEqual(t, time.Since(start), 35*time.Millisecond)
}

func TestIntervalLimiter_ZeroDelayDoesNotWait(t *testing.T) {
	t.Parallel()

	rl := ratelimiter.NewIntervalLimiter(0)
	start := time.Now()
	for i := 0; i < 100; i++ {
		require.NoError(t, rl.WaitIfNeeded(context.Background()))
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestRateLimiter_BurstUpToLimit(t *testing.T) {
	t.Parallel()

	rl := ratelimiter.NewRateLimiter(5, time.Minute)
	start := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, rl.WaitIfNeeded(context.Background()))
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestRateLimiter_CancelledWhileWaiting(t *testing.T) {
	t.Parallel()

	rl := ratelimiter.NewIntervalLimiter(time.Hour)
	require.NoError(t, rl.WaitIfNeeded(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := rl.WaitIfNeeded(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

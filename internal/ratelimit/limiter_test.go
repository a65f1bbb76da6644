package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWaitEnforcesSpacing(t *testing.T) {
	t.Parallel()

	l := New(Config{MinSpacing: 30 * time.Millisecond, Provider: "test"})

	start := time.Now()
	require.NoError(t, l.Wait(context.Background()))
	require.NoError(t, l.Wait(context.Background()))
	elapsed := time.Since(start)

	// First call consumes the burst token; second must wait roughly one
	// spacing interval.
	require.GreaterOrEqual(t, elapsed, 25*time.Millisecond)
}

func TestWaitIsUnboundedWhenSpacingDisabled(t *testing.T) {
	t.Parallel()

	l := New(Config{})

	start := time.Now()
	for i := 0; i < 100; i++ {
		require.NoError(t, l.Wait(context.Background()))
	}
	require.Less(t, time.Since(start), time.Second)
}

func TestWaitHonorsContextCancellation(t *testing.T) {
	t.Parallel()

	l := New(Config{MinSpacing: time.Hour, Provider: "test"})
	require.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := l.Wait(ctx)
	require.Error(t, err)
	require.Contains(t, err.Error(), "rate limit wait")
}

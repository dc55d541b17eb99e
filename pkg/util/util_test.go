package util

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPause(t *testing.T) {
	ctx := context.Background()

	start := time.Now()
	require.False(t, Pause(ctx, 20*time.Millisecond))
	require.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	require.False(t, Pause(ctx, 0))
}

func TestPauseCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.True(t, Pause(ctx, 0))

	start := time.Now()
	require.True(t, Pause(ctx, time.Hour))
	require.Less(t, time.Since(start), time.Second)
}

func TestLogRecover(t *testing.T) {
	require.NotPanics(t, func() {
		defer LogRecover()
		panic(errors.New("boom"))
	})

	require.NotPanics(t, func() {
		defer LogRecover()
		panic("not an error")
	})
}

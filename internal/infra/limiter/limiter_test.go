package limiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireRespectsConcurrency(t *testing.T) {
	l := New(1, 1000)

	release, err := l.Acquire(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Acquire(ctx)
	assert.Error(t, err, "second slot must not be available")

	release()

	release2, err := l.Acquire(context.Background())
	require.NoError(t, err)
	release2()
}

func TestAcquireHonoursContext(t *testing.T) {
	l := New(1, 1000)
	release, err := l.Acquire(context.Background())
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = l.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFractionalRateStillAllowsOne(t *testing.T) {
	l := New(2, 0.5)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	release, err := l.Acquire(ctx)
	require.NoError(t, err)
	release()
}

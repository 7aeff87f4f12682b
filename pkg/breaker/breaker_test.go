package breaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBackend = errors.New("backend down")

func failing(ctx context.Context) error { return errBackend }
func succeeding(ctx context.Context) error { return nil }

func TestOpensAfterConsecutiveFailures(t *testing.T) {
	b := New(Config{FailureThreshold: 3, Cooldown: time.Minute, CallTimeout: time.Second})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, b.Do(ctx, failing), errBackend)
	}
	assert.Equal(t, StateOpen, b.State())

	// rejected without invoking the call
	assert.ErrorIs(t, b.Do(ctx, failing), ErrOpen)
}

func TestSuccessResetsFailureCount(t *testing.T) {
	b := New(Config{FailureThreshold: 2, Cooldown: time.Minute, CallTimeout: time.Second})
	ctx := context.Background()

	require.ErrorIs(t, b.Do(ctx, failing), errBackend)
	require.NoError(t, b.Do(ctx, succeeding))
	require.ErrorIs(t, b.Do(ctx, failing), errBackend)

	assert.Equal(t, StateClosed, b.State())
}

func TestHalfOpenProbeRecovers(t *testing.T) {
	b := New(Config{FailureThreshold: 1, Cooldown: 10 * time.Millisecond, CallTimeout: time.Second})
	ctx := context.Background()

	require.ErrorIs(t, b.Do(ctx, failing), errBackend)
	require.Equal(t, StateOpen, b.State())

	time.Sleep(20 * time.Millisecond)

	require.NoError(t, b.Do(ctx, succeeding))
	assert.Equal(t, StateClosed, b.State())
}

func TestHalfOpenProbeFailureReopens(t *testing.T) {
	b := New(Config{FailureThreshold: 1, Cooldown: 10 * time.Millisecond, CallTimeout: time.Second})
	ctx := context.Background()

	require.ErrorIs(t, b.Do(ctx, failing), errBackend)
	time.Sleep(20 * time.Millisecond)

	require.ErrorIs(t, b.Do(ctx, failing), errBackend)
	assert.Equal(t, StateOpen, b.State())
	assert.ErrorIs(t, b.Do(ctx, failing), ErrOpen)
}

func TestCallTimeoutApplies(t *testing.T) {
	b := New(Config{FailureThreshold: 5, Cooldown: time.Minute, CallTimeout: 10 * time.Millisecond})

	err := b.Do(context.Background(), func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

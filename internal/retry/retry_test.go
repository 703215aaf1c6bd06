package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/tenderscan/internal/retry"
)

func fastConfig() retry.Config {
	return retry.Config{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     10 * time.Millisecond,
	}
}

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	t.Parallel()

	attempts := 0
	err := retry.Do(context.Background(), fastConfig(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("connection refused")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDoStopsOnNonRetryableError(t *testing.T) {
	t.Parallel()

	permanent := errors.New("invalid credentials")

	attempts := 0
	err := retry.Do(context.Background(), fastConfig(), func() error {
		attempts++
		return permanent
	})

	require.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, attempts)
}

func TestDoExhaustsAttempts(t *testing.T) {
	t.Parallel()

	attempts := 0
	err := retry.Do(context.Background(), fastConfig(), func() error {
		attempts++
		return errors.New("i/o timeout")
	})

	require.ErrorIs(t, err, retry.ErrMaxAttemptsExceeded)
	assert.Equal(t, 3, attempts)
}

func TestDoHonorsCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := retry.Do(ctx, fastConfig(), func() error {
		return errors.New("timeout")
	})

	require.ErrorIs(t, err, retry.ErrContextCancelled)
}

func TestDefaultIsRetryable(t *testing.T) {
	t.Parallel()

	assert.True(t, retry.DefaultIsRetryable(errors.New("session not created: grid busy")))
	assert.True(t, retry.DefaultIsRetryable(errors.New("dial tcp: connection reset by peer")))
	assert.False(t, retry.DefaultIsRetryable(errors.New("row not found")))
	assert.False(t, retry.DefaultIsRetryable(nil))
}

func TestLinearBackoffDelays(t *testing.T) {
	t.Parallel()

	cfg := retry.Config{
		MaxAttempts:  3,
		InitialDelay: 20 * time.Millisecond,
		MaxDelay:     time.Second,
		Backoff:      retry.BackoffLinear,
	}

	start := time.Now()
	err := retry.Do(context.Background(), cfg, func() error {
		return errors.New("timeout")
	})
	elapsed := time.Since(start)

	require.ErrorIs(t, err, retry.ErrMaxAttemptsExceeded)
	// Delays of 20ms then 40ms between the three attempts.
	assert.GreaterOrEqual(t, elapsed, 60*time.Millisecond)
}

package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTestError = errors.New("test error")

func fastConfig(maxAttempts int) Config {
	return Config{
		Enabled:      true,
		MaxAttempts:  maxAttempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestRetry_SuccessOnFirstAttempt(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), fastConfig(3), func() error {
		attempts++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRetry_SuccessAfterRetries(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), fastConfig(3), func() error {
		attempts++
		if attempts < 3 {
			return errTestError
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetry_MaxAttemptsExceeded(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), fastConfig(2), func() error {
		attempts++
		return errTestError
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, errTestError)
	assert.Equal(t, 3, attempts) // initial attempt + MaxAttempts
}

func TestRetry_Disabled(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), Config{Enabled: false}, func() error {
		attempts++
		return errTestError
	})

	assert.ErrorIs(t, err, errTestError)
	assert.Equal(t, 1, attempts)
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := Retry(ctx, fastConfig(5), func() error {
		attempts++
		return errTestError
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, attempts)
}

func TestCalculateDelay_CapsAtMaxDelay(t *testing.T) {
	cfg := Config{InitialDelay: 100 * time.Millisecond, MaxDelay: 300 * time.Millisecond, Multiplier: 2}

	assert.Equal(t, 100*time.Millisecond, calculateDelay(cfg, 0))
	assert.Equal(t, 200*time.Millisecond, calculateDelay(cfg, 1))
	assert.Equal(t, 300*time.Millisecond, calculateDelay(cfg, 2))
	assert.Equal(t, 300*time.Millisecond, calculateDelay(cfg, 5))
}

func TestPoll_StopsWhenDone(t *testing.T) {
	calls := 0
	n, done := Poll(context.Background(), PollConfig{Attempts: 5, Interval: time.Millisecond}, func(attempt int) bool {
		calls++
		return attempt == 2
	})

	assert.True(t, done)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, calls)
}

func TestPoll_ExhaustsBudget(t *testing.T) {
	calls := 0
	n, done := Poll(context.Background(), PollConfig{Attempts: 3, Interval: time.Millisecond}, func(int) bool {
		calls++
		return false
	})

	assert.False(t, done)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, calls)
}

func TestPoll_SingleAttemptDoesNotSleep(t *testing.T) {
	start := time.Now()
	n, done := Poll(context.Background(), PollConfig{Attempts: 1, Interval: time.Second}, func(int) bool {
		return false
	})

	assert.False(t, done)
	assert.Equal(t, 1, n)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestPoll_ZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	Poll(context.Background(), PollConfig{}, func(int) bool {
		calls++
		return false
	})

	assert.Equal(t, 1, calls)
}

func TestPoll_ContextCancelledDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	n, done := Poll(ctx, PollConfig{Attempts: 10, Interval: time.Second}, func(int) bool {
		calls++
		cancel()
		return false
	})

	assert.False(t, done)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, calls)
}

package reconciler

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = fmt.Errorf("%w: connection reset", ErrRemoteUnavailable)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{name: "nil error", err: nil, retryable: false},
		{name: "context canceled", err: context.Canceled, retryable: false},
		{name: "context deadline exceeded", err: context.DeadlineExceeded, retryable: false},
		{name: "remote unavailable", err: ErrRemoteUnavailable, retryable: true},
		{name: "wrapped remote unavailable", err: errTransient, retryable: true},
		{name: "not found", err: ErrNotFound, retryable: false},
		{name: "invalid interest", err: fmt.Errorf("%w: empty", ErrInvalidInterest), retryable: false},
		{name: "timeout", err: ErrTimeout, retryable: false},
		{
			name:      "unavailable but cancelled",
			err:       fmt.Errorf("%w: %w", context.Canceled, ErrRemoteUnavailable),
			retryable: false,
		},
		{name: "unknown error", err: errors.New("some unknown error"), retryable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, isRetryable(tt.err))
		})
	}
}

func TestRetryWithBackoff_Success(t *testing.T) {
	attempts := 0

	err := retryWithBackoff(context.Background(), 3, time.Millisecond, func() error {
		attempts++
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, attempts, "Should succeed on first attempt")
}

func TestRetryWithBackoff_SuccessAfterRetries(t *testing.T) {
	attempts := 0

	err := retryWithBackoff(context.Background(), 3, time.Millisecond, func() error {
		attempts++
		if attempts < 3 {
			return errTransient
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, attempts, "Should succeed on third attempt")
}

func TestRetryWithBackoff_NonRetryableError(t *testing.T) {
	attempts := 0
	expectedErr := fmt.Errorf("%w: abc", ErrNotFound)

	err := retryWithBackoff(context.Background(), 3, time.Millisecond, func() error {
		attempts++
		return expectedErr
	})

	assert.Equal(t, expectedErr, err)
	assert.Equal(t, 1, attempts, "Should not retry non-retryable errors")
}

func TestRetryWithBackoff_MaxAttemptsExceeded(t *testing.T) {
	attempts := 0

	err := retryWithBackoff(context.Background(), 3, time.Millisecond, func() error {
		attempts++
		return errTransient
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "max attempts (3) exceeded")
	assert.ErrorIs(t, err, ErrRemoteUnavailable)
	assert.Equal(t, 3, attempts, "Should attempt exactly 3 times")
}

func TestRetryWithBackoff_SingleAttempt(t *testing.T) {
	attempts := 0

	err := retryWithBackoff(context.Background(), 1, time.Millisecond, func() error {
		attempts++
		return errTransient
	})

	assert.Equal(t, errTransient, err)
	assert.Equal(t, 1, attempts)
}

func TestRetryWithBackoff_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	err := retryWithBackoff(ctx, 3, time.Second, func() error {
		attempts++
		return errTransient
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, KindTimeout, KindOf(err))
	// Should have attempted once, then cancelled during backoff
	assert.Equal(t, 1, attempts, "Should stop retrying when context is cancelled")
}

func TestRetryWithBackoff_ExponentialBackoff(t *testing.T) {
	var attemptTimes []time.Time

	start := time.Now()
	err := retryWithBackoff(context.Background(), 3, 20*time.Millisecond, func() error {
		attemptTimes = append(attemptTimes, time.Now())
		return errTransient
	})

	require.Error(t, err)
	require.Len(t, attemptTimes, 3)

	// 20ms then 40ms between attempts
	assert.GreaterOrEqual(t, attemptTimes[1].Sub(attemptTimes[0]), 20*time.Millisecond)
	assert.GreaterOrEqual(t, attemptTimes[2].Sub(attemptTimes[1]), 40*time.Millisecond)
	assert.GreaterOrEqual(t, attemptTimes[2].Sub(start), 60*time.Millisecond)
}

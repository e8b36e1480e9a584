package reconciler

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// retryWithBackoff executes a store call with exponential backoff.
//
// The retry logic:
//   - Attempts the function up to maxAttempts times
//   - Backoff starts at the given duration and doubles after each attempt
//   - Only retries errors wrapping ErrRemoteUnavailable
//   - Respects context cancellation during sleep
//
// Returns:
//   - nil if the function succeeds on any attempt
//   - the original error if it is not retryable
//   - a wrapped last error once all attempts are used up
func retryWithBackoff(ctx context.Context, maxAttempts int, backoff time.Duration, fn func() error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	var lastErr error

	for i := 0; i < maxAttempts; i++ {
		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err

		if !isRetryable(err) {
			return err
		}

		// Don't sleep after the last attempt
		if i < maxAttempts-1 {
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("%w: %w", ctx.Err(), lastErr)
			case <-timer.C:
			}
			backoff *= 2
		}
	}

	if maxAttempts == 1 {
		return lastErr
	}
	return fmt.Errorf("max attempts (%d) exceeded, last error: %w", maxAttempts, lastErr)
}

// isRetryable reports whether a store error is transient. Stores translate
// their transport errors into ErrRemoteUnavailable; everything else
// (not found, invalid interest, context errors) is final.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return errors.Is(err, ErrRemoteUnavailable)
}

package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrCacheMiss is returned by [GetJSON] when nothing usable is stored.
	ErrCacheMiss = errors.New("cache miss")

	// ErrNetwork marks a failed round trip to a remote backend.
	ErrNetwork = errors.New("network error")
)

// RetryableError marks an error that [RetryWithBackoff] should retry.
type RetryableError struct{ Err error }

// Retryable wraps err as a RetryableError. Retryable(nil) is nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// Error returns the error message of the wrapped error.
func (e *RetryableError) Error() string { return e.Err.Error() }

// Unwrap returns the wrapped error.
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err carries a RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// retryDelay is the first backoff step; tests shorten it.
var retryDelay = time.Second

// RetryWithBackoff calls fn up to 3 times, doubling the delay after each
// retryable failure. Other errors are returned at once.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	const attempts = 3
	delay := retryDelay
	var lastErr error

	for i := 0; i < attempts; i++ {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

package store

import (
	"context"
	"errors"
	"time"
)

// retryableError marks a backend failure worth another attempt, such as a
// dropped connection.
type retryableError struct{ err error }

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

func retryable(err error) error {
	if err == nil {
		return nil
	}
	return &retryableError{err: err}
}

// retryDelay is the first backoff; it doubles on each attempt.
var retryDelay = 100 * time.Millisecond

// withRetry runs fn up to three times, retrying only errors wrapped with
// retryable. The returned error has the retry marker removed.
func withRetry(ctx context.Context, fn func() error) error {
	const attempts = 3
	delay := retryDelay
	var err error
	for i := range attempts {
		if err = fn(); err == nil {
			return nil
		}
		var re *retryableError
		if !errors.As(err, &re) {
			return err
		}
		err = re.err
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return err
}

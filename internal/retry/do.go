package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// permanentError marks an error that must not be retried.
type permanentError struct{ err error }

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent wraps err so Do returns it without further attempts.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// NotifyFunc observes a failed attempt before the wait that follows it.
type NotifyFunc func(attempt int, wait time.Duration, err error)

// Do calls fn until it succeeds, returns a permanent error, the policy runs
// out of retries or ctx ends. Attempts are numbered from 1.
// Exhaustion is reported as ErrExhausted wrapping the last error.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context, attempt int) error, notify NotifyFunc) error {
	if err := p.Validate(); err != nil {
		return err
	}

	var lastErr error
	for attempt := 1; attempt <= p.MaxRetries+1; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx, attempt)
		if err == nil {
			return nil
		}
		if IsPermanent(err) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		lastErr = err

		if attempt > p.MaxRetries {
			break
		}

		wait := p.wait(attempt)
		if notify != nil {
			notify(attempt, wait, err)
		}

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, p.MaxRetries+1, lastErr)
}

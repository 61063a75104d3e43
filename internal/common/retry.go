package common

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ridgelinecap/dealmatch/internal/service"
)

// WithRetry executes an operation, retrying rate-limited failures.
//
// Only errors wrapped in a RetryableError marked Retryable are retried; any
// other error returns immediately. A RetryAfter hint on the error overrides
// the backoff schedule, which otherwise grows linearly with the attempt
// number. The operation runs at most opts.MaxRetries+1 times; exhausting
// retries returns an error wrapping ErrRateLimitExhausted.
func WithRetry(ctx context.Context, operation func() error, opts service.RetryOptions) error {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = time.Second
	}

	attempts := opts.MaxRetries + 1

	for attempt := 1; attempt <= attempts; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}

		var retryableErr *RetryableError
		if !errors.As(err, &retryableErr) || !retryableErr.Retryable {
			return err
		}

		if attempt == attempts {
			return fmt.Errorf("%w after %d attempts: %v", ErrRateLimitExhausted, attempts, err)
		}

		delay := opts.BaseDelay * time.Duration(attempt)
		if retryableErr.RetryAfter > 0 {
			delay = retryableErr.RetryAfter
		}

		slog.Warn("Operation rate limited, retrying",
			"attempt", attempt,
			"max_attempts", attempts,
			"delay", delay,
			"error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return ErrRateLimitExhausted
}

// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
	"time"
)

// Common application errors.
var (
	// CRM errors.
	ErrRateLimit          = errors.New("rate limit exceeded")
	ErrRateLimitExhausted = errors.New("rate limit retries exhausted")
	ErrNotFound           = errors.New("not found")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// RetryableError wraps an error with retry-specific metadata. RetryAfter,
// when set, is a server-supplied delay hint that overrides the backoff
// schedule for the next attempt.
type RetryableError struct {
	Err        error
	RetryAfter time.Duration
	Retryable  bool
}

func (e *RetryableError) Error() string {
	return e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimit) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}

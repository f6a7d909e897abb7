package llm

import (
	"errors"
	"time"
)

// classifiedError tags an underlying failure as retryable or not. The
// client's retry loop only looks at the flag; callers unwrap as usual.
type classifiedError struct {
	transient bool
	err       error
}

func (e *classifiedError) Error() string { return e.err.Error() }

func (e *classifiedError) Unwrap() error { return e.err }

// NewTransientError marks an error as worth retrying (timeouts, overload,
// upstream 5xx).
func NewTransientError(err error) error {
	return &classifiedError{transient: true, err: err}
}

// NewFatalError marks an error as permanent (auth failures, malformed
// requests, unknown providers). The retry loop gives up immediately.
func NewFatalError(err error) error {
	return &classifiedError{transient: false, err: err}
}

// IsTransient reports whether the error was classified as retryable.
func IsTransient(err error) bool {
	var ce *classifiedError
	return errors.As(err, &ce) && ce.transient
}

// IsFatal reports whether the error was classified as permanent.
func IsFatal(err error) bool {
	var ce *classifiedError
	return errors.As(err, &ce) && !ce.transient
}

// RetryConfig bounds the retry loop around one completion request.
type RetryConfig struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int

	// BackoffBase is the wait before the first retry.
	BackoffBase time.Duration

	// BackoffMultiplier grows the wait on each further retry.
	BackoffMultiplier float64

	// MaxBackoff caps the wait regardless of attempt count.
	MaxBackoff time.Duration
}

// DefaultRetryConfig returns the retry policy for template generation.
// A user is waiting on the draft, so the waits stay short.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		BackoffBase:       time.Second,
		BackoffMultiplier: 2.0,
		MaxBackoff:        10 * time.Second,
	}
}

// Package retry re-runs operations which fail with a transient error, backing off exponentially between attempts. The
// SQLite log table uses it to wait out another connection or process holding the database write lock.
package retry

import (
	"fmt"
	"time"
)

const (
	// DefaultAttempts is the number of attempts made when none is configured.
	DefaultAttempts = 3

	// DefaultMinDelay is the delay before the first retry when none is configured.
	DefaultMinDelay = 50 * time.Millisecond

	// DefaultMaxDelay caps the delay between attempts when none is configured.
	DefaultMaxDelay = 2*time.Second + 500*time.Millisecond
)

// Options encapsulates the options available when retrying an operation.
type Options struct {
	// Attempts is the total number of times the operation is run, including the first.
	Attempts int

	// MinDelay is the delay before the first retry, it doubles for each subsequent retry.
	MinDelay time.Duration

	// MaxDelay caps the delay between attempts.
	MaxDelay time.Duration

	// Transient reports whether a failure is worth retrying, when <nil> every failure is.
	Transient func(err error) bool

	// OnRetry is run after a failed attempt which is about to be retried.
	OnRetry func(attempt int, delay time.Duration, err error)
}

func (o *Options) defaults() {
	if o.Attempts <= 0 {
		o.Attempts = DefaultAttempts
	}

	if o.MinDelay <= 0 {
		o.MinDelay = DefaultMinDelay
	}

	if o.MaxDelay < o.MinDelay {
		o.MaxDelay = max(DefaultMaxDelay, o.MinDelay)
	}
}

// Delay returns how long to wait after the given (one based) failed attempt.
func (o Options) Delay(attempt int) time.Duration {
	o.defaults()

	// Shifting any further overflows for every practical minimum delay
	shift := min(max(attempt-1, 0), 32)

	delay := o.MinDelay << shift
	if delay <= 0 || delay>>shift != o.MinDelay {
		return o.MaxDelay
	}

	return min(delay, o.MaxDelay)
}

// ExhaustedError is returned when every attempt failed with a transient error, it unwraps to the last failure.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Do runs the given function until it succeeds, fails with an error which isn't transient, or the attempts are used up.
func Do[T any](options Options, fn func(attempt int) (T, error)) (T, error) {
	options.defaults()

	var (
		payload T
		err     error
	)

	for attempt := 1; attempt <= options.Attempts; attempt++ {
		payload, err = fn(attempt)
		if err == nil || (options.Transient != nil && !options.Transient(err)) {
			return payload, err
		}

		if attempt == options.Attempts {
			break
		}

		delay := options.Delay(attempt)

		if options.OnRetry != nil {
			options.OnRetry(attempt, delay, err)
		}

		time.Sleep(delay)
	}

	return payload, &ExhaustedError{Attempts: options.Attempts, Err: err}
}

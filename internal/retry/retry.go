// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retry runs an operation under a bounded, linearly growing backoff.
package retry

import (
	"context"
	"fmt"
	"time"
)

// RetryBaseDelay is the wait after the first failed attempt. Tests override
// this to avoid real sleeps.
var RetryBaseDelay = 600 * time.Millisecond

// RetryStep is added to the wait for every further failed attempt.
var RetryStep = 500 * time.Millisecond

// Policy bounds the number of retries and their backoff schedule.
type Policy struct {
	// MaxRetries is the number of additional attempts after the first.
	// Negative values are treated as zero.
	MaxRetries int

	// Base is the wait after attempt 0 fails.
	Base time.Duration

	// Step is added to the wait per attempt index.
	Step time.Duration
}

// NewPolicy returns a Policy with the package default delays.
func NewPolicy(maxRetries int) Policy {
	return Policy{
		MaxRetries: maxRetries,
		Base:       RetryBaseDelay,
		Step:       RetryStep,
	}
}

// Delay returns the wait after the given failed attempt (0-based):
// Base + attempt*Step, i.e. 0.6s, 1.1s, 1.6s with the defaults.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	return p.Base + time.Duration(attempt)*p.Step
}

// Attempts returns the total number of calls the policy allows.
func (p Policy) Attempts() int {
	if p.MaxRetries < 0 {
		return 1
	}
	return p.MaxRetries + 1
}

// Error is returned by Do when every attempt failed.
type Error struct {
	Attempts int
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Do calls fn until it returns nil or the policy is exhausted. fn receives
// the 0-based attempt index. If the context is cancelled during a backoff
// wait Do returns ctx.Err() wrapped in an *Error.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context, attempt int) error) error {
	total := p.Attempts()
	var lastErr error

	for attempt := 0; attempt < total; attempt++ {
		err := fn(ctx, attempt)
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == total-1 {
			break
		}

		select {
		case <-ctx.Done():
			return &Error{Attempts: attempt + 1, Err: ctx.Err()}
		case <-time.After(p.Delay(attempt)):
		}
	}

	return &Error{Attempts: total, Err: lastErr}
}

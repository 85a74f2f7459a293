// Package retry runs operations with exponential backoff and jitter.
package retry

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

const (
	// DefaultAttempts is the default number of tries, including the first.
	DefaultAttempts = 3

	// DefaultBaseDelay is the delay before the first retry.
	DefaultBaseDelay = 100 * time.Millisecond

	// DefaultMaxDelay caps any single delay.
	DefaultMaxDelay = 5 * time.Second

	// JitterFactor is the ±percentage of jitter applied to delays.
	JitterFactor = 0.2 // ±20%
)

// Policy configures Do.
type Policy struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// DefaultPolicy returns the policy used for short database writes.
func DefaultPolicy() Policy {
	return Policy{
		Attempts:  DefaultAttempts,
		BaseDelay: DefaultBaseDelay,
		MaxDelay:  DefaultMaxDelay,
	}
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so Do stops retrying and returns it immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// NextDelay calculates the delay after the given 0-indexed failed attempt:
// base * 2^attempt, capped at ceiling, with ±20% jitter.
func NextDelay(attempt int, base, ceiling time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 30 {
		attempt = 30
	}

	delay := base << attempt
	if delay <= 0 || delay > ceiling {
		delay = ceiling
	}

	jitterRange := float64(delay) * JitterFactor
	jitter := (rand.Float64()*2 - 1) * jitterRange

	return time.Duration(float64(delay) + jitter)
}

// Do calls fn until it succeeds, returns a Permanent error, the attempts
// are exhausted, or ctx is done. The last error is returned.
func Do(ctx context.Context, policy Policy, fn func(ctx context.Context) error) error {
	if policy.Attempts <= 0 {
		policy.Attempts = DefaultAttempts
	}
	if policy.BaseDelay <= 0 {
		policy.BaseDelay = DefaultBaseDelay
	}
	if policy.MaxDelay <= 0 {
		policy.MaxDelay = DefaultMaxDelay
	}

	var err error
	for attempt := 0; attempt < policy.Attempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		if attempt == policy.Attempts-1 {
			break
		}

		timer := time.NewTimer(NextDelay(attempt, policy.BaseDelay, policy.MaxDelay))
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(err, ctx.Err())
		case <-timer.C:
		}
	}

	return err
}

// Package retry provides the bounded exponential backoff policy shared
// by the status applier and any other provider-facing call site.
package retry

import (
	"context"
	"errors"
	"time"
)

// Policy describes a bounded exponential backoff: MaxAttempts total
// attempts, waiting BaseDelay before the second attempt and multiplying
// the wait by Multiplier after each failure.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
}

// DefaultPolicy waits 1s then 2s between three attempts.
var DefaultPolicy = Policy{
	MaxAttempts: 3,
	BaseDelay:   time.Second,
	Multiplier:  2,
}

func (p Policy) normalized() Policy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.BaseDelay < 0 {
		p.BaseDelay = 0
	}
	if p.Multiplier < 1 {
		p.Multiplier = 1
	}
	return p
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string {
	return e.err.Error()
}

func (e *permanentError) Unwrap() error {
	return e.err
}

// Permanent marks err as not worth retrying; Do returns it immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do runs fn until it succeeds, fails permanently, exhausts the
// attempt budget, or ctx is done. The returned error is the last one
// fn produced, unwrapped from its permanent marker if it had one.
// An error exposing RetryAfter() overrides the backoff for the wait
// that follows it.
func Do(ctx context.Context, policy Policy, fn func(ctx context.Context) error) error {
	policy = policy.normalized()

	delay := policy.BaseDelay
	var lastErr error

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}

		var permanent *permanentError
		if errors.As(err, &permanent) {
			return permanent.err
		}
		lastErr = err

		if attempt == policy.MaxAttempts {
			break
		}

		wait := delay
		var hinted interface{ RetryAfter() time.Duration }
		if errors.As(err, &hinted) && hinted.RetryAfter() > 0 {
			wait = hinted.RetryAfter()
		}
		if err := sleep(ctx, wait); err != nil {
			return err
		}
		delay = time.Duration(float64(delay) * policy.Multiplier)
	}

	return lastErr
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

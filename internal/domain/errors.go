package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidPerson      = errors.New("invalid roster entry")
	ErrPersonNotFound     = errors.New("person not found")
	ErrCredentialNotFound = errors.New("credential not found")

	// Chat provider error taxonomy. Adapters map provider-specific
	// failures onto these so the retry policy can tell a throttle from
	// a revoked token.
	ErrRateLimited = errors.New("rate limited by chat provider")
	ErrForbidden   = errors.New("chat provider denied the request")
	ErrTransient   = errors.New("transient chat provider failure")
)

// RateLimitError is an ErrRateLimited that carries the wait the
// provider asked for, so a retry loop can honor it instead of its own
// backoff.
type RateLimitError struct {
	After time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited by chat provider, retry after %s", e.After)
}

func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

func (e *RateLimitError) RetryAfter() time.Duration {
	return e.After
}

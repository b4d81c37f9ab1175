// Package retry provides the single bounded-retry policy wrapped around
// atomic store operations. Only transient store failures are retried;
// conflict and validation errors are surfaced immediately since retrying
// them would re-apply a stale decision.
package retry

import (
	"context"
	"log/slog"
	"time"

	apperrors "github.com/hrygo/spotmatch/internal/errors"
)

const (
	// DefaultMaxAttempts is the total number of attempts (1 initial + retries).
	DefaultMaxAttempts = 3
	// DefaultInitialBackoff is the delay before the first retry.
	DefaultInitialBackoff = 100 * time.Millisecond
)

// Policy is a bounded retry policy with exponential backoff.
type Policy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
}

// DefaultPolicy returns the policy used for all store writes.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:    DefaultMaxAttempts,
		InitialBackoff: DefaultInitialBackoff,
	}
}

// Do runs fn, retrying only STORE_UNAVAILABLE failures up to the bound.
// The last error is returned once attempts are exhausted.
func (p Policy) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}
	backoff := p.InitialBackoff
	if backoff <= 0 {
		backoff = DefaultInitialBackoff
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if !apperrors.IsCode(err, apperrors.ErrCodeStoreUnavailable) {
			return err
		}
		if attempt == attempts {
			break
		}

		slog.Warn("transient store failure, retrying",
			"op", op,
			"attempt", attempt,
			"backoff", backoff,
			"error", err)

		select {
		case <-ctx.Done():
			return apperrors.ContextCanceled(ctx.Err())
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return err
}

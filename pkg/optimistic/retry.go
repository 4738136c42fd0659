// Package optimistic provides the single bounded-retry primitive behind
// every conditional read-modify-write in this codebase: pointer updates,
// capacity claims and canonical record mutations all go through Do.
package optimistic

import (
	"context"

	"github.com/bbthechange/hangoutsBackend-sub012/pkg/errors"
	"github.com/bbthechange/hangoutsBackend-sub012/pkg/observability"
)

// DefaultMaxAttempts bounds the retry loop. Contention is expected to be
// infrequent and short-lived, so retries are immediate with no backoff.
const DefaultMaxAttempts = 5

// Do runs op up to maxAttempts times. op must perform a fresh strongly
// consistent read, apply its mutation and write back conditioned on the
// version it read; a version-check failure surfaces as a Conflict error and
// triggers an immediate re-read. Any other error aborts the loop: capacity
// rejections, validation failures and repository errors are final answers.
// Exhausting the budget returns a Conflict the caller may retry wholesale.
func Do(ctx context.Context, maxAttempts int, op func(ctx context.Context) error) error {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		// A cancelled request is not a store failure; the context error
		// passes through so callers can tell the two apart.
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if !errors.IsConflict(lastErr) {
			return lastErr
		}
		observability.OptimisticConflicts.Inc()
	}

	observability.OptimisticExhaustions.Inc()
	return errors.Wrapf(lastErr, "optimistic update exhausted %d attempts", maxAttempts)
}

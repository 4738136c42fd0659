package optimistic

import (
	"context"
	"testing"

	"github.com/bbthechange/hangoutsBackend-sub012/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), 5, func(ctx context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesOnConflictOnly(t *testing.T) {
	calls := 0
	err := Do(context.Background(), 5, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.NewConflictError("version mismatch")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_NonConflictAbortsImmediately(t *testing.T) {
	calls := 0
	err := Do(context.Background(), 5, func(ctx context.Context) error {
		calls++
		return errors.NewCapacityExceededError("full")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.True(t, errors.IsCapacityExceeded(err))
}

func TestDo_ExhaustionReportsConflict(t *testing.T) {
	calls := 0
	err := Do(context.Background(), 5, func(ctx context.Context) error {
		calls++
		return errors.NewConflictError("version mismatch")
	})
	require.Error(t, err)
	assert.Equal(t, 5, calls)
	assert.True(t, errors.IsConflict(err))
}

func TestDo_ZeroAttemptsFallsBackToDefault(t *testing.T) {
	calls := 0
	err := Do(context.Background(), 0, func(ctx context.Context) error {
		calls++
		return errors.NewConflictError("version mismatch")
	})
	require.Error(t, err)
	assert.Equal(t, DefaultMaxAttempts, calls)
}

func TestDo_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Do(ctx, 5, func(ctx context.Context) error {
		calls++
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, 0, calls)
	// The context error comes back untouched, not as a store failure.
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.IsType(err, errors.ErrorTypeRepository))
}

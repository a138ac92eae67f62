package reindex

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	t.Run("succeeds on first attempt", func(t *testing.T) {
		attempts := 0
		err := RetryWithBackoff(ctx, func() error {
			attempts++
			return nil
		}, 3, time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, 1, attempts)
	})

	t.Run("succeeds after transient failures", func(t *testing.T) {
		attempts := 0
		err := RetryWithBackoff(ctx, func() error {
			attempts++
			if attempts < 3 {
				return errors.New("transient")
			}
			return nil
		}, 5, time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("returns last error when exhausted", func(t *testing.T) {
		lastErr := errors.New("still failing")
		attempts := 0
		err := RetryWithBackoff(ctx, func() error {
			attempts++
			return lastErr
		}, 3, time.Millisecond)
		require.ErrorIs(t, err, lastErr)
		assert.Equal(t, 3, attempts)
	})

	t.Run("rejects non-positive attempts", func(t *testing.T) {
		err := RetryWithBackoff(ctx, func() error { return nil }, 0, time.Millisecond)
		require.ErrorIs(t, err, ErrInvalidMaxAttempts)
	})

	t.Run("stops on cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(context.Background())
		cancel()

		attempts := 0
		err := RetryWithBackoff(cancelled, func() error {
			attempts++
			return errors.New("fail")
		}, 3, time.Millisecond)
		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 0, attempts)
	})

	t.Run("cancellation during backoff", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(context.Background())

		attempts := 0
		err := RetryWithBackoff(cancelled, func() error {
			attempts++
			cancel()
			return errors.New("fail")
		}, 3, time.Minute)
		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, attempts)
	})
}

package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFlaky = errors.New("flaky")

// recordSleep captures requested delays without waiting.
func recordSleep(into *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*into = append(*into, d)
		return nil
	}
}

func TestPolicy_Delays(t *testing.T) {
	t.Parallel()

	t.Run("Doubling", func(t *testing.T) {
		t.Parallel()
		p := Exponential(5, time.Second)
		assert.Equal(t, []time.Duration{
			1 * time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second,
		}, p.Delays())
	})

	t.Run("Capped", func(t *testing.T) {
		t.Parallel()
		p := Policy{MaxAttempts: 8, InitialDelay: time.Second, MaxDelay: 30 * time.Second, Multiplier: 2}
		assert.Equal(t, []time.Duration{
			1 * time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second,
			16 * time.Second, 30 * time.Second, 30 * time.Second,
		}, p.Delays())
	})

	t.Run("SingleAttempt", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, Policy{}.Delays())
		assert.Equal(t, time.Duration(0), Policy{}.Delay(1))
	})
}

func TestDo(t *testing.T) {
	t.Parallel()

	t.Run("SucceedsAfterRetries", func(t *testing.T) {
		t.Parallel()
		var slept []time.Duration
		var retried []int
		p := Exponential(4, 10*time.Millisecond)
		p.Sleep = recordSleep(&slept)
		p.OnRetry = func(attempt int, _ time.Duration, _ error) { retried = append(retried, attempt) }

		calls := 0
		err := Do(context.Background(), p, func(context.Context) error {
			calls++
			if calls < 3 {
				return errFlaky
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
		assert.Equal(t, []int{1, 2}, retried)
		assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, slept)
	})

	t.Run("Exhausted", func(t *testing.T) {
		t.Parallel()
		var slept []time.Duration
		p := Exponential(3, time.Millisecond)
		p.Sleep = recordSleep(&slept)

		calls := 0
		err := Do(context.Background(), p, func(context.Context) error {
			calls++
			return errFlaky
		})

		assert.ErrorIs(t, err, ErrExhausted)
		assert.ErrorIs(t, err, errFlaky)
		assert.Contains(t, err.Error(), "after 3 attempts")
		assert.Equal(t, 3, calls)
		assert.Len(t, slept, 2)
	})

	t.Run("NonRetryableReturnedAsIs", func(t *testing.T) {
		t.Parallel()
		fatal := errors.New("bad request")
		p := Exponential(5, time.Millisecond)
		p.Retryable = func(err error) bool { return errors.Is(err, errFlaky) }

		calls := 0
		err := Do(context.Background(), p, func(context.Context) error {
			calls++
			return fatal
		})

		assert.Equal(t, fatal, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("ZeroDelayDoesNotSleep", func(t *testing.T) {
		t.Parallel()
		var slept []time.Duration
		p := Policy{MaxAttempts: 3, Sleep: recordSleep(&slept)}

		err := Do(context.Background(), p, func(context.Context) error { return errFlaky })

		assert.ErrorIs(t, err, ErrExhausted)
		assert.Empty(t, slept)
	})

	t.Run("ContextCancelledDuringBackoff", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		p := Exponential(5, time.Hour)
		p.OnRetry = func(int, time.Duration, error) { cancel() }

		calls := 0
		err := Do(ctx, p, func(context.Context) error {
			calls++
			return errFlaky
		})

		assert.ErrorIs(t, err, context.Canceled)
		assert.Contains(t, err.Error(), "retry cancelled")
		assert.Equal(t, 1, calls)
	})
}

func TestDoWithResult(t *testing.T) {
	t.Parallel()

	calls := 0
	got, err := DoWithResult(context.Background(), Policy{MaxAttempts: 2}, func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", errFlaky
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 2, calls)
}

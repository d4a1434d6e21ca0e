package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient")
var errPermanent = errors.New("permanent")

func classify(err error) Action {
	if errors.Is(err, errPermanent) {
		return Stop
	}
	return Retry
}

func policy(attempts int) Policy {
	return Policy{MaxAttempts: attempts, InitialBackoff: time.Millisecond}
}

func TestDo_SucceedsFirstTry(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), policy(3), classify, func() (int, error) {
		calls++
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesTransient(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), policy(3), classify, func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errTransient
		}
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, got)
	assert.Equal(t, 3, calls)
}

func TestDo_StopsOnPermanent(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), policy(5), classify, func() (int, error) {
		calls++
		return 0, errPermanent
	})

	var perm *PermanentError
	require.ErrorAs(t, err, &perm)
	assert.True(t, errors.Is(err, errPermanent))
	assert.Equal(t, 1, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), policy(3), classify, func() (int, error) {
		calls++
		return 0, errTransient
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errTransient))
	assert.Equal(t, 3, calls)
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := Policy{MaxAttempts: 3, InitialBackoff: time.Minute}
	_, err := Do(ctx, p, classify, func() (int, error) {
		return 0, errTransient
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestDoVoid_ReportsRetries(t *testing.T) {
	var retries int
	p := policy(3)
	p.OnRetry = func(attempt int, err error, backoff time.Duration) { retries++ }

	calls := 0
	err := DoVoid(context.Background(), p, classify, func() error {
		calls++
		if calls < 2 {
			return errTransient
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, retries)
}

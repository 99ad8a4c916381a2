package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fast = Policy{MaxAttempts: 5, Min: time.Millisecond, Max: 2 * time.Millisecond}

func TestDoSucceedsAfterFailures(t *testing.T) {
	calls := 0
	n, err := Do(context.Background(), fast, "op", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, calls)
}

func TestDoExhausted(t *testing.T) {
	cause := errors.New("unreachable")
	n, err := Do(context.Background(), fast, "connect", func(context.Context) error { return cause })
	require.Error(t, err)
	assert.Equal(t, 5, n)
	assert.ErrorIs(t, err, ErrExhausted)
	assert.ErrorIs(t, err, cause)
}

func TestDoZeroAttemptsMeansOne(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), Policy{}, "once", func(context.Context) error {
		calls++
		return errors.New("no")
	})
	assert.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, 1, calls)
}

func TestDoStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	slow := Policy{MaxAttempts: 100, Min: time.Hour, Max: time.Hour}
	n, err := Do(ctx, slow, "sync", func(context.Context) error {
		cancel()
		return errors.New("fail")
	})
	assert.Equal(t, 1, n)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrExhausted)
}

package power

import (
	"context"
	"testing"

	"github.com/bilal/solar-monitor/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnterDeepSleepArgs(t *testing.T) {
	s := NewSleeper(config.PowerConfig{Command: "rtcwake", Args: []string{"-m", "mem"}})
	var gotName string
	var gotArgs []string
	s.run = func(_ context.Context, name string, args ...string) error {
		gotName, gotArgs = name, args
		return nil
	}

	require.NoError(t, s.EnterDeepSleep(context.Background(), 30))
	assert.Equal(t, "rtcwake", gotName)
	assert.Equal(t, []string{"-m", "mem", "-s", "1800"}, gotArgs)

	// configured args are not mutated between calls
	require.NoError(t, s.EnterDeepSleep(context.Background(), 1))
	assert.Equal(t, []string{"-m", "mem", "-s", "60"}, gotArgs)
}

func TestEnterDeepSleepRejectsBadInput(t *testing.T) {
	s := NewSleeper(config.PowerConfig{Command: "rtcwake"})
	s.run = func(context.Context, string, ...string) error {
		t.Fatal("must not run")
		return nil
	}
	assert.Error(t, s.EnterDeepSleep(context.Background(), 0))

	s = NewSleeper(config.PowerConfig{})
	assert.Error(t, s.EnterDeepSleep(context.Background(), 5))
}

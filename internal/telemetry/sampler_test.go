package telemetry

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type unixClock int64

func (c unixClock) Unix() int64 { return int64(c) }

type signalFunc func() (int, error)

func (f signalFunc) Signal() (int, error) { return f() }

type memoryFunc func() (uint64, error)

func (f memoryFunc) FreeMemory() (uint64, error) { return f() }

func TestSample(t *testing.T) {
	s := NewSampler("esp32_solar_monitor", unixClock(1700000000),
		signalFunc(func() (int, error) { return -62, nil }),
		memoryFunc(func() (uint64, error) { return 180000, nil }))
	s.since = func(time.Time) time.Duration { return time.Hour }

	assert.Equal(t, Record{
		DeviceID:       "esp32_solar_monitor",
		Timestamp:      1700000000,
		SignalStrength: -62,
		FreeMemory:     180000,
		Uptime:         3600000,
	}, s.Sample())
}

func TestSampleDegradesToZero(t *testing.T) {
	s := NewSampler("dev", unixClock(0),
		signalFunc(func() (int, error) { return -50, errors.New("no wireless") }),
		memoryFunc(func() (uint64, error) { return 42, errors.New("no proc") }))

	r := s.Sample()
	assert.Equal(t, "dev", r.DeviceID)
	assert.Equal(t, int64(0), r.Timestamp)
	assert.Equal(t, 0, r.SignalStrength)
	assert.Equal(t, uint64(0), r.FreeMemory)
}

const wireless = `Inter-| sta-|   Quality        |   Discarded packets               | Missed | WE
 face | tus | link level noise |  nwid  crypt   frag  retry   misc | beacon | 22
wlan0: 0000   54.  -56.  -256        0      0      0      0      0        0
wlan1: 0000   30.  -80.  -256        0      0      0      0      0        0
`

func TestParseWireless(t *testing.T) {
	level, err := parseWireless(strings.NewReader(wireless), "wlan1")
	require.NoError(t, err)
	assert.Equal(t, -80, level)

	_, err = parseWireless(strings.NewReader(wireless), "eth0")
	assert.Error(t, err)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "esp32_solar_monitor", cfg.Agent.DeviceID)
	assert.Equal(t, "http", cfg.Agent.Transport)
	assert.Equal(t, 30*time.Minute, cfg.Agent.Interval())
	assert.Equal(t, 10*time.Second, cfg.Agent.Timeout())
	assert.Equal(t, 10*time.Second, cfg.Agent.Tick())
	assert.True(t, cfg.Agent.ClassifyFailures)
	assert.False(t, cfg.Agent.AcceptAnyStatus)
	assert.Equal(t, "pool.ntp.org", cfg.Clock.NTPServer)
	assert.Equal(t, []string{"-m", "mem"}, cfg.Power.Args)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
agent:
  device_id: roof_panel
  backend_url: http://collector:4545/solar-log
  interval_seconds: 120
  tick_seconds: 1
  timeout_seconds: 0
  accept_any_status: true
link:
  interface: wlp2s0
clock:
  utc_offset_seconds: -18000
  dst_offset_seconds: 3600
logging:
  level: debug
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "roof_panel", cfg.Agent.DeviceID)
	assert.Equal(t, 2*time.Minute, cfg.Agent.Interval())
	assert.Equal(t, time.Second, cfg.Agent.Tick())
	assert.Equal(t, time.Duration(0), cfg.Agent.Timeout())
	assert.True(t, cfg.Agent.AcceptAnyStatus)
	assert.Equal(t, "wlp2s0", cfg.Link.Interface)
	assert.Equal(t, "debug", cfg.Logging.Level)

	_, offset := time.Unix(0, 0).In(cfg.Clock.Zone()).Zone()
	assert.Equal(t, -14400, offset)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("SOLARLOG_AGENT_DEVICE_ID", "from_env")
	t.Setenv("SOLARLOG_AGENT_INTERVAL_SECONDS", "60")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "from_env", cfg.Agent.DeviceID)
	assert.Equal(t, time.Minute, cfg.Agent.Interval())
}

func TestClamp(t *testing.T) {
	path := writeConfig(t, `
agent:
  interval_seconds: 0
  tick_seconds: -3
  timeout_seconds: -1
  transport: HTTP
link:
  connect_attempts: 0
  retry_min_ms: 1000
  retry_max_ms: 10
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.Agent.IntervalSeconds)
	assert.Equal(t, 1, cfg.Agent.TickSeconds)
	assert.Equal(t, 0, cfg.Agent.TimeoutSeconds)
	assert.Equal(t, "http", cfg.Agent.Transport)
	assert.Equal(t, 1, cfg.Link.ConnectAttempts)
	assert.Equal(t, 1000, cfg.Link.RetryMaxMs)
}

func TestValidate(t *testing.T) {
	tests := map[string]string{
		"unknown transport": "agent:\n  transport: carrier_pigeon\n",
		"mqtt no broker":    "agent:\n  transport: mqtt\n",
		"kafka no brokers":  "agent:\n  transport: kafka\n",
		"empty device":      "agent:\n  device_id: \"\"\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

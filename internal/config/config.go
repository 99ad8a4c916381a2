package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

type AgentConfig struct {
	DeviceID            string `mapstructure:"device_id"`
	BackendURL          string `mapstructure:"backend_url"`
	Transport           string `mapstructure:"transport"` // http, mqtt or kafka
	IntervalSeconds     int    `mapstructure:"interval_seconds"`
	TickSeconds         int    `mapstructure:"tick_seconds"`
	TimeoutSeconds      int    `mapstructure:"timeout_seconds"` // 0 waits forever
	BackendAuthTokenEnv string `mapstructure:"backend_auth_token_env"` // e.g. SOLARLOG_BACKEND_TOKEN
	InsecureSkipVerify  bool   `mapstructure:"insecure_skip_verify"`
	AcceptAnyStatus     bool   `mapstructure:"accept_any_status"`
	ClassifyFailures    bool   `mapstructure:"classify_failures"`
}

type LinkConfig struct {
	Interface       string `mapstructure:"interface"`
	ProbeHost       string `mapstructure:"probe_host"`
	ProbeCount      int    `mapstructure:"probe_count"`
	ProbeTimeoutMs  int    `mapstructure:"probe_timeout_ms"`
	Privileged      bool   `mapstructure:"privileged"`
	ConnectAttempts int    `mapstructure:"connect_attempts"`
	RetryMinMs      int    `mapstructure:"retry_min_ms"`
	RetryMaxMs      int    `mapstructure:"retry_max_ms"`
}

type ClockConfig struct {
	NTPServer        string `mapstructure:"ntp_server"`
	UTCOffsetSeconds int    `mapstructure:"utc_offset_seconds"`
	DSTOffsetSeconds int    `mapstructure:"dst_offset_seconds"`
	TimeoutSeconds   int    `mapstructure:"timeout_seconds"`
	SyncAttempts     int    `mapstructure:"sync_attempts"`
}

type MQTTConfig struct {
	Broker      string `mapstructure:"broker"`
	Topic       string `mapstructure:"topic"`
	ClientID    string `mapstructure:"client_id"`
	Username    string `mapstructure:"username"`
	PasswordEnv string `mapstructure:"password_env"`
	QoS         int    `mapstructure:"qos"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type HealthConfig struct {
	Listen string `mapstructure:"listen"`
}

type PowerConfig struct {
	Command string   `mapstructure:"command"`
	Args    []string `mapstructure:"args"`
}

type CollectorConfig struct {
	Listen string `mapstructure:"listen"`
	LogDir string `mapstructure:"log_dir"`
}

type Config struct {
	Agent     AgentConfig     `mapstructure:"agent"`
	Link      LinkConfig      `mapstructure:"link"`
	Clock     ClockConfig     `mapstructure:"clock"`
	MQTT      MQTTConfig      `mapstructure:"mqtt"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Health    HealthConfig    `mapstructure:"health"`
	Power     PowerConfig     `mapstructure:"power"`
	Collector CollectorConfig `mapstructure:"collector"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

const envPrefix = "SOLARLOG"

func setDefaults(v *viper.Viper) {
	v.SetDefault("agent.device_id", "esp32_solar_monitor")
	v.SetDefault("agent.backend_url", "http://localhost:4545/solar-log")
	v.SetDefault("agent.transport", "http")
	v.SetDefault("agent.interval_seconds", 30*60)
	v.SetDefault("agent.tick_seconds", 10)
	v.SetDefault("agent.timeout_seconds", 10)
	v.SetDefault("agent.insecure_skip_verify", false)
	v.SetDefault("agent.accept_any_status", false)
	v.SetDefault("agent.classify_failures", true)
	v.SetDefault("agent.backend_auth_token_env", "")

	v.SetDefault("link.interface", "wlan0")
	v.SetDefault("link.probe_host", "1.1.1.1")
	v.SetDefault("link.probe_count", 1)
	v.SetDefault("link.probe_timeout_ms", 2000)
	v.SetDefault("link.privileged", false)
	v.SetDefault("link.connect_attempts", 20)
	v.SetDefault("link.retry_min_ms", 500)
	v.SetDefault("link.retry_max_ms", 30000)

	v.SetDefault("clock.ntp_server", "pool.ntp.org")
	v.SetDefault("clock.utc_offset_seconds", 0)
	v.SetDefault("clock.dst_offset_seconds", 3600)
	v.SetDefault("clock.timeout_seconds", 5)
	v.SetDefault("clock.sync_attempts", 10)

	v.SetDefault("mqtt.broker", "")
	v.SetDefault("mqtt.client_id", "")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password_env", "")
	v.SetDefault("mqtt.topic", "solar/telemetry")
	v.SetDefault("mqtt.qos", 1)
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "solar.telemetry")

	v.SetDefault("health.listen", "127.0.0.1:8085")
	v.SetDefault("power.command", "rtcwake")
	v.SetDefault("power.args", []string{"-m", "mem"})

	v.SetDefault("collector.listen", "0.0.0.0:4545")
	v.SetDefault("collector.log_dir", "solar_logs")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// LoadConfig reads path (yaml) on top of the defaults. Empty path means
// defaults only. SOLARLOG_* env vars override any key.
func LoadConfig(path string) (*Config, error) {
	// .env is optional, it only feeds secrets into the environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.clamp()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// quick sanity checks
func (c *Config) clamp() {
	if c.Agent.IntervalSeconds < 1 {
		c.Agent.IntervalSeconds = 60
	}
	if c.Agent.TickSeconds < 1 {
		c.Agent.TickSeconds = 1
	}
	if c.Agent.TimeoutSeconds < 0 {
		c.Agent.TimeoutSeconds = 0
	}
	if c.Link.ProbeCount < 1 {
		c.Link.ProbeCount = 1
	}
	if c.Link.ConnectAttempts < 1 {
		c.Link.ConnectAttempts = 1
	}
	if c.Link.RetryMaxMs < c.Link.RetryMinMs {
		c.Link.RetryMaxMs = c.Link.RetryMinMs
	}
	if c.Clock.SyncAttempts < 1 {
		c.Clock.SyncAttempts = 1
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		c.MQTT.QoS = 1
	}
	c.Agent.Transport = strings.ToLower(c.Agent.Transport)
}

func (c *Config) Validate() error {
	if c.Agent.DeviceID == "" {
		return fmt.Errorf("agent.device_id required")
	}
	switch c.Agent.Transport {
	case "http":
		if c.Agent.BackendURL == "" {
			return fmt.Errorf("agent.backend_url required for http transport")
		}
	case "mqtt":
		if c.MQTT.Broker == "" {
			return fmt.Errorf("mqtt.broker required for mqtt transport")
		}
	case "kafka":
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers required for kafka transport")
		}
	default:
		return fmt.Errorf("unknown agent.transport %q", c.Agent.Transport)
	}
	return nil
}

func (a AgentConfig) Interval() time.Duration { return time.Duration(a.IntervalSeconds) * time.Second }
func (a AgentConfig) Tick() time.Duration     { return time.Duration(a.TickSeconds) * time.Second }
func (a AgentConfig) Timeout() time.Duration  { return time.Duration(a.TimeoutSeconds) * time.Second }

func (l LinkConfig) ProbeTimeout() time.Duration {
	return time.Duration(l.ProbeTimeoutMs) * time.Millisecond
}

// Zone is the fixed zone built from the gmt and daylight offsets. Only used to
// render diagnostics, reported timestamps stay in epoch seconds.
func (c ClockConfig) Zone() *time.Location {
	offset := c.UTCOffsetSeconds + c.DSTOffsetSeconds
	return time.FixedZone(fmt.Sprintf("UTC%+d", offset/3600), offset)
}

func (c ClockConfig) Timeout() time.Duration { return time.Duration(c.TimeoutSeconds) * time.Second }

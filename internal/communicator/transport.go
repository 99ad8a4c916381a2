package communicator

import (
	"fmt"

	"github.com/bilal/solar-monitor/internal/config"
)

// NewTransport builds the transport selected by agent.transport.
func NewTransport(cfg *config.Config) (Transport, error) {
	switch cfg.Agent.Transport {
	case "", "http":
		return NewHTTPTransport(cfg.Agent), nil
	case "mqtt":
		return NewMQTTTransport(cfg.MQTT, cfg.Agent.DeviceID), nil
	case "kafka":
		return NewKafkaTransport(cfg.Kafka, cfg.Agent.DeviceID)
	}
	return nil, fmt.Errorf("unknown transport %q", cfg.Agent.Transport)
}

// PolicyFrom reads the report policy out of the agent config.
func PolicyFrom(cfg config.AgentConfig) Policy {
	return Policy{
		Timeout:          cfg.Timeout(),
		AcceptAnyStatus:  cfg.AcceptAnyStatus,
		ClassifyFailures: cfg.ClassifyFailures,
	}
}

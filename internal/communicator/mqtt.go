package communicator

import (
	"context"
	"fmt"
	"os"

	"github.com/bilal/solar-monitor/internal/config"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

// MQTTTransport publishes each report to one topic. The broker ack stands in
// for a response code.
type MQTTTransport struct {
	client mqtt.Client
	topic  string
	qos    byte
}

func NewMQTTTransport(cfg config.MQTTConfig, deviceID string) *MQTTTransport {
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = deviceID
	}
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(false).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.Warn().Err(err).Msg("mqtt connection lost")
		})
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.PasswordEnv != "" {
		opts.SetPassword(os.Getenv(cfg.PasswordEnv))
	}
	return newMQTTTransport(mqtt.NewClient(opts), cfg.Topic, byte(cfg.QoS))
}

func newMQTTTransport(client mqtt.Client, topic string, qos byte) *MQTTTransport {
	return &MQTTTransport{client: client, topic: topic, qos: qos}
}

func (t *MQTTTransport) Name() string { return "mqtt" }

func (t *MQTTTransport) Send(ctx context.Context, _ string, payload []byte) (Response, error) {
	if !t.client.IsConnectionOpen() {
		if err := waitToken(ctx, t.client.Connect()); err != nil {
			return Response{}, fmt.Errorf("mqtt connect: %w", err)
		}
	}
	if err := waitToken(ctx, t.client.Publish(t.topic, t.qos, false, payload)); err != nil {
		return Response{}, fmt.Errorf("mqtt publish %s: %w", t.topic, err)
	}
	return Response{}, nil
}

func (t *MQTTTransport) Close() error {
	if t.client.IsConnected() {
		t.client.Disconnect(250)
	}
	return nil
}

func waitToken(ctx context.Context, tok mqtt.Token) error {
	select {
	case <-tok.Done():
		return tok.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}

package communicator

import (
	"context"
	"errors"

	"github.com/bilal/solar-monitor/internal/config"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// KafkaTransport writes each report as one message keyed by device id.
type KafkaTransport struct {
	writer   *kafka.Writer
	deviceID string
}

func NewKafkaTransport(cfg config.KafkaConfig, deviceID string) (*KafkaTransport, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers not configured")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}

	log.Info().Strs("brokers", cfg.Brokers).Str("topic", cfg.Topic).Msg("kafka transport initialized")

	return &KafkaTransport{writer: writer, deviceID: deviceID}, nil
}

func (t *KafkaTransport) Name() string { return "kafka" }

func (t *KafkaTransport) Send(ctx context.Context, correlationID string, payload []byte) (Response, error) {
	err := t.writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(t.deviceID),
		Value:   payload,
		Headers: []kafka.Header{{Key: "correlation_id", Value: []byte(correlationID)}},
	})
	if err != nil {
		return Response{}, err
	}
	return Response{}, nil
}

// Close flushes pending writes.
func (t *KafkaTransport) Close() error {
	log.Info().Msg("closing kafka transport")
	return t.writer.Close()
}

package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/stratawatch/cii-engine/internal/config"
	"github.com/stratawatch/cii-engine/internal/pipeline"
)

// Writer publishes ingest envelopes to the source topic. Used by the mock
// generator and by tests; production envelopes come from the upstream
// fetcher services.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured ingest topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaIngestTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishBatch serializes and publishes multiple envelopes in a single
// WriteMessages call for efficiency.
func (w *Writer) PublishBatch(ctx context.Context, envelopes []pipeline.Envelope) error {
	if len(envelopes) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(envelopes))
	for i := range envelopes {
		msg, err := serializeToMessage(envelopes[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an envelope into a Kafka message, keyed by
// source so one feed's envelopes stay ordered within a partition.
func serializeToMessage(env pipeline.Envelope) (kafkago.Message, error) {
	data, err := json.Marshal(env)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize envelope: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(env.Source),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "source", Value: []byte(env.Source)},
		},
	}, nil
}

//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	kafkaadapter "github.com/stratawatch/cii-engine/internal/adapter/kafka"
	"github.com/stratawatch/cii-engine/internal/cii"
	"github.com/stratawatch/cii-engine/internal/config"
	"github.com/stratawatch/cii-engine/internal/geo"
	"github.com/stratawatch/cii-engine/internal/observability"
	"github.com/stratawatch/cii-engine/internal/pipeline"
)

const testIngestTopic = "test-geo-events"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka launches a single-broker Kafka container and returns its
// advertised broker address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("test-cluster"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err, "dial broker")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	ctrlConn, err := kafkago.Dial("tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	require.NoError(t, err, "dial controller")
	defer ctrlConn.Close()

	require.NoError(t, ctrlConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func makeEnvelope(t *testing.T, source string, payload any) pipeline.Envelope {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return pipeline.Envelope{Source: source, Payload: data}
}

// TestKafkaIngestEndToEnd publishes envelopes for several sources via the
// Kafka writer, runs the ingest loop against real Kafka, and verifies the
// scoring engine observed every event.
func TestKafkaIngestEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testIngestTopic)

	cfg := &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaIngestTopic:   testIngestTopic,
		KafkaGroupID:       fmt.Sprintf("test-ingest-%d", time.Now().UnixNano()),
		BatchFlushInterval: 2 * time.Second,
	}

	envelopes := []pipeline.Envelope{
		makeEnvelope(t, "protests", []cii.UnrestEvent{
			{Lat: 48.85, Lon: 2.35, Country: "FR", Severity: "high"},
			{Lat: 33.89, Lon: 35.5, Country: "LB", Fatalities: 2},
		}),
		makeEnvelope(t, "conflicts", []cii.ConflictEvent{
			{Lat: 48.0, Lon: 37.8, Country: "UA", EventType: "battle", Fatalities: 5},
		}),
		makeEnvelope(t, "ucdp", map[string]cii.UcdpStatus{"SD": {Intensity: "war"}}),
	}

	writer := kafkaadapter.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })
	require.NoError(t, writer.PublishBatch(ctx, envelopes))

	reader := kafkaadapter.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	engine := cii.New(geo.NewAttributor(nil), discardLogger(), observability.NewMetricsForTesting())
	dispatcher := pipeline.NewDispatcher(engine, geo.NewConvergenceGrid(), nil)
	ingestor := pipeline.New(reader, dispatcher, discardLogger(), observability.NewMetricsForTesting(), 50)

	runCtx, runCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- ingestor.Run(runCtx) }()

	// Wait for all four events (two protests, one conflict, one ucdp entry)
	// to land in the engine.
	require.Eventually(t, func() bool {
		return engine.Stats().Processed == 4
	}, 60*time.Second, 250*time.Millisecond, "expected 4 processed events, got %d", engine.Stats().Processed)

	runCancel()
	require.NoError(t, <-errCh)

	scores := engine.CalculateCII()

	var sd, fr cii.CountryScore
	for i := range scores {
		switch scores[i].Code {
		case "SD":
			sd = scores[i]
		case "FR":
			fr = scores[i]
		}
	}

	assert.InDelta(t, 70, sd.Score, 0.001, "war classification floors the score")
	assert.Greater(t, fr.Components.Unrest, 0.0)
	assert.NoError(t, ingestor.CheckReadiness(ctx))
}

// TestKafkaPoisonPill verifies a malformed envelope is skipped and committed
// while valid envelopes around it still apply.
func TestKafkaPoisonPill(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testIngestTopic)

	cfg := &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaIngestTopic:   testIngestTopic,
		KafkaGroupID:       fmt.Sprintf("test-poison-%d", time.Now().UnixNano()),
		BatchFlushInterval: 2 * time.Second,
	}

	good := makeEnvelope(t, "protests", []cii.UnrestEvent{{Lat: 48.85, Lon: 2.35, Country: "FR"}})
	goodValue, err := json.Marshal(good)
	require.NoError(t, err)

	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testIngestTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	require.NoError(t, producer.WriteMessages(ctx,
		kafkago.Message{Key: []byte("bad"), Value: []byte("not-json{{{")},
		kafkago.Message{Key: []byte("good"), Value: goodValue},
	))

	reader := kafkaadapter.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	engine := cii.New(geo.NewAttributor(nil), discardLogger(), observability.NewMetricsForTesting())
	dispatcher := pipeline.NewDispatcher(engine, nil, nil)
	ingestor := pipeline.New(reader, dispatcher, discardLogger(), observability.NewMetricsForTesting(), 50)

	runCtx, runCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- ingestor.Run(runCtx) }()

	require.Eventually(t, func() bool {
		return engine.Stats().Processed == 1
	}, 60*time.Second, 250*time.Millisecond)

	runCancel()
	require.NoError(t, <-errCh)
}

package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratawatch/cii-engine/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "geo-events", cfg.KafkaIngestTopic)
	assert.Equal(t, "cii-engine", cfg.KafkaGroupID)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, time.Second, cfg.BatchFlushInterval)
	assert.Equal(t, 15*time.Minute, cfg.LearningWindow)
	assert.Equal(t, 5*time.Second, cfg.ScoreRefreshInterval)
	assert.Equal(t, 5000, cfg.BoundaryCacheSize)
	assert.True(t, cfg.ConvergenceNames)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("KAFKA_INGEST_TOPIC", "events")
	t.Setenv("BATCH_SIZE", "200")
	t.Setenv("LEARNING_WINDOW", "5m")
	t.Setenv("CONVERGENCE_NAMES", "false")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "events", cfg.KafkaIngestTopic)
	assert.Equal(t, 200, cfg.BatchSize)
	assert.Equal(t, 5*time.Minute, cfg.LearningWindow)
	assert.False(t, cfg.ConvergenceNames)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "bad duration", key: "LEARNING_WINDOW", value: "soon"},
		{name: "negative duration", key: "SHUTDOWN_TIMEOUT", value: "-5s"},
		{name: "bad int", key: "BATCH_SIZE", value: "many"},
		{name: "zero int", key: "BATCH_SIZE", value: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_EmptyBrokers(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", " , ")
	_, err := config.Load()
	assert.ErrorContains(t, err, "KAFKA_BROKERS")
}

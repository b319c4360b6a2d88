package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaIngestTopic string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Scoring configuration.
	LearningWindow       time.Duration
	ScoreRefreshInterval time.Duration // minimum spacing between snapshot recomputes
	BoundaryCacheSize    int
	ConvergenceNames     bool // reverse geocode convergence cells to display names
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	flushInterval, err := parseDuration("BATCH_FLUSH_INTERVAL", "1s")
	if err != nil {
		return nil, err
	}
	learningWindow, err := parseDuration("LEARNING_WINDOW", "15m")
	if err != nil {
		return nil, err
	}
	refreshInterval, err := parseDuration("SCORE_REFRESH_INTERVAL", "5s")
	if err != nil {
		return nil, err
	}
	batchSize, err := parseInt("BATCH_SIZE", 50)
	if err != nil {
		return nil, err
	}
	cacheSize, err := parseInt("BOUNDARY_CACHE_SIZE", 5000)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:       parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaIngestTopic:   envOrDefault("KAFKA_INGEST_TOPIC", "geo-events"),
		KafkaGroupID:       envOrDefault("KAFKA_GROUP_ID", "cii-engine"),
		HTTPAddr:           envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           envOrDefault("LOG_LEVEL", "info"),
		LogFormat:          envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		LearningWindow:       learningWindow,
		ScoreRefreshInterval: refreshInterval,
		BoundaryCacheSize:    cacheSize,
		ConvergenceNames:     envOrDefault("CONVERGENCE_NAMES", "true") == "true",
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaIngestTopic == "" {
		return nil, errors.New("KAFKA_INGEST_TOPIC is required")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func parseDuration(key, fallback string) (time.Duration, error) {
	raw := envOrDefault(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return d, nil
}

func parseInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return n, nil
}

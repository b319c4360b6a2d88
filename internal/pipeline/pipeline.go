package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/stratawatch/cii-engine/internal/observability"
)

// RawMessage represents an unprocessed envelope from the ingest topic.
type RawMessage struct {
	Key       []byte
	Value     []byte
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// BatchExtractor reads up to batchSize raw messages from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]RawMessage, error)
}

// Ingestor runs the batch ingest loop: extract envelopes, apply them to the
// scoring engine, trigger focal analysis when its inputs changed.
type Ingestor struct {
	extractor  BatchExtractor
	dispatcher *Dispatcher
	logger     *slog.Logger
	metrics    *observability.Metrics
	ready      atomic.Bool
	batchSize  int
}

// New creates an Ingestor with the given stages and observability.
func New(e BatchExtractor, d *Dispatcher, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Ingestor {
	return &Ingestor{
		extractor:  e,
		dispatcher: d,
		logger:     logger,
		metrics:    metrics,
		batchSize:  batchSize,
	}
}

// CheckReadiness returns nil if the loop has applied at least one batch,
// or an error describing why the service is not yet ready.
func (p *Ingestor) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("ingest loop has not applied any batches yet")
	}
	return nil
}

// Run executes the ingest loop until the context is cancelled.
func (p *Ingestor) Run(ctx context.Context) error {
	p.logger.Info("ingest loop started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	// Keeps retry storms short while avoiding tight loops during Kafka outages.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("ingest loop stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if !p.processBatch(ctx, &backoff, maxBackoff) {
			return nil
		}
	}
}

// processBatch runs one extract-apply cycle. Returns false if the loop
// should stop.
func (p *Ingestor) processBatch(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	rawBatch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract batch failed", "error", err)
		return p.backoffOrStop(ctx, backoff, maxBackoff)
	}

	if len(rawBatch) == 0 {
		return ctx.Err() == nil
	}

	p.metrics.BatchSize.Observe(float64(len(rawBatch)))
	*backoff = 200 * time.Millisecond

	applied := 0
	for _, raw := range rawBatch {
		if err := p.dispatcher.Dispatch(raw.Value); err != nil {
			p.logger.Warn("dispatch failed, skipping envelope",
				"error", err,
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.IngestErrors.Inc()
		} else {
			applied++
		}
		p.commitOffset(ctx, raw)
	}

	p.dispatcher.AfterBatch()

	if applied > 0 {
		p.ready.Store(true)
	}
	return true
}

// backoffOrStop checks for context cancellation, sleeps with the current
// backoff, and advances the backoff. Returns false if the loop should stop.
func (p *Ingestor) backoffOrStop(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !sleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = nextBackoff(*backoff, maxBackoff)
	return true
}

// commitOffset commits the message offset if a commit function is available.
func (p *Ingestor) commitOffset(ctx context.Context, raw RawMessage) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

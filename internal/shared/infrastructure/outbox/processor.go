package outbox

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/studyload/internal/shared/domain"
	"github.com/felixgeelhaar/studyload/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/studyload/pkg/observability"
)

// ProcessorConfig tunes polling and retry behaviour.
type ProcessorConfig struct {
	PollInterval     time.Duration
	BatchSize        int
	MaxRetries       int
	RetryBackoffBase time.Duration
	RetryBackoffMax  time.Duration
}

// DefaultProcessorConfig returns the worker defaults.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		PollInterval:     100 * time.Millisecond,
		BatchSize:        100,
		MaxRetries:       5,
		RetryBackoffBase: time.Second,
		RetryBackoffMax:  time.Minute,
	}
}

// Publish outcomes recorded on MetricEventsPublished.
const (
	outcomePublished = "published"
	outcomeFailed    = "failed"
	outcomeDead      = "dead"
)

// Processor polls the outbox and hands pending messages to a publisher.
type Processor struct {
	repo      Repository
	publisher eventbus.Publisher
	config    ProcessorConfig
	logger    *slog.Logger
	metrics   observability.Metrics

	wg       sync.WaitGroup
	stopChan chan struct{}
	running  bool
	mu       sync.Mutex

	statsMu sync.Mutex
	stats   Stats
}

// NewProcessor creates a stopped processor.
func NewProcessor(repo Repository, publisher eventbus.Publisher, config ProcessorConfig, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		repo:      repo,
		publisher: publisher,
		config:    config,
		logger:    logger,
		metrics:   observability.NoopMetrics{},
		stopChan:  make(chan struct{}),
	}
}

// WithMetrics reports publish outcomes to m.
func (p *Processor) WithMetrics(m observability.Metrics) *Processor {
	if m != nil {
		p.metrics = m
	}
	return p
}

// Start launches the polling loop. Calling it twice is a no-op.
func (p *Processor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.stopChan = make(chan struct{})
	p.mu.Unlock()

	p.wg.Add(1)
	go p.run(ctx)

	p.logger.Info("outbox processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize,
		"max_retries", p.config.MaxRetries,
	)
	return nil
}

// Stop waits for the current batch to finish.
func (p *Processor) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stopChan)
	p.mu.Unlock()

	p.wg.Wait()
	p.logger.Info("outbox processor stopped")
}

func (p *Processor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Processor) run(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopChan:
			return
		case <-ticker.C:
			if err := p.processBatch(ctx); err != nil {
				p.logger.Error("outbox batch failed", "error", err)
			}
		}
	}
}

// ProcessOnce publishes a single batch synchronously.
func (p *Processor) ProcessOnce(ctx context.Context) error {
	return p.processBatch(ctx)
}

func (p *Processor) processBatch(ctx context.Context) error {
	messages, err := p.repo.GetUnpublished(ctx, p.config.BatchSize)
	if err != nil {
		p.recordError(err)
		return err
	}
	p.recordProcessed(messages)

	for _, msg := range messages {
		if err := p.publisher.Publish(ctx, msg.RoutingKey, msg.Payload); err != nil {
			p.handleFailure(ctx, msg, err)
			continue
		}

		if err := p.repo.MarkPublished(ctx, msg.ID); err != nil {
			p.logger.Error("failed to mark outbox message published",
				"id", msg.ID,
				"event_id", msg.EventID,
				"error", err,
			)
			continue
		}
		p.recordOutcome(msg, outcomePublished, nil)
	}
	return nil
}

func (p *Processor) handleFailure(ctx context.Context, msg *Message, publishErr error) {
	meta := messageMetadata(msg)
	p.logger.Warn("failed to publish outbox message",
		"id", msg.ID,
		"routing_key", msg.RoutingKey,
		"event_id", msg.EventID,
		observability.CorrelationIDKey, meta.CorrelationID,
		observability.UserIDKey, meta.UserID,
		"retry_count", msg.RetryCount,
		"error", publishErr,
	)

	reason := publishErr.Error()
	if p.shouldDeadLetter(msg) {
		if err := p.repo.MarkDead(ctx, msg.ID, reason); err != nil {
			p.logger.Error("failed to dead-letter outbox message", "id", msg.ID, "error", err)
		}
		p.recordOutcome(msg, outcomeDead, publishErr)
		return
	}

	nextRetryAt := time.Now().Add(p.retryBackoff(msg.RetryCount + 1))
	if err := p.repo.MarkFailed(ctx, msg.ID, reason, nextRetryAt); err != nil {
		p.logger.Error("failed to record outbox failure", "id", msg.ID, "error", err)
	}
	p.recordOutcome(msg, outcomeFailed, publishErr)
}

func (p *Processor) shouldDeadLetter(msg *Message) bool {
	if p.config.MaxRetries <= 0 {
		return true
	}
	return !msg.CanRetry(p.config.MaxRetries - 1)
}

// retryBackoff doubles from the base delay and saturates at the maximum.
func (p *Processor) retryBackoff(attempt int) time.Duration {
	base := p.config.RetryBackoffBase
	if base <= 0 {
		base = time.Second
	}
	limit := p.config.RetryBackoffMax
	if limit <= 0 {
		limit = time.Minute
	}

	backoff := base
	for i := 1; i < attempt; i++ {
		backoff *= 2
		if backoff >= limit {
			return limit
		}
	}
	return min(backoff, limit)
}

// Cleanup removes published messages past the retention window.
func (p *Processor) Cleanup(ctx context.Context, retentionDays int) (int64, error) {
	deleted, err := p.repo.DeleteOld(ctx, retentionDays)
	if err != nil {
		p.recordError(err)
		return 0, err
	}
	if deleted > 0 {
		p.logger.Info("outbox cleanup removed published messages",
			"deleted", deleted,
			"retention_days", retentionDays,
		)
	}
	return deleted, nil
}

// RefreshPending updates the pending-message gauge in Stats.
func (p *Processor) RefreshPending(ctx context.Context) error {
	pending, err := p.repo.CountPending(ctx)
	if err != nil {
		p.recordError(err)
		return err
	}
	p.statsMu.Lock()
	p.stats.PendingCount = pending
	p.statsMu.Unlock()
	p.metrics.Gauge(MetricPending, float64(pending))
	return nil
}

// MetricPending tracks messages still waiting for the broker.
const MetricPending = "studyload.outbox.pending"

type eventMetadataFields struct {
	CorrelationID string
	UserID        string
}

func messageMetadata(msg *Message) eventMetadataFields {
	if len(msg.Metadata) == 0 {
		return eventMetadataFields{}
	}
	var metadata domain.EventMetadata
	if err := json.Unmarshal(msg.Metadata, &metadata); err != nil {
		return eventMetadataFields{}
	}
	return eventMetadataFields{
		CorrelationID: metadata.CorrelationID.String(),
		UserID:        metadata.UserID.String(),
	}
}

// Stats is a snapshot of processor activity.
type Stats struct {
	IsRunning       bool
	PublishedCount  uint64
	FailedCount     uint64
	DeadCount       uint64
	PendingCount    int64
	LagSeconds      float64
	LastError       string
	LastErrorAt     *time.Time
	LastProcessedAt *time.Time
	OldestMessageAt *time.Time
}

// GetStats returns a copy of the current counters.
func (p *Processor) GetStats() Stats {
	running := p.IsRunning()

	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	stats := p.stats
	stats.IsRunning = running
	return stats
}

func (p *Processor) recordOutcome(msg *Message, outcome string, err error) {
	p.metrics.Counter(observability.MetricEventsPublished, 1,
		observability.T("routing_key", msg.RoutingKey),
		observability.T(observability.StatusKey, outcome),
	)

	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	switch outcome {
	case outcomePublished:
		p.stats.PublishedCount++
		return
	case outcomeFailed:
		p.stats.FailedCount++
	case outcomeDead:
		p.stats.DeadCount++
	}
	now := time.Now()
	p.stats.LastError = err.Error()
	p.stats.LastErrorAt = &now
}

func (p *Processor) recordError(err error) {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	now := time.Now()
	p.stats.LastError = err.Error()
	p.stats.LastErrorAt = &now
}

func (p *Processor) recordProcessed(messages []*Message) {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	now := time.Now()
	p.stats.LastProcessedAt = &now
	if len(messages) == 0 {
		p.stats.LagSeconds = 0
		p.stats.OldestMessageAt = nil
		return
	}

	oldest := messages[0].CreatedAt
	for _, msg := range messages[1:] {
		if msg.CreatedAt.Before(oldest) {
			oldest = msg.CreatedAt
		}
	}
	p.stats.OldestMessageAt = &oldest
	p.stats.LagSeconds = now.Sub(oldest).Seconds()
}

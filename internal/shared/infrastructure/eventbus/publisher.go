package eventbus

import (
	"context"
	"errors"
	"log/slog"
)

// ExchangeName is the topic exchange carrying every domain event.
const ExchangeName = "studyload.domain.events"

// ErrPublisherClosed is returned after Close.
var ErrPublisherClosed = errors.New("event publisher closed")

// Publisher delivers an outbox payload under its routing key.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload []byte) error
	Close() error
}

// NoopPublisher drops events. Local mode uses it when no broker is configured.
type NoopPublisher struct {
	logger *slog.Logger
}

func NewNoopPublisher(logger *slog.Logger) *NoopPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopPublisher{logger: logger}
}

func (p *NoopPublisher) Publish(_ context.Context, routingKey string, payload []byte) error {
	p.logger.Debug("event dropped, no broker configured",
		"routing_key", routingKey,
		"size", len(payload),
	)
	return nil
}

func (p *NoopPublisher) Close() error { return nil }

// Ping always succeeds.
func (p *NoopPublisher) Ping(context.Context) error { return nil }

package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/scoutpro/scoutpro-be/shared/rabbitmq"
)

// Event is a job lifecycle notification emitted by the executor. Failures
// surface here exactly once per failed job; the user who triggered the work
// gets no direct signal, so this stream is the observability surface.
type Event struct {
	JobID string    `json:"job_id"`
	Name  string    `json:"name"`
	State State     `json:"state"`
	Error string    `json:"error,omitempty"`
	At    time.Time `json:"at"`
}

// EventPublisher publishes job lifecycle events
type EventPublisher interface {
	PublishJobEvent(ctx context.Context, event Event) error
}

// RabbitEventPublisher publishes events to the configured RabbitMQ exchange
type RabbitEventPublisher struct {
	client *rabbitmq.Client
	logger *slog.Logger
}

// NewRabbitEventPublisher creates an EventPublisher over an amqp client
func NewRabbitEventPublisher(client *rabbitmq.Client, logger *slog.Logger) *RabbitEventPublisher {
	return &RabbitEventPublisher{
		client: client,
		logger: logger,
	}
}

func (p *RabbitEventPublisher) PublishJobEvent(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal job event: %w", err)
	}

	if err := p.client.PublishWithRetry(ctx, body, "application/json"); err != nil {
		return fmt.Errorf("failed to publish job event: %w", err)
	}

	p.logger.Debug("Job event published",
		slog.String("job_id", event.JobID),
		slog.String("name", event.Name),
		slog.String("state", string(event.State)),
	)

	return nil
}

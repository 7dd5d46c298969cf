package eventpublisher

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/iho/gosettle/internal/domain"
)

// StreamPublisher publishes outbox events to a Redis stream, where
// downstream consumers (notification services, reporting) pick them up.
type StreamPublisher struct {
	client *redis.Client
	stream string
}

// NewStreamPublisher creates a new StreamPublisher.
func NewStreamPublisher(client *redis.Client, stream string) *StreamPublisher {
	return &StreamPublisher{client: client, stream: stream}
}

// Publish appends the event to the stream.
func (p *StreamPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}

	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"event_id":       event.ID,
			"event_type":     event.EventType,
			"aggregate_type": event.AggregateType,
			"aggregate_id":   event.AggregateID,
			"payload":        string(payload),
		},
	}).Err()
}

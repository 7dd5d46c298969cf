package eventpublisher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/gosettle/internal/domain"
	"github.com/iho/gosettle/internal/usecase/mocks"
)

type capturingPublisher struct {
	published []string
	failOn    map[string]bool
}

func (p *capturingPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	if p.failOn[event.ID] {
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, event.ID)
	return nil
}

func newPublisherFixture(pub Publisher, repo *mocks.MockOutboxRepository) *EventPublisher {
	return NewEventPublisher(Config{
		OutboxRepo: repo,
		Publisher:  pub,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		BatchSize:  10,
		Interval:   time.Hour,
	})
}

func seedEvent(t *testing.T, repo *mocks.MockOutboxRepository, id string) {
	t.Helper()
	err := repo.Create(context.Background(), nil, &domain.OutboxEvent{
		ID:            id,
		AggregateID:   "abc123",
		AggregateType: domain.AggregateTypeIntent,
		EventType:     domain.EventTypeIntentCreated,
		Payload:       map[string]any{"instruction_id": "abc123"},
		CreatedAt:     time.Now().UTC(),
	})
	require.NoError(t, err)
}

func TestEventPublisherPublishesAndMarks(t *testing.T) {
	repo := mocks.NewMockOutboxRepository()
	pub := &capturingPublisher{}
	ep := newPublisherFixture(pub, repo)

	seedEvent(t, repo, "evt-1")
	seedEvent(t, repo, "evt-2")

	require.NoError(t, ep.processEvents(context.Background()))

	assert.Equal(t, []string{"evt-1", "evt-2"}, pub.published)

	remaining, err := repo.GetUnpublished(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestEventPublisherContinuesPastFailure(t *testing.T) {
	repo := mocks.NewMockOutboxRepository()
	pub := &capturingPublisher{failOn: map[string]bool{"evt-1": true}}
	ep := newPublisherFixture(pub, repo)

	seedEvent(t, repo, "evt-1")
	seedEvent(t, repo, "evt-2")

	require.NoError(t, ep.processEvents(context.Background()))

	// The failed event stays unpublished for the next poll.
	assert.Equal(t, []string{"evt-2"}, pub.published)

	remaining, err := repo.GetUnpublished(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "evt-1", remaining[0].ID)
}

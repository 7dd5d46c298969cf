package memory

import (
	"context"
	"sync"

	"github.com/iho/gosettle/internal/domain"
)

// Source is an in-process event source backed by a channel. It preserves
// publish order and tracks acknowledgements, which is enough for tests and
// single-process deployments without a stream broker.
type Source struct {
	mu     sync.Mutex
	ch     chan *domain.SettlementEvent
	acked  map[string]bool
	closed bool
}

// NewSource creates a source with the given buffer capacity.
func NewSource(capacity int) *Source {
	return &Source{
		ch:    make(chan *domain.SettlementEvent, capacity),
		acked: make(map[string]bool),
	}
}

// Publish enqueues an event. It blocks when the buffer is full.
func (s *Source) Publish(event *domain.SettlementEvent) {
	s.ch <- event
}

// Close stops delivery after the buffered events are drained.
func (s *Source) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// Next returns the next published event, blocking until one is available or
// ctx is cancelled.
func (s *Source) Next(ctx context.Context) (*domain.SettlementEvent, error) {
	select {
	case event, ok := <-s.ch:
		if !ok {
			return nil, context.Canceled
		}
		return event, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Ack records the event as consumed.
func (s *Source) Ack(ctx context.Context, event *domain.SettlementEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acked[event.ID] = true
	return nil
}

// Acked reports whether the event id has been acknowledged.
func (s *Source) Acked(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acked[id]
}

package redisstream

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/iho/gosettle/internal/domain"
)

const defaultBlock = 5 * time.Second

// Source consumes settlement confirmation events from a Redis stream through
// a consumer group. Entries stay pending until acknowledged, so an event the
// engine did not ack is redelivered when the consumer restarts: the stream
// gives at-least-once delivery and per-stream ordering.
type Source struct {
	client   *redis.Client
	stream   string
	group    string
	consumer string
	block    time.Duration
	logger   *slog.Logger

	groupReady  bool
	backlogDone bool
}

// Config configures a stream source.
type Config struct {
	Stream   string
	Group    string
	Consumer string
	Block    time.Duration
	Logger   *slog.Logger
}

// NewSource creates a new stream source.
func NewSource(client *redis.Client, cfg Config) *Source {
	if cfg.Block == 0 {
		cfg.Block = defaultBlock
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Source{
		client:   client,
		stream:   cfg.Stream,
		group:    cfg.Group,
		consumer: cfg.Consumer,
		block:    cfg.Block,
		logger:   cfg.Logger,
	}
}

// Next blocks until an event is available or ctx is cancelled. Events left
// pending by this consumer in a previous run are drained before new entries.
// Entries that cannot be parsed are acknowledged and skipped so a malformed
// producer message cannot wedge the stream.
func (s *Source) Next(ctx context.Context) (*domain.SettlementEvent, error) {
	if err := s.ensureGroup(ctx); err != nil {
		return nil, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		id := ">"
		if !s.backlogDone {
			id = "0"
		}

		streams, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    s.group,
			Consumer: s.consumer,
			Streams:  []string{s.stream, id},
			Count:    1,
			Block:    s.block,
		}).Result()
		if err == redis.Nil || (err == nil && (len(streams) == 0 || len(streams[0].Messages) == 0)) {
			// Reading "0" with no messages means the backlog is drained.
			s.backlogDone = true
			continue
		}
		if err != nil {
			return nil, err
		}

		msg := streams[0].Messages[0]
		event, err := s.parse(msg)
		if err != nil {
			s.logger.Warn("skipping malformed stream entry",
				slog.String("entry_id", msg.ID),
				slog.String("error", err.Error()))
			_ = s.client.XAck(ctx, s.stream, s.group, msg.ID).Err()
			continue
		}

		return event, nil
	}
}

// Ack marks the event's stream entry as consumed.
func (s *Source) Ack(ctx context.Context, event *domain.SettlementEvent) error {
	return s.client.XAck(ctx, s.stream, s.group, event.ID).Err()
}

func (s *Source) ensureGroup(ctx context.Context) error {
	if s.groupReady {
		return nil
	}

	err := s.client.XGroupCreateMkStream(ctx, s.stream, s.group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return err
	}

	s.groupReady = true
	return nil
}

func (s *Source) parse(msg redis.XMessage) (*domain.SettlementEvent, error) {
	instructionID, ok := msg.Values["instruction_id"].(string)
	if !ok || instructionID == "" {
		return nil, fmt.Errorf("entry %s: missing instruction_id", msg.ID)
	}

	raw, ok := msg.Values["settled_amount"].(string)
	if !ok {
		return nil, fmt.Errorf("entry %s: missing settled_amount", msg.ID)
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("entry %s: bad settled_amount %q: %w", msg.ID, raw, err)
	}

	observedAt := time.Now().UTC()
	if ts, ok := msg.Values["observed_at"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			observedAt = parsed
		}
	}

	return &domain.SettlementEvent{
		ID:            msg.ID,
		InstructionID: instructionID,
		SettledAmount: amount,
		ObservedAt:    observedAt,
	}, nil
}

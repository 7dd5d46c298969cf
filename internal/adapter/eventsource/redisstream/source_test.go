package redisstream

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSource(t *testing.T, consumer string) (*Source, *redislib.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	source := NewSource(client, Config{
		Stream:   "settlement:events",
		Group:    "reconciler",
		Consumer: consumer,
		Block:    10 * time.Millisecond,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	return source, client
}

func addEntry(t *testing.T, client *redislib.Client, values map[string]any) string {
	t.Helper()

	id, err := client.XAdd(context.Background(), &redislib.XAddArgs{
		Stream: "settlement:events",
		Values: values,
	}).Result()
	require.NoError(t, err)
	return id
}

func TestSourceNextParsesEntry(t *testing.T) {
	source, client := newTestSource(t, "c1")

	id := addEntry(t, client, map[string]any{
		"instruction_id": "abc123",
		"settled_amount": "12345.67",
		"observed_at":    "2024-08-15T10:00:00Z",
	})

	event, err := source.Next(context.Background())
	require.NoError(t, err)

	assert.Equal(t, id, event.ID)
	assert.Equal(t, "abc123", event.InstructionID)
	assert.Equal(t, "12345.67", event.SettledAmount.String())
	assert.Equal(t, 2024, event.ObservedAt.Year())

	require.NoError(t, source.Ack(context.Background(), event))
}

func TestSourceSkipsMalformedEntry(t *testing.T) {
	source, client := newTestSource(t, "c1")

	addEntry(t, client, map[string]any{"instruction_id": "abc123"})
	addEntry(t, client, map[string]any{
		"instruction_id": "def456",
		"settled_amount": "100",
	})

	event, err := source.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "def456", event.InstructionID)
}

func TestSourceRedeliversUnacked(t *testing.T) {
	first, client := newTestSource(t, "c1")

	addEntry(t, client, map[string]any{
		"instruction_id": "abc123",
		"settled_amount": "100",
	})

	event, err := first.Next(context.Background())
	require.NoError(t, err)

	// Same consumer restarts without acknowledging: the pending entry is
	// drained from the backlog before any new entries.
	second := NewSource(client, Config{
		Stream:   "settlement:events",
		Group:    "reconciler",
		Consumer: "c1",
		Block:    10 * time.Millisecond,
	})

	redelivered, err := second.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, event.ID, redelivered.ID)
	assert.Equal(t, event.InstructionID, redelivered.InstructionID)
}

func TestSourceNextStopsOnCancel(t *testing.T) {
	source, _ := newTestSource(t, "c1")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := source.Next(ctx)
	require.Error(t, err)
}

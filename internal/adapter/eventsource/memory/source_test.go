package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/gosettle/internal/domain"
)

func TestSourceDeliversInOrder(t *testing.T) {
	source := NewSource(4)

	for _, id := range []string{"evt-1", "evt-2", "evt-3"} {
		source.Publish(&domain.SettlementEvent{
			ID:            id,
			InstructionID: "abc",
			SettledAmount: decimal.NewFromInt(100),
		})
	}

	for _, want := range []string{"evt-1", "evt-2", "evt-3"} {
		event, err := source.Next(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, event.ID)
		require.NoError(t, source.Ack(context.Background(), event))
		assert.True(t, source.Acked(event.ID))
	}
}

func TestSourceNextHonorsCancel(t *testing.T) {
	source := NewSource(1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := source.Next(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

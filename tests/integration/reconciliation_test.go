package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/iho/gosettle/internal/adapter/eventsource/redisstream"
	"github.com/iho/gosettle/internal/adapter/repository/postgres"
	"github.com/iho/gosettle/internal/domain"
	infraredis "github.com/iho/gosettle/internal/infrastructure/redis"
	"github.com/iho/gosettle/internal/usecase"
	"github.com/iho/gosettle/tests/testutil"
)

func TestReconciliationAgainstStream(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()

	testDB.TruncateAll(ctx)

	pool := testDB.Pool
	intentRepo := postgres.NewIntentRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)
	txManager := postgres.NewTxManager(pool)
	idGen := postgres.NewULIDGenerator()
	retrier := postgres.NewRetrier()

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	redisClient, err := infraredis.NewClient(ctx, redisURL)
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	// A fresh stream per run keeps repeated test executions independent.
	stream := "settlement:events:test:" + testutil.GenerateID()
	defer redisClient.Del(context.Background(), stream)

	source := redisstream.NewSource(redisClient, redisstream.Config{
		Stream:   stream,
		Group:    "reconciler-test",
		Consumer: "reconciler-test-1",
		Block:    100 * time.Millisecond,
		Logger:   discardLogger(),
	})

	engine := usecase.NewReconciliationUseCase(usecase.ReconciliationConfig{
		TxManager:   txManager,
		IntentRepo:  intentRepo,
		OutboxRepo:  outboxRepo,
		IDGen:       idGen,
		Source:      source,
		Retrier:     retrier,
		Logger:      discardLogger(),
		AutoConfirm: true,
		PollBackoff: 50 * time.Millisecond,
	})

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = engine.Run(runCtx)
	}()

	publish := func(instructionID, amount string) {
		if err := redisClient.XAdd(ctx, &redis.XAddArgs{
			Stream: stream,
			Values: map[string]any{
				"instruction_id": instructionID,
				"settled_amount": amount,
				"observed_at":    time.Now().UTC().Format(time.RFC3339),
			},
		}).Err(); err != nil {
			t.Fatalf("failed to publish event: %v", err)
		}
	}

	waitForStatus := func(instructionID string, want domain.IntentStatus) *domain.SettlementIntent {
		t.Helper()
		deadline := time.Now().Add(10 * time.Second)
		for time.Now().Before(deadline) {
			intent, err := intentRepo.GetByInstructionID(ctx, instructionID)
			if err == nil && intent.Status == want {
				return intent
			}
			time.Sleep(50 * time.Millisecond)
		}
		intent, err := intentRepo.GetByInstructionID(ctx, instructionID)
		if err != nil {
			t.Fatalf("intent not found while waiting for %s: %v", want, err)
		}
		t.Fatalf("intent stuck in %s, wanted %s", intent.Status, want)
		return nil
	}

	t.Run("matching event confirms intent", func(t *testing.T) {
		intent := testDB.CreateTestIntent(ctx, "TRN-RECON-001", decimal.RequireFromString("1000.50"), domain.IntentStatusCreated)

		publish(intent.InstructionID, "1000.50")

		got := waitForStatus(intent.InstructionID, domain.IntentStatusConfirmedReconciled)
		if got.SettledAmount == nil || !got.SettledAmount.Equal(intent.Amount) {
			t.Errorf("settled amount not recorded: %v", got.SettledAmount)
		}
	})

	t.Run("mismatched amount opens dispute", func(t *testing.T) {
		intent := testDB.CreateTestIntent(ctx, "TRN-RECON-002", decimal.RequireFromString("500"), domain.IntentStatusCreated)

		publish(intent.InstructionID, "499.99")

		got := waitForStatus(intent.InstructionID, domain.IntentStatusDispute)
		if got.DisputeReason == "" {
			t.Error("dispute reason not recorded")
		}
		if got.SettledAmount == nil || !got.SettledAmount.Equal(decimal.RequireFromString("499.99")) {
			t.Errorf("observed amount not recorded: %v", got.SettledAmount)
		}
	})

	t.Run("replayed event leaves state unchanged", func(t *testing.T) {
		intent := testDB.CreateTestIntent(ctx, "TRN-RECON-003", decimal.RequireFromString("75"), domain.IntentStatusCreated)

		publish(intent.InstructionID, "75")
		got := waitForStatus(intent.InstructionID, domain.IntentStatusConfirmedReconciled)
		firstUpdate := got.UpdatedAt

		publish(intent.InstructionID, "75")

		// The duplicate must be consumed without a second transition.
		time.Sleep(500 * time.Millisecond)
		again, err := intentRepo.GetByInstructionID(ctx, intent.InstructionID)
		if err != nil {
			t.Fatalf("failed to load intent: %v", err)
		}
		if again.Status != domain.IntentStatusConfirmedReconciled {
			t.Errorf("replay changed status to %s", again.Status)
		}
		if !again.UpdatedAt.Equal(firstUpdate) {
			t.Errorf("replay touched the intent: %s vs %s", again.UpdatedAt, firstUpdate)
		}
	})

	t.Run("unknown instruction does not block stream", func(t *testing.T) {
		publish(domain.DeriveInstructionID("TRN-RECON-MISSING"), "10")

		intent := testDB.CreateTestIntent(ctx, "TRN-RECON-004", decimal.RequireFromString("20"), domain.IntentStatusCreated)
		publish(intent.InstructionID, "20")

		waitForStatus(intent.InstructionID, domain.IntentStatusConfirmedReconciled)
	})

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("reconciliation engine did not stop")
	}
}

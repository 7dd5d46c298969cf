package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/gosettle/internal/domain"
	"github.com/iho/gosettle/internal/usecase"
	"github.com/iho/gosettle/internal/usecase/mocks"
)

func newTestIntent(reference string) *domain.SettlementIntent {
	return &domain.SettlementIntent{
		InstructionID:        domain.DeriveInstructionID(reference),
		TransactionReference: reference,
		Payer:                "DEUTDEFF",
		Payee:                "CHASUS33",
		Amount:               decimal.RequireFromString("100"),
		Currency:             "USD",
		ValueDate:            time.Date(2024, 8, 15, 0, 0, 0, 0, time.UTC),
	}
}

func newIntentUseCase(intentRepo *mocks.MockIntentRepository, outboxRepo *mocks.MockOutboxRepository) *usecase.IntentUseCase {
	return usecase.NewIntentUseCase(
		mocks.NewMockTransactionManager(),
		intentRepo,
		outboxRepo,
		mocks.NewMockIDGenerator(),
		nil,
	)
}

func TestIntentUseCase_CreateIntent(t *testing.T) {
	t.Run("creates intent in created status", func(t *testing.T) {
		intentRepo := mocks.NewMockIntentRepository()
		outboxRepo := mocks.NewMockOutboxRepository()
		uc := newIntentUseCase(intentRepo, outboxRepo)

		intent := newTestIntent("TRN-001")
		err := uc.CreateIntent(context.Background(), intent)
		require.NoError(t, err)

		stored, err := intentRepo.GetByInstructionID(context.Background(), intent.InstructionID)
		require.NoError(t, err)
		assert.Equal(t, domain.IntentStatusCreated, stored.Status)
		assert.Nil(t, stored.SettledAmount)
		assert.False(t, stored.CreatedAt.IsZero())

		created := outboxRepo.EventsByType(domain.EventTypeIntentCreated)
		require.Len(t, created, 1)
		assert.Equal(t, intent.InstructionID, created[0].AggregateID)
	})

	t.Run("rejects duplicate instruction id", func(t *testing.T) {
		intentRepo := mocks.NewMockIntentRepository()
		uc := newIntentUseCase(intentRepo, mocks.NewMockOutboxRepository())

		require.NoError(t, uc.CreateIntent(context.Background(), newTestIntent("TRN-001")))

		err := uc.CreateIntent(context.Background(), newTestIntent("TRN-001"))
		assert.ErrorIs(t, err, domain.ErrDuplicateInstruction)
	})

	t.Run("duplicate across terminal status", func(t *testing.T) {
		// ids are never reused, even after the original intent reached a
		// terminal status.
		intentRepo := mocks.NewMockIntentRepository()
		uc := newIntentUseCase(intentRepo, mocks.NewMockOutboxRepository())

		intent := newTestIntent("TRN-001")
		require.NoError(t, uc.CreateIntent(context.Background(), intent))
		require.NoError(t, intentRepo.UpdateStatus(context.Background(), nil,
			intent.InstructionID, domain.IntentStatusDispute, nil, "manual review", time.Now().UTC()))

		err := uc.CreateIntent(context.Background(), newTestIntent("TRN-001"))
		assert.ErrorIs(t, err, domain.ErrDuplicateInstruction)
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		uc := newIntentUseCase(mocks.NewMockIntentRepository(), mocks.NewMockOutboxRepository())

		intent := newTestIntent("TRN-001")
		intent.Amount = decimal.RequireFromString("-5")

		err := uc.CreateIntent(context.Background(), intent)
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	})

	t.Run("concurrent creates for one id admit exactly one", func(t *testing.T) {
		intentRepo := mocks.NewMockIntentRepository()
		uc := newIntentUseCase(intentRepo, mocks.NewMockOutboxRepository())

		const writers = 8
		errs := make(chan error, writers)
		var wg sync.WaitGroup
		for range writers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- uc.CreateIntent(context.Background(), newTestIntent("TRN-RACE"))
			}()
		}
		wg.Wait()
		close(errs)

		var ok, dup int
		for err := range errs {
			if err == nil {
				ok++
				continue
			}
			require.ErrorIs(t, err, domain.ErrDuplicateInstruction)
			dup++
		}
		assert.Equal(t, 1, ok)
		assert.Equal(t, writers-1, dup)
	})
}

func TestIntentUseCase_Dispute(t *testing.T) {
	seed := func(t *testing.T, repo *mocks.MockIntentRepository, status domain.IntentStatus) *domain.SettlementIntent {
		t.Helper()
		intent := newTestIntent("TRN-001")
		intent.Status = status
		require.NoError(t, repo.Create(context.Background(), nil, intent))
		return intent
	}

	t.Run("disputes settled intent", func(t *testing.T) {
		intentRepo := mocks.NewMockIntentRepository()
		outboxRepo := mocks.NewMockOutboxRepository()
		uc := newIntentUseCase(intentRepo, outboxRepo)
		intent := seed(t, intentRepo, domain.IntentStatusOnChainSettled)

		updated, err := uc.Dispute(context.Background(), intent.InstructionID, "manual review")
		require.NoError(t, err)
		assert.Equal(t, domain.IntentStatusDispute, updated.Status)
		assert.Equal(t, "manual review", updated.DisputeReason)

		stored, err := intentRepo.GetByInstructionID(context.Background(), intent.InstructionID)
		require.NoError(t, err)
		assert.Equal(t, domain.IntentStatusDispute, stored.Status)
		assert.Len(t, outboxRepo.EventsByType(domain.EventTypeIntentDisputed), 1)
	})

	t.Run("disputes confirmed intent", func(t *testing.T) {
		intentRepo := mocks.NewMockIntentRepository()
		uc := newIntentUseCase(intentRepo, mocks.NewMockOutboxRepository())
		intent := seed(t, intentRepo, domain.IntentStatusConfirmedReconciled)

		updated, err := uc.Dispute(context.Background(), intent.InstructionID, "post-settlement discrepancy")
		require.NoError(t, err)
		assert.Equal(t, domain.IntentStatusDispute, updated.Status)
	})

	t.Run("rejects dispute before settlement", func(t *testing.T) {
		intentRepo := mocks.NewMockIntentRepository()
		uc := newIntentUseCase(intentRepo, mocks.NewMockOutboxRepository())
		intent := seed(t, intentRepo, domain.IntentStatusCreated)

		_, err := uc.Dispute(context.Background(), intent.InstructionID, "manual review")
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("rejects empty reason", func(t *testing.T) {
		uc := newIntentUseCase(mocks.NewMockIntentRepository(), mocks.NewMockOutboxRepository())

		_, err := uc.Dispute(context.Background(), "whatever", "")
		assert.ErrorIs(t, err, domain.ErrEmptyDisputeReason)
	})

	t.Run("unknown intent", func(t *testing.T) {
		uc := newIntentUseCase(mocks.NewMockIntentRepository(), mocks.NewMockOutboxRepository())

		_, err := uc.Dispute(context.Background(), "missing", "manual review")
		assert.ErrorIs(t, err, domain.ErrIntentNotFound)
	})
}

func TestIntentUseCase_Confirm(t *testing.T) {
	t.Run("confirms settled intent with matching amount", func(t *testing.T) {
		intentRepo := mocks.NewMockIntentRepository()
		outboxRepo := mocks.NewMockOutboxRepository()
		uc := newIntentUseCase(intentRepo, outboxRepo)

		intent := newTestIntent("TRN-001")
		intent.Status = domain.IntentStatusOnChainSettled
		settled := intent.Amount
		intent.SettledAmount = &settled
		require.NoError(t, intentRepo.Create(context.Background(), nil, intent))

		updated, err := uc.Confirm(context.Background(), intent.InstructionID)
		require.NoError(t, err)
		assert.Equal(t, domain.IntentStatusConfirmedReconciled, updated.Status)
		assert.Len(t, outboxRepo.EventsByType(domain.EventTypeIntentConfirmed), 1)
	})

	t.Run("rejects confirm without recorded settled amount", func(t *testing.T) {
		intentRepo := mocks.NewMockIntentRepository()
		uc := newIntentUseCase(intentRepo, mocks.NewMockOutboxRepository())

		intent := newTestIntent("TRN-001")
		intent.Status = domain.IntentStatusOnChainSettled
		require.NoError(t, intentRepo.Create(context.Background(), nil, intent))

		_, err := uc.Confirm(context.Background(), intent.InstructionID)
		assert.ErrorIs(t, err, domain.ErrUnsettledConfirm)
	})

	t.Run("rejects confirm before settlement", func(t *testing.T) {
		intentRepo := mocks.NewMockIntentRepository()
		uc := newIntentUseCase(intentRepo, mocks.NewMockOutboxRepository())

		intent := newTestIntent("TRN-001")
		intent.Status = domain.IntentStatusCreated
		require.NoError(t, intentRepo.Create(context.Background(), nil, intent))

		_, err := uc.Confirm(context.Background(), intent.InstructionID)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})
}

func TestIntentUseCase_ListIntents(t *testing.T) {
	t.Run("applies default and max limits", func(t *testing.T) {
		intentRepo := mocks.NewMockIntentRepository()
		uc := newIntentUseCase(intentRepo, mocks.NewMockOutboxRepository())

		var gotLimit int
		intentRepo.ListFunc = func(ctx context.Context, limit, offset int) ([]*domain.SettlementIntent, error) {
			gotLimit = limit
			return nil, nil
		}

		_, err := uc.ListIntents(context.Background(), usecase.ListIntentsInput{})
		require.NoError(t, err)
		assert.Equal(t, usecase.DefaultListLimit, gotLimit)

		_, err = uc.ListIntents(context.Background(), usecase.ListIntentsInput{Limit: 10_000})
		require.NoError(t, err)
		assert.Equal(t, usecase.MaxListLimit, gotLimit)
	})

	t.Run("returns intents in creation order", func(t *testing.T) {
		intentRepo := mocks.NewMockIntentRepository()
		uc := newIntentUseCase(intentRepo, mocks.NewMockOutboxRepository())

		for _, ref := range []string{"TRN-A", "TRN-B", "TRN-C"} {
			require.NoError(t, uc.CreateIntent(context.Background(), newTestIntent(ref)))
		}

		intents, err := uc.ListIntents(context.Background(), usecase.ListIntentsInput{Limit: 2})
		require.NoError(t, err)
		require.Len(t, intents, 2)
		assert.Equal(t, "TRN-A", intents[0].TransactionReference)
		assert.Equal(t, "TRN-B", intents[1].TransactionReference)
	})
}

func TestIntentUseCase_StatusCounts(t *testing.T) {
	intentRepo := mocks.NewMockIntentRepository()
	uc := newIntentUseCase(intentRepo, mocks.NewMockOutboxRepository())

	for _, ref := range []string{"TRN-A", "TRN-B"} {
		require.NoError(t, uc.CreateIntent(context.Background(), newTestIntent(ref)))
	}

	counts, err := uc.StatusCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[domain.IntentStatusCreated])
}

package usecase

import (
	"context"
	"time"

	"github.com/iho/gosettle/internal/domain"
	"github.com/iho/gosettle/internal/infrastructure/metrics"
)

// IntentUseCase is the authoritative ledger of settlement intents and the
// sole enforcer of the lifecycle state machine. Create and Transition are
// atomic with respect to their guard checks: uniqueness is enforced by the
// store's primary key, and the current-status guard runs under a row lock,
// so two writers on the same instruction id are serialized.
type IntentUseCase struct {
	txManager  TransactionManager
	intentRepo IntentRepository
	outboxRepo OutboxRepository
	idGen      IDGenerator
	metrics    *metrics.Metrics
}

// NewIntentUseCase creates a new IntentUseCase.
func NewIntentUseCase(
	txManager TransactionManager,
	intentRepo IntentRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *IntentUseCase {
	return &IntentUseCase{
		txManager:  txManager,
		intentRepo: intentRepo,
		outboxRepo: outboxRepo,
		idGen:      idGen,
		metrics:    metrics,
	}
}

// CreateIntent records a new intent in IntentCreated status. It fails with
// domain.ErrDuplicateInstruction if the instruction id was ever seen before;
// intents are never deleted, so the check covers the ledger's full history.
func (uc *IntentUseCase) CreateIntent(ctx context.Context, intent *domain.SettlementIntent) error {
	if err := intent.Validate(); err != nil {
		return err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	now := time.Now().UTC()
	intent.Status = domain.IntentStatusCreated
	intent.CreatedAt = now
	intent.UpdatedAt = now

	if err := uc.intentRepo.Create(txCtx, tx, intent); err != nil {
		return err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   intent.InstructionID,
		AggregateType: domain.AggregateTypeIntent,
		EventType:     domain.EventTypeIntentCreated,
		Payload: map[string]any{
			"instruction_id":        intent.InstructionID,
			"transaction_reference": intent.TransactionReference,
			"amount":                intent.Amount.String(),
			"currency":              intent.Currency,
			"value_date":            intent.ValueDate.UTC().Format(time.RFC3339),
		},
		CreatedAt: now,
		Published: false,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return err
	}

	if err := tx.Commit(txCtx); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.IntentsCreated.Inc()
	}

	return nil
}

// Confirm applies the explicit confirm transition. The guard requires a
// settled amount to have been recorded and to match the intent's original
// amount exactly; confirmation never happens before that comparison.
func (uc *IntentUseCase) Confirm(ctx context.Context, instructionID string) (*domain.SettlementIntent, error) {
	return uc.transition(ctx, instructionID, domain.TransitionConfirm, "")
}

// Dispute flags an intent for manual resolution with the given reason.
func (uc *IntentUseCase) Dispute(ctx context.Context, instructionID, reason string) (*domain.SettlementIntent, error) {
	if reason == "" {
		return nil, domain.ErrEmptyDisputeReason
	}
	return uc.transition(ctx, instructionID, domain.TransitionDispute, reason)
}

func (uc *IntentUseCase) transition(ctx context.Context, instructionID string, t domain.IntentTransition, reason string) (*domain.SettlementIntent, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	intent, err := uc.intentRepo.GetByInstructionIDForUpdate(txCtx, tx, instructionID)
	if err != nil {
		return nil, err
	}

	next, err := intent.Status.Next(t)
	if err != nil {
		return nil, err
	}

	if t == domain.TransitionConfirm {
		if intent.SettledAmount == nil {
			return nil, domain.ErrUnsettledConfirm
		}
		if !intent.Matches(*intent.SettledAmount) {
			return nil, domain.ErrUnsettledConfirm
		}
	}

	now := time.Now().UTC()
	if err := uc.intentRepo.UpdateStatus(txCtx, tx, instructionID, next, intent.SettledAmount, reason, now); err != nil {
		return nil, err
	}

	event := uc.transitionEvent(intent, t, reason, now)
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	intent.Status = next
	intent.DisputeReason = reason
	intent.UpdatedAt = now

	if uc.metrics != nil {
		switch t {
		case domain.TransitionConfirm:
			uc.metrics.IntentsConfirmed.Inc()
		case domain.TransitionDispute:
			uc.metrics.IntentsDisputed.Inc()
		}
	}

	return intent, nil
}

func (uc *IntentUseCase) transitionEvent(intent *domain.SettlementIntent, t domain.IntentTransition, reason string, now time.Time) *domain.OutboxEvent {
	eventType := domain.EventTypeIntentConfirmed
	payload := map[string]any{
		"instruction_id": intent.InstructionID,
		"amount":         intent.Amount.String(),
	}

	if t == domain.TransitionDispute {
		eventType = domain.EventTypeIntentDisputed
		payload = map[string]any{
			"instruction_id": intent.InstructionID,
			"reason":         reason,
		}
	}

	return &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   intent.InstructionID,
		AggregateType: domain.AggregateTypeIntent,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     now,
		Published:     false,
	}
}

// GetIntent retrieves an intent by instruction id.
func (uc *IntentUseCase) GetIntent(ctx context.Context, instructionID string) (*domain.SettlementIntent, error) {
	return uc.intentRepo.GetByInstructionID(ctx, instructionID)
}

// ListIntentsInput represents input for listing intents.
type ListIntentsInput struct {
	Limit  int
	Offset int
}

// ListIntents lists intents in creation order.
func (uc *IntentUseCase) ListIntents(ctx context.Context, input ListIntentsInput) ([]*domain.SettlementIntent, error) {
	if input.Limit <= 0 {
		input.Limit = DefaultListLimit
	}

	if input.Limit > MaxListLimit {
		input.Limit = MaxListLimit
	}

	return uc.intentRepo.List(ctx, input.Limit, input.Offset)
}

// StatusCounts returns the number of intents per lifecycle status.
func (uc *IntentUseCase) StatusCounts(ctx context.Context) (map[domain.IntentStatus]int64, error) {
	return uc.intentRepo.CountByStatus(ctx)
}

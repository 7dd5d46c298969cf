package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gosettle/internal/domain"
	"github.com/iho/gosettle/internal/infrastructure/metrics"
)

// ReconciliationUseCase drives intent state purely from settlement events
// observed at the external authority. Events are applied exactly once:
// redelivered events whose effect is already reflected in the ledger are
// no-op replays, and each application runs in a single transaction under a
// row lock on the instruction id, so concurrent events for the same intent
// serialize while unrelated intents proceed in parallel.
type ReconciliationUseCase struct {
	txManager   TransactionManager
	intentRepo  IntentRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	source      EventSource
	retrier     Retrier
	logger      *slog.Logger
	metrics     *metrics.Metrics
	autoConfirm bool
	pollBackoff time.Duration
}

// ReconciliationConfig configures the engine.
type ReconciliationConfig struct {
	TxManager   TransactionManager
	IntentRepo  IntentRepository
	OutboxRepo  OutboxRepository
	IDGen       IDGenerator
	Source      EventSource
	Retrier     Retrier
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
	AutoConfirm bool
	PollBackoff time.Duration // wait after a source failure before retrying
}

// NewReconciliationUseCase creates a new reconciliation engine.
func NewReconciliationUseCase(cfg ReconciliationConfig) *ReconciliationUseCase {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.PollBackoff == 0 {
		cfg.PollBackoff = time.Second
	}

	return &ReconciliationUseCase{
		txManager:   cfg.TxManager,
		intentRepo:  cfg.IntentRepo,
		outboxRepo:  cfg.OutboxRepo,
		idGen:       cfg.IDGen,
		source:      cfg.Source,
		retrier:     cfg.Retrier,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
		autoConfirm: cfg.AutoConfirm,
		pollBackoff: cfg.PollBackoff,
	}
}

// Run consumes settlement events until ctx is cancelled. A per-event error
// never stops the loop: permanent errors are reported and acknowledged so
// one bad event cannot block the stream, transient errors leave the event
// unacknowledged for redelivery. An event picked up before cancellation is
// applied to completion.
func (uc *ReconciliationUseCase) Run(ctx context.Context) error {
	uc.logger.Info("reconciliation engine started",
		slog.Bool("auto_confirm", uc.autoConfirm))

	for {
		event, err := uc.source.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				uc.logger.Info("reconciliation engine shutting down")
				return ctx.Err()
			}

			uc.logger.Error("event source failure", slog.String("error", err.Error()))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(uc.pollBackoff):
			}
			continue
		}

		uc.processEvent(ctx, event)
	}
}

// processEvent applies one event and decides its acknowledgement. The apply
// context is detached from the run context so shutdown finishes the
// in-flight event instead of tearing its transaction down.
func (uc *ReconciliationUseCase) processEvent(ctx context.Context, event *domain.SettlementEvent) {
	applyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), DefaultTransactionTimeout)
	defer cancel()

	start := time.Now()

	err := uc.applyWithRetry(applyCtx, event)

	if uc.metrics != nil {
		uc.metrics.EventProcessingDuration.Observe(time.Since(start).Seconds())
	}

	switch {
	case err == nil:
		uc.ack(applyCtx, event)

	case isPermanentEventError(err):
		// Surface for operator inspection, then acknowledge: redelivery
		// cannot fix a permanent error and must not block the stream.
		uc.logger.Error("settlement event rejected",
			slog.String("event_id", event.ID),
			slog.String("instruction_id", event.InstructionID),
			slog.String("error", err.Error()))
		if uc.metrics != nil {
			uc.metrics.EventErrors.WithLabelValues(classifyEventError(err)).Inc()
		}
		uc.ack(applyCtx, event)

	default:
		// Transient storage failure: leave unacknowledged so the source
		// redelivers the event.
		uc.logger.Error("settlement event application failed, will retry",
			slog.String("event_id", event.ID),
			slog.String("instruction_id", event.InstructionID),
			slog.String("error", err.Error()))
		if uc.metrics != nil {
			uc.metrics.EventErrors.WithLabelValues("transient").Inc()
		}
	}
}

func (uc *ReconciliationUseCase) applyWithRetry(ctx context.Context, event *domain.SettlementEvent) error {
	if uc.retrier == nil {
		return uc.ApplyEvent(ctx, event)
	}

	return uc.retrier.Retry(ctx, func() error {
		return uc.ApplyEvent(ctx, event)
	})
}

func (uc *ReconciliationUseCase) ack(ctx context.Context, event *domain.SettlementEvent) {
	if err := uc.source.Ack(ctx, event); err != nil {
		uc.logger.Warn("failed to acknowledge event",
			slog.String("event_id", event.ID),
			slog.String("error", err.Error()))
	}
}

// ApplyEvent applies a single settlement event to the ledger atomically:
// either the full transition (status, settled amount, outbox events) commits
// or nothing does.
func (uc *ReconciliationUseCase) ApplyEvent(ctx context.Context, event *domain.SettlementEvent) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	intent, err := uc.intentRepo.GetByInstructionIDForUpdate(txCtx, tx, event.InstructionID)
	if err != nil {
		if errors.Is(err, domain.ErrIntentNotFound) {
			// An intent must pre-exist its settlement event.
			return fmt.Errorf("settlement event %s for unknown instruction %s: %w",
				event.ID, event.InstructionID, domain.ErrIntentNotFound)
		}
		return err
	}

	switch intent.Status {
	case domain.IntentStatusCreated:
		return uc.applySettle(txCtx, tx, intent, event)

	case domain.IntentStatusOnChainSettled, domain.IntentStatusConfirmedReconciled:
		if uc.isReplay(intent, event) {
			uc.noteReplay(intent, event)
			return nil
		}
		// Same instruction settled again with a different amount: a
		// discrepancy against the already recorded settlement.
		reason := fmt.Sprintf("conflicting settlement: recorded %s, got %s",
			recordedAmount(intent), event.SettledAmount)
		return uc.applyDispute(txCtx, tx, intent, event, reason)

	case domain.IntentStatusDispute:
		if uc.isReplay(intent, event) {
			uc.noteReplay(intent, event)
			return nil
		}
		// Dispute is terminal; a fresh settle event here violates the
		// per-instruction causal order and is surfaced, never dropped.
		return fmt.Errorf("settle event %s for disputed instruction %s: %w",
			event.ID, event.InstructionID, domain.ErrOutOfOrderEvent)

	default:
		return fmt.Errorf("settle event %s for instruction %s in status %s: %w",
			event.ID, event.InstructionID, intent.Status, domain.ErrOutOfOrderEvent)
	}
}

// applySettle handles the settle path for an intent awaiting settlement:
// the observed amount is compared against the original before any
// confirmation can happen.
func (uc *ReconciliationUseCase) applySettle(ctx context.Context, tx Transaction, intent *domain.SettlementIntent, event *domain.SettlementEvent) error {
	settled, err := intent.Status.Next(domain.TransitionSettle)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	amount := event.SettledAmount

	if !intent.Matches(event.SettledAmount) {
		reason := fmt.Sprintf("amount mismatch: expected %s, got %s", intent.Amount, event.SettledAmount)

		disputed, err := settled.Next(domain.TransitionDispute)
		if err != nil {
			return err
		}

		if err := uc.intentRepo.UpdateStatus(ctx, tx, intent.InstructionID, disputed, &amount, reason, now); err != nil {
			return err
		}

		events := []*domain.OutboxEvent{
			uc.settledEvent(intent, event, now),
			uc.disputedEvent(intent, reason, now),
		}
		for _, ev := range events {
			if err := uc.outboxRepo.Create(ctx, tx, ev); err != nil {
				return err
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		uc.logger.Warn("settlement amount mismatch, intent disputed",
			slog.String("instruction_id", intent.InstructionID),
			slog.String("expected", intent.Amount.String()),
			slog.String("observed", event.SettledAmount.String()))
		if uc.metrics != nil {
			uc.metrics.IntentsSettled.Inc()
			uc.metrics.IntentsDisputed.Inc()
		}

		return nil
	}

	target := settled
	outbox := []*domain.OutboxEvent{uc.settledEvent(intent, event, now)}

	if uc.autoConfirm {
		confirmed, err := settled.Next(domain.TransitionConfirm)
		if err != nil {
			return err
		}
		target = confirmed
		outbox = append(outbox, uc.confirmedEvent(intent, now))
	}

	if err := uc.intentRepo.UpdateStatus(ctx, tx, intent.InstructionID, target, &amount, "", now); err != nil {
		return err
	}

	for _, ev := range outbox {
		if err := uc.outboxRepo.Create(ctx, tx, ev); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	uc.logger.Info("settlement event reconciled",
		slog.String("instruction_id", intent.InstructionID),
		slog.String("amount", event.SettledAmount.String()),
		slog.String("status", string(target)))
	if uc.metrics != nil {
		uc.metrics.IntentsSettled.Inc()
		if uc.autoConfirm {
			uc.metrics.IntentsConfirmed.Inc()
		}
	}

	return nil
}

// applyDispute moves an already settled or confirmed intent into dispute.
func (uc *ReconciliationUseCase) applyDispute(ctx context.Context, tx Transaction, intent *domain.SettlementIntent, event *domain.SettlementEvent, reason string) error {
	disputed, err := intent.Status.Next(domain.TransitionDispute)
	if err != nil {
		return fmt.Errorf("event %s for instruction %s: %w", event.ID, event.InstructionID, err)
	}

	now := time.Now().UTC()
	if err := uc.intentRepo.UpdateStatus(ctx, tx, intent.InstructionID, disputed, intent.SettledAmount, reason, now); err != nil {
		return err
	}

	if err := uc.outboxRepo.Create(ctx, tx, uc.disputedEvent(intent, reason, now)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	uc.logger.Warn("intent disputed",
		slog.String("instruction_id", intent.InstructionID),
		slog.String("reason", reason))
	if uc.metrics != nil {
		uc.metrics.IntentsDisputed.Inc()
	}

	return nil
}

// isReplay reports whether the event's effect is already reflected in the
// ledger. A redelivered event carries the same settled amount that was
// recorded when it was first applied.
func (uc *ReconciliationUseCase) isReplay(intent *domain.SettlementIntent, event *domain.SettlementEvent) bool {
	return recordedAmount(intent).Equal(event.SettledAmount)
}

func (uc *ReconciliationUseCase) noteReplay(intent *domain.SettlementIntent, event *domain.SettlementEvent) {
	uc.logger.Debug("duplicate settlement event ignored",
		slog.String("event_id", event.ID),
		slog.String("instruction_id", intent.InstructionID),
		slog.String("status", string(intent.Status)))
	if uc.metrics != nil {
		uc.metrics.DuplicateReplays.Inc()
	}
}

func (uc *ReconciliationUseCase) settledEvent(intent *domain.SettlementIntent, event *domain.SettlementEvent, now time.Time) *domain.OutboxEvent {
	return &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   intent.InstructionID,
		AggregateType: domain.AggregateTypeIntent,
		EventType:     domain.EventTypeIntentSettled,
		Payload: map[string]any{
			"instruction_id": intent.InstructionID,
			"settled_amount": event.SettledAmount.String(),
		},
		CreatedAt: now,
		Published: false,
	}
}

func (uc *ReconciliationUseCase) confirmedEvent(intent *domain.SettlementIntent, now time.Time) *domain.OutboxEvent {
	return &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   intent.InstructionID,
		AggregateType: domain.AggregateTypeIntent,
		EventType:     domain.EventTypeIntentConfirmed,
		Payload: map[string]any{
			"instruction_id": intent.InstructionID,
			"amount":         intent.Amount.String(),
		},
		CreatedAt: now,
		Published: false,
	}
}

func (uc *ReconciliationUseCase) disputedEvent(intent *domain.SettlementIntent, reason string, now time.Time) *domain.OutboxEvent {
	return &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   intent.InstructionID,
		AggregateType: domain.AggregateTypeIntent,
		EventType:     domain.EventTypeIntentDisputed,
		Payload: map[string]any{
			"instruction_id": intent.InstructionID,
			"reason":         reason,
		},
		CreatedAt: now,
		Published: false,
	}
}

// recordedAmount is the settled amount recorded when the intent last moved,
// falling back to the original amount for intents confirmed explicitly.
func recordedAmount(intent *domain.SettlementIntent) decimal.Decimal {
	if intent.SettledAmount != nil {
		return *intent.SettledAmount
	}
	return intent.Amount
}

func isPermanentEventError(err error) bool {
	return errors.Is(err, domain.ErrIntentNotFound) ||
		errors.Is(err, domain.ErrOutOfOrderEvent) ||
		errors.Is(err, domain.ErrInvalidTransition)
}

func classifyEventError(err error) string {
	switch {
	case errors.Is(err, domain.ErrIntentNotFound):
		return "unknown_intent"
	case errors.Is(err, domain.ErrOutOfOrderEvent):
		return "out_of_order"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "invalid_transition"
	default:
		return "transient"
	}
}

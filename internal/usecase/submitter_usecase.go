package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/iho/gosettle/internal/domain"
	"github.com/iho/gosettle/internal/infrastructure/metrics"
)

// SubmitterUseCase translates parsed MT202 instructions into ledger entries
// and forwards them to the external settlement authority. Submission is
// idempotent from the caller's perspective: the instruction id is derived
// deterministically from the transaction reference, and a duplicate create
// is reported as already-submitted success.
type SubmitterUseCase struct {
	ledger    IntentLedger
	authority SettlementAuthority
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// NewSubmitterUseCase creates a new SubmitterUseCase.
func NewSubmitterUseCase(ledger IntentLedger, authority SettlementAuthority, logger *slog.Logger, metrics *metrics.Metrics) *SubmitterUseCase {
	if logger == nil {
		logger = slog.Default()
	}

	return &SubmitterUseCase{
		ledger:    ledger,
		authority: authority,
		logger:    logger,
		metrics:   metrics,
	}
}

// SubmitResult reports the outcome of a submission.
type SubmitResult struct {
	Intent           *domain.SettlementIntent
	AlreadySubmitted bool
}

// Submit records the instruction as a new intent and dispatches it to the
// external authority. It does not wait for settlement. Resubmitting the
// same message yields the same instruction id and already-submitted success.
func (uc *SubmitterUseCase) Submit(ctx context.Context, instruction *domain.Instruction) (*SubmitResult, error) {
	if err := instruction.Validate(); err != nil {
		return nil, err
	}

	intent := &domain.SettlementIntent{
		InstructionID:          domain.DeriveInstructionID(instruction.TransactionReference),
		TransactionReference:   instruction.TransactionReference,
		Payer:                  instruction.Payer,
		Payee:                  instruction.Payee,
		Amount:                 instruction.Amount,
		Currency:               instruction.Currency,
		ValueDate:              instruction.ValueDate,
		OrderingInstitution:    instruction.OrderingInstitution,
		BeneficiaryInstitution: instruction.BeneficiaryInstitution,
	}

	err := uc.ledger.CreateIntent(ctx, intent)
	if errors.Is(err, domain.ErrDuplicateInstruction) {
		existing, getErr := uc.ledger.GetIntent(ctx, intent.InstructionID)
		if getErr != nil {
			return nil, getErr
		}

		// Re-dispatch in case the earlier attempt failed after the ledger
		// write; the authority rejects duplicate ids at its own layer.
		if existing.Status == domain.IntentStatusCreated {
			if dispatchErr := uc.authority.SubmitIntent(ctx, existing); dispatchErr != nil {
				return nil, dispatchErr
			}
		}

		uc.logger.Info("instruction already submitted",
			slog.String("instruction_id", intent.InstructionID),
			slog.String("transaction_reference", instruction.TransactionReference))

		return &SubmitResult{Intent: existing, AlreadySubmitted: true}, nil
	}
	if err != nil {
		return nil, err
	}

	if err := uc.authority.SubmitIntent(ctx, intent); err != nil {
		// The ledger entry persists; a retried Submit is answered as
		// already-submitted and the caller can re-dispatch safely.
		return nil, err
	}

	uc.logger.Info("intent submitted",
		slog.String("instruction_id", intent.InstructionID),
		slog.String("amount", intent.Amount.String()),
		slog.String("currency", intent.Currency))

	if uc.metrics != nil {
		uc.metrics.IntentsSubmitted.Inc()
	}

	return &SubmitResult{Intent: intent}, nil
}

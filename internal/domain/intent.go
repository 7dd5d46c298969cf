package domain

import (
	"encoding/hex"
	"time"

	"github.com/shopspring/decimal"
)

// IntentStatus is the lifecycle state of a settlement intent.
type IntentStatus string

const (
	IntentStatusNone                IntentStatus = "none"
	IntentStatusCreated             IntentStatus = "intent_created"
	IntentStatusOnChainSettled      IntentStatus = "onchain_settled"
	IntentStatusConfirmedReconciled IntentStatus = "confirmed_reconciled"
	IntentStatusDispute             IntentStatus = "dispute"
)

// IntentTransition names a state machine edge.
type IntentTransition string

const (
	TransitionSettle  IntentTransition = "settle"
	TransitionConfirm IntentTransition = "confirm"
	TransitionDispute IntentTransition = "dispute"
)

// transitions is the legal edge table. Statuses only advance; there are no
// backward edges. Dispute is absorbing, a confirmed intent may still be disputed.
var transitions = map[IntentStatus]map[IntentTransition]IntentStatus{
	IntentStatusCreated: {
		TransitionSettle: IntentStatusOnChainSettled,
	},
	IntentStatusOnChainSettled: {
		TransitionConfirm: IntentStatusConfirmedReconciled,
		TransitionDispute: IntentStatusDispute,
	},
	IntentStatusConfirmedReconciled: {
		TransitionDispute: IntentStatusDispute,
	},
}

// Next returns the status reached by applying t, or ErrInvalidTransition.
func (s IntentStatus) Next(t IntentTransition) (IntentStatus, error) {
	if next, ok := transitions[s][t]; ok {
		return next, nil
	}
	return s, ErrInvalidTransition
}

// Terminal reports whether no further settlement activity is expected.
func (s IntentStatus) Terminal() bool {
	return s == IntentStatusConfirmedReconciled || s == IntentStatusDispute
}

// rank orders statuses along the forward-only lifecycle.
func (s IntentStatus) rank() int {
	switch s {
	case IntentStatusCreated:
		return 1
	case IntentStatusOnChainSettled:
		return 2
	case IntentStatusConfirmedReconciled, IntentStatusDispute:
		return 3
	default:
		return 0
	}
}

// AtLeast reports whether s already reflects or supersedes other.
// Used to classify redelivered events as no-op replays.
func (s IntentStatus) AtLeast(other IntentStatus) bool {
	return s.rank() >= other.rank()
}

// SettlementIntent is a single payment instruction moving through its
// lifecycle. InstructionID, amount, currency and the party fields are
// immutable after creation; only Status, SettledAmount and DisputeReason
// change, and intents are never deleted.
type SettlementIntent struct {
	InstructionID          string
	TransactionReference   string
	Payer                  string
	Payee                  string
	Amount                 decimal.Decimal
	Currency               string
	ValueDate              time.Time
	OrderingInstitution    string
	BeneficiaryInstitution string
	Status                 IntentStatus
	SettledAmount          *decimal.Decimal
	DisputeReason          string
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// Validate checks the intent is well formed for creation.
func (i *SettlementIntent) Validate() error {
	if i.InstructionID == "" {
		return ErrEmptyInstructionID
	}

	if err := ValidateReference(i.TransactionReference); err != nil {
		return err
	}

	if err := ValidateCurrency(i.Currency); err != nil {
		return err
	}

	if i.Amount.IsNegative() {
		return ErrInvalidAmount
	}

	return nil
}

// Matches reports whether an observed settled amount reconciles exactly
// against the intent's original amount. No tolerance is applied.
func (i *SettlementIntent) Matches(settled decimal.Decimal) bool {
	return i.Amount.Equal(settled)
}

const instructionIDBytes = 32

// DeriveInstructionID maps an MT202 transaction reference (field :20:) to
// the fixed-length instruction id used by the settlement authority: the
// reference left-justified in a 32-byte buffer, hex encoded. The mapping is
// stable, so resubmitting the same message yields the same id.
func DeriveInstructionID(reference string) string {
	var buf [instructionIDBytes]byte
	copy(buf[:], reference)
	return hex.EncodeToString(buf[:])
}

package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gosettle/internal/domain"
)

// IntentRepository defines data access for settlement intents.
type IntentRepository interface {
	Create(ctx context.Context, tx Transaction, intent *domain.SettlementIntent) error
	GetByInstructionID(ctx context.Context, instructionID string) (*domain.SettlementIntent, error)
	GetByInstructionIDForUpdate(ctx context.Context, tx Transaction, instructionID string) (*domain.SettlementIntent, error)
	UpdateStatus(ctx context.Context, tx Transaction, instructionID string, status domain.IntentStatus, settledAmount *decimal.Decimal, disputeReason string, updatedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]*domain.SettlementIntent, error)
	CountByStatus(ctx context.Context) (map[domain.IntentStatus]int64, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// IntentLedger is the authoritative intent store surface the submitter and
// the reporting adapters depend on.
type IntentLedger interface {
	CreateIntent(ctx context.Context, intent *domain.SettlementIntent) error
	GetIntent(ctx context.Context, instructionID string) (*domain.SettlementIntent, error)
}

// SettlementAuthority dispatches intent creation requests to the external
// system of record. It must apply the same duplicate-id rejection as the
// ledger, so redelivering a creation request is safe.
type SettlementAuthority interface {
	SubmitIntent(ctx context.Context, intent *domain.SettlementIntent) error
}

// EventSource produces the ordered, at-least-once stream of settlement
// confirmation events emitted by the external authority. Next blocks until
// an event is available or ctx is cancelled; it must not hold any ledger
// lock while waiting. Ack marks an event as consumed so it is not
// redelivered after a restart.
type EventSource interface {
	Next(ctx context.Context) (*domain.SettlementEvent, error)
	Ack(ctx context.Context, event *domain.SettlementEvent) error
}

// Retrier retries an operation on transient storage failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

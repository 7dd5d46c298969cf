package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gosettle/internal/domain"
	"github.com/iho/gosettle/internal/usecase"
)

// MockIntentRepository is a mock implementation of IntentRepository.
// The default behavior is an in-memory store whose Create/UpdateStatus are
// atomic under the mutex, matching the real repository's guarantees.
type MockIntentRepository struct {
	mu      sync.RWMutex
	intents map[string]*domain.SettlementIntent
	order   []string

	CreateFunc                      func(ctx context.Context, tx usecase.Transaction, intent *domain.SettlementIntent) error
	GetByInstructionIDFunc          func(ctx context.Context, instructionID string) (*domain.SettlementIntent, error)
	GetByInstructionIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, instructionID string) (*domain.SettlementIntent, error)
	UpdateStatusFunc                func(ctx context.Context, tx usecase.Transaction, instructionID string, status domain.IntentStatus, settledAmount *decimal.Decimal, disputeReason string, updatedAt time.Time) error
	ListFunc                        func(ctx context.Context, limit, offset int) ([]*domain.SettlementIntent, error)
	CountByStatusFunc               func(ctx context.Context) (map[domain.IntentStatus]int64, error)
}

func NewMockIntentRepository() *MockIntentRepository {
	return &MockIntentRepository{
		intents: make(map[string]*domain.SettlementIntent),
	}
}

func (m *MockIntentRepository) Create(ctx context.Context, tx usecase.Transaction, intent *domain.SettlementIntent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, intent)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.intents[intent.InstructionID]; ok {
		return domain.ErrDuplicateInstruction
	}
	clone := *intent
	m.intents[intent.InstructionID] = &clone
	m.order = append(m.order, intent.InstructionID)
	return nil
}

func (m *MockIntentRepository) GetByInstructionID(ctx context.Context, instructionID string) (*domain.SettlementIntent, error) {
	if m.GetByInstructionIDFunc != nil {
		return m.GetByInstructionIDFunc(ctx, instructionID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i, ok := m.intents[instructionID]; ok {
		clone := *i
		return &clone, nil
	}
	return nil, domain.ErrIntentNotFound
}

func (m *MockIntentRepository) GetByInstructionIDForUpdate(ctx context.Context, tx usecase.Transaction, instructionID string) (*domain.SettlementIntent, error) {
	if m.GetByInstructionIDForUpdateFunc != nil {
		return m.GetByInstructionIDForUpdateFunc(ctx, tx, instructionID)
	}
	return m.GetByInstructionID(ctx, instructionID)
}

func (m *MockIntentRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, instructionID string, status domain.IntentStatus, settledAmount *decimal.Decimal, disputeReason string, updatedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, instructionID, status, settledAmount, disputeReason, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.intents[instructionID]
	if !ok {
		return domain.ErrIntentNotFound
	}
	i.Status = status
	i.SettledAmount = settledAmount
	i.DisputeReason = disputeReason
	i.UpdatedAt = updatedAt
	return nil
}

func (m *MockIntentRepository) List(ctx context.Context, limit, offset int) ([]*domain.SettlementIntent, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var intents []*domain.SettlementIntent
	for idx := offset; idx < len(m.order) && len(intents) < limit; idx++ {
		clone := *m.intents[m.order[idx]]
		intents = append(intents, &clone)
	}
	return intents, nil
}

func (m *MockIntentRepository) CountByStatus(ctx context.Context) (map[domain.IntentStatus]int64, error) {
	if m.CountByStatusFunc != nil {
		return m.CountByStatusFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[domain.IntentStatus]int64)
	for _, i := range m.intents {
		counts[i.Status]++
	}
	return counts, nil
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent

	CreateFunc          func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
	GetUnpublishedFunc  func(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublishedFunc   func(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublishedFunc func(ctx context.Context, before time.Time) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if m.GetUnpublishedFunc != nil {
		return m.GetUnpublishedFunc(ctx, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var unpublished []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published && len(unpublished) < limit {
			unpublished = append(unpublished, e)
		}
	}
	return unpublished, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	if m.MarkPublishedFunc != nil {
		return m.MarkPublishedFunc(ctx, id, publishedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
		}
	}
	return nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	if m.DeletePublishedFunc != nil {
		return m.DeletePublishedFunc(ctx, before)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.events[:0]
	for _, e := range m.events {
		if !e.Published || e.PublishedAt == nil || !e.PublishedAt.Before(before) {
			kept = append(kept, e)
		}
	}
	m.events = kept
	return nil
}

// EventsByType returns recorded events of the given type, for assertions.
func (m *MockOutboxRepository) EventsByType(eventType string) []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.OutboxEvent
	for _, e := range m.events {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%d", m.counter)
}

// MockSettlementAuthority is a mock implementation of SettlementAuthority.
type MockSettlementAuthority struct {
	mu        sync.Mutex
	submitted []*domain.SettlementIntent

	SubmitIntentFunc func(ctx context.Context, intent *domain.SettlementIntent) error
}

func NewMockSettlementAuthority() *MockSettlementAuthority {
	return &MockSettlementAuthority{}
}

func (m *MockSettlementAuthority) SubmitIntent(ctx context.Context, intent *domain.SettlementIntent) error {
	if m.SubmitIntentFunc != nil {
		return m.SubmitIntentFunc(ctx, intent)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitted = append(m.submitted, intent)
	return nil
}

// Submitted returns the instruction ids dispatched so far, sorted.
func (m *MockSettlementAuthority) Submitted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.submitted))
	for _, i := range m.submitted {
		ids = append(ids, i.InstructionID)
	}
	sort.Strings(ids)
	return ids
}

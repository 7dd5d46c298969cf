package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeIntentCreated   = "intent.created"
	EventTypeIntentSettled   = "intent.settled"
	EventTypeIntentConfirmed = "intent.confirmed"
	EventTypeIntentDisputed  = "intent.disputed"
)

// Aggregate types
const (
	AggregateTypeIntent = "settlement_intent"
)

// SettlementEvent is a settlement confirmation observed from the external
// authority. Delivery is at-least-once; events for the same instruction id
// arrive in order, unrelated instruction ids may interleave arbitrarily.
type SettlementEvent struct {
	ID            string
	InstructionID string
	SettledAmount decimal.Decimal
	ObservedAt    time.Time
}

// OutboxEvent represents a domain event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// IntentCreatedEvent payload
type IntentCreatedEvent struct {
	InstructionID        string `json:"instruction_id"`
	TransactionReference string `json:"transaction_reference"`
	Amount               string `json:"amount"`
	Currency             string `json:"currency"`
	ValueDate            string `json:"value_date"`
}

// IntentSettledEvent payload
type IntentSettledEvent struct {
	InstructionID string `json:"instruction_id"`
	SettledAmount string `json:"settled_amount"`
}

// IntentConfirmedEvent payload
type IntentConfirmedEvent struct {
	InstructionID string `json:"instruction_id"`
	Amount        string `json:"amount"`
}

// IntentDisputedEvent payload
type IntentDisputedEvent struct {
	InstructionID string `json:"instruction_id"`
	Reason        string `json:"reason"`
}

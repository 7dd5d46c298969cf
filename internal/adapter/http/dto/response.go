package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gosettle/internal/domain"
)

// IntentResponse represents a settlement intent in API responses.
type IntentResponse struct {
	InstructionID          string           `json:"instruction_id"`
	TransactionReference   string           `json:"transaction_reference"`
	Payer                  string           `json:"payer"`
	Payee                  string           `json:"payee"`
	Amount                 decimal.Decimal  `json:"amount"`
	Currency               string           `json:"currency"`
	ValueDate              time.Time        `json:"value_date"`
	OrderingInstitution    string           `json:"ordering_institution,omitempty"`
	BeneficiaryInstitution string           `json:"beneficiary_institution,omitempty"`
	Status                 string           `json:"status"`
	SettledAmount          *decimal.Decimal `json:"settled_amount,omitempty"`
	DisputeReason          string           `json:"dispute_reason,omitempty"`
	CreatedAt              time.Time        `json:"created_at"`
	UpdatedAt              time.Time        `json:"updated_at"`
}

// IntentFromDomain converts a domain intent to a response.
func IntentFromDomain(i *domain.SettlementIntent) *IntentResponse {
	return &IntentResponse{
		InstructionID:          i.InstructionID,
		TransactionReference:   i.TransactionReference,
		Payer:                  i.Payer,
		Payee:                  i.Payee,
		Amount:                 i.Amount,
		Currency:               i.Currency,
		ValueDate:              i.ValueDate,
		OrderingInstitution:    i.OrderingInstitution,
		BeneficiaryInstitution: i.BeneficiaryInstitution,
		Status:                 string(i.Status),
		SettledAmount:          i.SettledAmount,
		DisputeReason:          i.DisputeReason,
		CreatedAt:              i.CreatedAt,
		UpdatedAt:              i.UpdatedAt,
	}
}

// IntentsFromDomain converts domain intents to responses.
func IntentsFromDomain(intents []*domain.SettlementIntent) []*IntentResponse {
	result := make([]*IntentResponse, len(intents))
	for i, intent := range intents {
		result[i] = IntentFromDomain(intent)
	}
	return result
}

// SubmitResponse reports the outcome of an instruction submission.
type SubmitResponse struct {
	Intent           *IntentResponse `json:"intent"`
	AlreadySubmitted bool            `json:"already_submitted"`
}

// StatusCountsResponse reports intent counts per lifecycle status.
type StatusCountsResponse struct {
	Counts map[string]int64 `json:"counts"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

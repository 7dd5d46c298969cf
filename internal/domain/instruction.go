package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Instruction is a structured MT202 general financial institution transfer,
// as produced by the message parser. Fields are assumed validated before the
// instruction reaches the submitter.
type Instruction struct {
	TransactionReference   string
	RelatedReference       string
	Payer                  string
	Payee                  string
	Amount                 decimal.Decimal
	Currency               string
	ValueDate              time.Time
	OrderingInstitution    string
	BeneficiaryInstitution string
	SenderToReceiverInfo   string
}

// Validate validates an instruction before submission.
func (in *Instruction) Validate() error {
	if err := ValidateReference(in.TransactionReference); err != nil {
		return err
	}

	if err := ValidateCurrency(in.Currency); err != nil {
		return err
	}

	if in.Amount.IsNegative() {
		return ErrInvalidAmount
	}

	if in.Payer == "" || in.Payee == "" {
		return ErrEmptyParty
	}

	return nil
}

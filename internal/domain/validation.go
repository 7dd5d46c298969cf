package domain

import (
	"errors"
	"regexp"
	"strings"
)

// Validation errors
var (
	ErrInvalidAmount    = errors.New("amount must not be negative")
	ErrInvalidCurrency  = errors.New("invalid currency code")
	ErrInvalidReference = errors.New("invalid transaction reference")
	ErrEmptyParty       = errors.New("payer and payee must not be empty")
)

// MaxReferenceLength is the SWIFT limit for field :20:.
const MaxReferenceLength = 16

// Valid currency codes (ISO 4217)
var validCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true,
	"CNY": true, "AUD": true, "CAD": true, "CHF": true,
	"SEK": true, "NZD": true, "KRW": true, "SGD": true,
	"NOK": true, "MXN": true, "INR": true, "BRL": true,
	"ZAR": true, "RUB": true, "TRY": true, "HKD": true,
}

// SWIFT X character set, minus the slash rules handled separately.
var referenceRegex = regexp.MustCompile(`^[A-Za-z0-9/\-?:().,'+ ]+$`)

// ValidateReference validates an MT202 field :20: transaction reference.
func ValidateReference(ref string) error {
	if ref == "" || len(ref) > MaxReferenceLength {
		return ErrInvalidReference
	}

	if strings.HasPrefix(ref, "/") || strings.HasSuffix(ref, "/") || strings.Contains(ref, "//") {
		return ErrInvalidReference
	}

	if !referenceRegex.MatchString(ref) {
		return ErrInvalidReference
	}

	return nil
}

// ValidateCurrency validates an ISO 4217 currency code.
func ValidateCurrency(currency string) error {
	if !validCurrencies[strings.ToUpper(currency)] {
		return ErrInvalidCurrency
	}
	return nil
}

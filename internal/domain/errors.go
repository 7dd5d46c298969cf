package domain

import "errors"

var (
	// Intent errors
	ErrDuplicateInstruction = errors.New("instruction id already exists")
	ErrIntentNotFound       = errors.New("intent not found")
	ErrEmptyInstructionID   = errors.New("instruction id must not be empty")

	// Transition errors
	ErrInvalidTransition  = errors.New("transition not permitted from current status")
	ErrOutOfOrderEvent    = errors.New("settlement event out of order for instruction")
	ErrEmptyDisputeReason = errors.New("dispute reason must not be empty")
	ErrUnsettledConfirm   = errors.New("cannot confirm before a settled amount is recorded")
)

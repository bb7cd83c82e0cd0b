package services

import (
	"errors"
	"fmt"
)

var (
	ErrStepIncomplete          = errors.New("current step is incomplete")
	ErrInvalidTransition       = errors.New("action not available in current state")
	ErrUnknownOption           = errors.New("unknown option")
	ErrUnknownBank             = errors.New("unknown bank")
	ErrBankNotSelected         = errors.New("no bank selected")
	ErrPhotosMissing           = errors.New("front and back photos are required")
	ErrUnknownFund             = errors.New("unknown fund")
	ErrBelowMinimum            = errors.New("amount below fund minimum")
	ErrNoFundSelected          = errors.New("no fund selected")
	ErrAcknowledgementsMissing = errors.New("all confirmations must be checked")
	ErrInsufficientBalance     = errors.New("insufficient balance")
	ErrInvalidAmount           = errors.New("amount must be greater than zero")
	ErrUnknownMerchant         = errors.New("unknown merchant")
	ErrSessionNotFound         = errors.New("session not found")
	ErrVerificationFailed      = errors.New("bank verification failed")
)

// ValidationError is a gating failure: the user tried to move on without
// satisfying the current screen's predicate.
type ValidationError struct {
	Flow   string
	Step   string
	Reason error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Flow, e.Step, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Reason
}

func validationError(flow, step string, reason error) error {
	return &ValidationError{Flow: flow, Step: step, Reason: reason}
}

// IsValidationError reports whether err is a gating failure.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

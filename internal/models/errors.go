package models

import (
	"errors"
	"fmt"
)

// ValidationError is a local, per-record failure. Batch operations skip the
// offending record and keep going.
type ValidationError struct {
	Code    string
	Message string
}

// NewValidationError creates a new validation error
func NewValidationError(code, message string) *ValidationError {
	return &ValidationError{Code: code, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Pricing and grading errors
var (
	ErrInvalidPrice     = NewValidationError("invalid_price", "american price magnitude must be at least 100")
	ErrDegenerateMarket = NewValidationError("degenerate_market", "probability sum must be positive")
	ErrInvalidSide      = NewValidationError("invalid_side", "side must be over or under")
	ErrNonFiniteResult  = NewValidationError("non_finite_result", "computation produced a non-finite value")
	ErrInvalidQuote     = NewValidationError("invalid_quote", "market quote failed validation")
	ErrInvalidPick      = NewValidationError("invalid_pick", "pick failed validation")
	ErrInvalidTiePolicy = NewValidationError("invalid_tie_policy", "tie policy must be push, over-wins-ties or under-wins-ties")
	ErrDuplicateResult  = NewValidationError("duplicate_result", "market already has a settled result")
)

// Storage errors
var (
	ErrNotFound     = NewValidationError("not_found", "record not found")
	ErrDuplicateKey = NewValidationError("duplicate_key", "duplicate key violation")
)

// RecordFailure ties a skipped record to the reason it was skipped.
type RecordFailure struct {
	Key string `json:"key"`
	Err error  `json:"-"`
}

// Reason returns the validation code when available.
func (f RecordFailure) Reason() string {
	var target *ValidationError
	if errors.As(f.Err, &target) {
		return target.Code
	}
	return "unknown"
}

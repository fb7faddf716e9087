package core

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Domain errors. Every failure returned by the ledger functions and the
// order service wraps exactly one of these, so callers can branch with errors.Is.
var (
	ErrInvalidQuantity  = errors.New("quantity must be greater than zero")
	ErrInvalidAmount    = errors.New("amount must be greater than zero")
	ErrOverDispatch     = errors.New("dispatch quantity exceeds remaining quantity")
	ErrOrderClosed      = errors.New("order is closed for dispatch")
	ErrOrderPaid        = errors.New("order is already fully paid")
	ErrMissingReference = errors.New("reference number is required for non-cash payments")
	ErrUnauthorized     = errors.New("write requires an authenticated user")
	ErrForbidden        = errors.New("user is not allowed to perform this action")
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
)

// OverDispatchError carries the current remaining quantity so the user can correct the input.
type OverDispatchError struct {
	Requested decimal.Decimal
	Remaining decimal.Decimal
}

func (e *OverDispatchError) Error() string {
	return fmt.Sprintf("%s: requested %s, remaining %s",
		ErrOverDispatch.Error(), e.Requested.String(), e.Remaining.String())
}

func (e *OverDispatchError) Unwrap() error { return ErrOverDispatch }

// invalidInput wraps ErrInvalidInput with a field-specific message.
func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

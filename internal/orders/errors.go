package orders

import "errors"

var (
	ErrNotFound       = errors.New("order not found")
	ErrNotCancellable = errors.New("order cannot be cancelled")
	ErrCartEmpty      = errors.New("cart is empty")

	// ErrValidation is the sentinel every *ValidationError unwraps to.
	ErrValidation = errors.New("invalid order input")
)

type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "invalid order input: " + e.Reason }

func (e *ValidationError) Unwrap() error { return ErrValidation }

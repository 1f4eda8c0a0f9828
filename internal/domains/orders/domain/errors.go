package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument marks input that violates a precondition of the aggregate.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidState marks an operation that is not permitted in the aggregate's current state.
	ErrInvalidState = errors.New("invalid state")
)

var (
	ErrEmptyCustomerName = fmt.Errorf("%w: customer name must not be empty", ErrInvalidArgument)
	ErrNoItems           = fmt.Errorf("%w: order must contain at least one item", ErrInvalidArgument)
	ErrEmptyProduct      = fmt.Errorf("%w: product must not be empty", ErrInvalidArgument)
	ErrInvalidQuantity   = fmt.Errorf("%w: quantity must be greater than zero", ErrInvalidArgument)
	ErrNegativePrice     = fmt.Errorf("%w: unit price must not be negative", ErrInvalidArgument)
	ErrNilItem           = fmt.Errorf("%w: item is nil", ErrInvalidArgument)
	ErrLastItem          = fmt.Errorf("%w: order would have no items", ErrInvalidState)
)

// TransitionError reports a status change outside the lifecycle.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %s to %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidState }

package orders

import "errors"

var (
	// ErrValidationFailed is the base error for request payload problems.
	ErrValidationFailed = errors.New("orders: validation failed")
	// ErrNotFound indicates the order does not exist.
	ErrNotFound = errors.New("orders: order not found")
	// ErrForbidden indicates the actor may not touch this order.
	ErrForbidden = errors.New("orders: forbidden")
	// ErrEmptyItems indicates an order without line items.
	ErrEmptyItems = errors.New("orders: order must contain at least one item")
	// ErrInvalidQuantity indicates a non-positive item quantity.
	ErrInvalidQuantity = errors.New("orders: item quantity must be positive")
	// ErrMissingPriceLine indicates an item without a price line reference.
	ErrMissingPriceLine = errors.New("orders: item must reference a price line")
	// ErrMissingAddress indicates a delivery order without a complete
	// shipping address.
	ErrMissingAddress = errors.New("orders: delivery requires a complete shipping address")
	// ErrInvalidStatus indicates an unknown status value.
	ErrInvalidStatus = errors.New("orders: unknown status")
	// ErrInvalidTransition indicates a status change the workflow forbids.
	ErrInvalidTransition = errors.New("orders: status transition not allowed")
	// ErrAlreadyCancelled indicates a cancellation of a cancelled order; the
	// ledger restore must never be applied twice.
	ErrAlreadyCancelled = errors.New("orders: order is already cancelled")
	// ErrOrderCompleted indicates a client cancellation of a completed order.
	ErrOrderCompleted = errors.New("orders: completed order cannot be cancelled")
	// ErrItemsImmutable indicates an attempt to edit order line items.
	ErrItemsImmutable = errors.New("orders: editing order line items is forbidden")
	// ErrCodeExhausted indicates public code generation gave up after
	// repeated collisions.
	ErrCodeExhausted = errors.New("orders: could not allocate a unique public code")
)

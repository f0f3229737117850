package order

import (
	"errors"
	"fmt"

	"stylemart-be/internal/apperr"
)

var (
	ErrEmptyCart               = fmt.Errorf("cannot checkout an empty cart: %w", apperr.ErrEmptyCart)
	ErrInvalidAddress          = fmt.Errorf("shipping address is missing or not yours: %w", apperr.ErrInvalidAddress)
	ErrInsufficientStock       = fmt.Errorf("not enough stock to fulfil the order: %w", apperr.ErrInsufficientStock)
	ErrOrderItemCreationFailed = fmt.Errorf("order has no items: %w", apperr.ErrOrderItemCreationFailed)

	ErrOrderNotFound     = fmt.Errorf("order not found: %w", apperr.ErrNotFound)
	ErrOrderForbidden    = fmt.Errorf("order belongs to another user: %w", apperr.ErrForbidden)
	ErrIllegalTransition = fmt.Errorf("status transition not allowed: %w", apperr.ErrConflict)
	ErrConcurrentUpdate  = fmt.Errorf("order was modified concurrently: %w", apperr.ErrConflict)

	// repository level signals, handled inside the service
	errOrderNumberTaken    = errors.New("order number already taken")
	errDuplicateIdempotent = errors.New("idempotency key already used")
	errAddressNotFound     = errors.New("address not found")
)

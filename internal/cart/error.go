package cart

import (
	"fmt"

	"stylemart-be/internal/apperr"
)

var (
	ErrCartItemNotFound  = fmt.Errorf("cart item not found: %w", apperr.ErrNotFound)
	ErrCartItemForbidden = fmt.Errorf("cart item belongs to another user: %w", apperr.ErrForbidden)
	ErrInsufficientStock = fmt.Errorf("requested quantity exceeds available stock: %w", apperr.ErrInsufficientStock)
)

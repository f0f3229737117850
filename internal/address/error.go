package address

import (
	"fmt"

	"stylemart-be/internal/apperr"
)

var (
	ErrAddressNotFound  = fmt.Errorf("address not found: %w", apperr.ErrNotFound)
	ErrAddressForbidden = fmt.Errorf("address belongs to another user: %w", apperr.ErrForbidden)
)

package catalog

import (
	"fmt"

	"stylemart-be/internal/apperr"
)

var (
	ErrProductNotFound = fmt.Errorf("product not found: %w", apperr.ErrNotFound)
	ErrProductInactive = fmt.Errorf("product is not available: %w", apperr.ErrInactive)
)

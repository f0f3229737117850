package user

import (
	"errors"
	"fmt"

	"stylemart-be/internal/apperr"
)

var (
	ErrEmailExists        = fmt.Errorf("email already registered: %w", apperr.ErrConflict)
	ErrInvalidCredentials = fmt.Errorf("invalid email or password: %w", apperr.ErrUnauthenticated)
	ErrUserNotFound       = errors.New("user not found")
)

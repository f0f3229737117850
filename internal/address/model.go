package address

import "time"

type Address struct {
	ID     int64 `json:"id"`
	UserID uint  `json:"userId"`

	FullName     string  `json:"fullName"`
	AddressLine1 string  `json:"addressLine1"`
	AddressLine2 *string `json:"addressLine2,omitempty"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	PostalCode   string  `json:"postalCode"`
	PhoneNumber  string  `json:"phoneNumber"`

	IsDefault bool      `json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AddressInput is the caller supplied payload for create, update and validate.
type AddressInput struct {
	FullName     string  `json:"fullName" validate:"required"`
	AddressLine1 string  `json:"addressLine1" validate:"required"`
	AddressLine2 *string `json:"addressLine2,omitempty"`
	City         string  `json:"city" validate:"required"`
	State        string  `json:"state" validate:"required"`
	PostalCode   string  `json:"postalCode" validate:"required,number,len=6"`
	PhoneNumber  string  `json:"phoneNumber" validate:"required,number,len=10"`
	IsDefault    bool    `json:"isDefault"`
}

// defaultStats summarises a user's address set inside the per-user lock.
type defaultStats struct {
	Total    int
	Defaults int
}

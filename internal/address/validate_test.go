package address

import (
	"testing"

	"stylemart-be/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() AddressInput {
	return AddressInput{
		FullName:     "Jane Doe",
		AddressLine1: "12 Market Street",
		City:         "Pune",
		State:        "MH",
		PostalCode:   "411001",
		PhoneNumber:  "9876543210",
	}
}

func TestValidate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, Validate(validInput()))
	})

	t.Run("Short phone number", func(t *testing.T) {
		err := Validate(AddressInput{PhoneNumber: "12345"})

		var vErr *apperr.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.ErrorIs(t, err, apperr.ErrInvalidInput)
		assert.Equal(t, "phone number must be exactly 10 digits", vErr.Fields["phoneNumber"])
		assert.Contains(t, err.Error(), "10 digits")
		assert.Equal(t, "full name is required", vErr.Fields["fullName"])
		assert.Equal(t, "postal code is required", vErr.Fields["postalCode"])
	})

	t.Run("Non digit phone number", func(t *testing.T) {
		in := validInput()
		in.PhoneNumber = "-987654321"

		var vErr *apperr.ValidationError
		require.ErrorAs(t, Validate(in), &vErr)
		assert.Equal(t, map[string]string{"phoneNumber": "phone number must be exactly 10 digits"}, vErr.Fields)
	})

	t.Run("Bad postal code", func(t *testing.T) {
		in := validInput()
		in.PostalCode = "4110"

		var vErr *apperr.ValidationError
		require.ErrorAs(t, Validate(in), &vErr)
		assert.Equal(t, map[string]string{"postalCode": "postal code must be exactly 6 digits"}, vErr.Fields)
	})

	t.Run("Letters in postal code", func(t *testing.T) {
		in := validInput()
		in.PostalCode = "41100A"

		var vErr *apperr.ValidationError
		require.ErrorAs(t, Validate(in), &vErr)
		assert.Equal(t, map[string]string{"postalCode": "postal code must be exactly 6 digits"}, vErr.Fields)
	})

	t.Run("Whitespace only counts as missing", func(t *testing.T) {
		in := validInput()
		in.City = "   "

		var vErr *apperr.ValidationError
		require.ErrorAs(t, Validate(in), &vErr)
		assert.Equal(t, "city is required", vErr.Fields["city"])
	})

	t.Run("Address line 2 is optional", func(t *testing.T) {
		in := validInput()
		blank := "  "
		in.AddressLine2 = &blank
		assert.NoError(t, Validate(in))
		assert.Nil(t, normalize(in).AddressLine2)
	})
}

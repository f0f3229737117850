package address

import (
	"errors"
	"reflect"
	"strings"

	"stylemart-be/internal/apperr"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

var fieldLabels = map[string]string{
	"fullName":     "full name",
	"addressLine1": "address line 1",
	"city":         "city",
	"state":        "state",
	"postalCode":   "postal code",
	"phoneNumber":  "phone number",
}

// Validate checks required fields and formats. It returns an
// *apperr.ValidationError keyed by JSON field name.
func Validate(in AddressInput) error {
	err := validate.Struct(normalize(in))
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = messageFor(fe)
	}
	return apperr.NewValidationError(fields)
}

func messageFor(fe validator.FieldError) string {
	label := fieldLabels[fe.Field()]
	if label == "" {
		label = fe.Field()
	}

	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "number", "len":
		switch fe.Field() {
		case "phoneNumber":
			return "phone number must be exactly 10 digits"
		case "postalCode":
			return "postal code must be exactly 6 digits"
		}
	}
	return label + " is invalid"
}

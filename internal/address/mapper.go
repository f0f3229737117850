package address

import "strings"

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// normalize trims surrounding whitespace from every free text field.
func normalize(in AddressInput) AddressInput {
	in.FullName = strings.TrimSpace(in.FullName)
	in.AddressLine1 = strings.TrimSpace(in.AddressLine1)
	in.AddressLine2 = trimPtr(in.AddressLine2)
	in.City = strings.TrimSpace(in.City)
	in.State = strings.TrimSpace(in.State)
	in.PostalCode = strings.TrimSpace(in.PostalCode)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	return in
}

// apply overwrites every mutable field of a from in. The default flag is
// owned by the service and left untouched.
func (a *Address) apply(in AddressInput) {
	a.FullName = in.FullName
	a.AddressLine1 = in.AddressLine1
	a.AddressLine2 = in.AddressLine2
	a.City = in.City
	a.State = in.State
	a.PostalCode = in.PostalCode
	a.PhoneNumber = in.PhoneNumber
}

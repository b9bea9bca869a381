package checkout

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^[0-9+\-\s()]+$`)
)

// Form is the delivery form posted from the checkout page.
type Form struct {
	FullName string
	Email    string
	Phone    string
	Address  string
	City     string
	Notes    string
}

// ValidationError maps form field names to a message shown next to the
// field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid delivery details: " + strings.Join(parts, "; ")
}

// Normalize trims every field except notes.
func (f Form) Normalize() Form {
	return Form{
		FullName: strings.TrimSpace(f.FullName),
		Email:    strings.TrimSpace(f.Email),
		Phone:    strings.TrimSpace(f.Phone),
		Address:  strings.TrimSpace(f.Address),
		City:     strings.TrimSpace(f.City),
		Notes:    f.Notes,
	}
}

func lengthRule(fields map[string]string, key, label, value string, min, max int) {
	n := utf8.RuneCountInString(value)
	switch {
	case n < min:
		fields[key] = fmt.Sprintf("%s must be at least %d characters", label, min)
	case n > max:
		fields[key] = fmt.Sprintf("%s must be less than %d characters", label, max)
	}
}

// Validate checks the normalized form and returns a *ValidationError
// listing every offending field, or nil.
func (f Form) Validate() error {
	f = f.Normalize()
	fields := make(map[string]string)

	lengthRule(fields, "fullName", "Full name", f.FullName, 2, 100)

	switch {
	case !emailRegex.MatchString(f.Email):
		fields["email"] = "Please enter a valid email address"
	case len(f.Email) > 255:
		fields["email"] = "Email must be less than 255 characters"
	}

	switch n := utf8.RuneCountInString(f.Phone); {
	case n < 10:
		fields["phone"] = "Phone number must be at least 10 digits"
	case n > 20:
		fields["phone"] = "Phone number must be less than 20 characters"
	case !phoneRegex.MatchString(f.Phone):
		fields["phone"] = "Please enter a valid phone number"
	}

	lengthRule(fields, "address", "Address", f.Address, 10, 200)
	lengthRule(fields, "city", "City", f.City, 2, 50)

	if utf8.RuneCountInString(f.Notes) > 1000 {
		fields["notes"] = "Notes must be less than 1000 characters"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

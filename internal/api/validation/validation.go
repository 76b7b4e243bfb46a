package validation

import (
	"net/mail"
	"strings"
)

// FieldError represents a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

const maxNameLength = 255

func validateName(field, value string) []FieldError {
	name := strings.TrimSpace(value)
	if name == "" {
		return []FieldError{{Field: field, Message: field + " is required"}}
	}
	if len(name) > maxNameLength {
		return []FieldError{{Field: field, Message: field + " must be at most 255 characters"}}
	}
	return nil
}

func validateEmail(value string) []FieldError {
	email := strings.TrimSpace(value)
	if email == "" {
		return []FieldError{{Field: "email", Message: "email is required"}}
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return []FieldError{{Field: "email", Message: "email must be a valid address"}}
	}
	return nil
}

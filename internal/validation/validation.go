package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	pinRegex   = regexp.MustCompile(`^\d{4,10}$`)
)

// Error represents a field-level validation error
type Error struct {
	Field   string
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidationError reports whether err is a field-level validation error
func IsValidationError(err error) bool {
	_, ok := err.(Error)
	return ok
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return Error{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return Error{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return Error{Field: "password", Message: "password is required"}
	}
	if len(password) < 8 {
		return Error{Field: "password", Message: "password must be at least 8 characters"}
	}
	return nil
}

// ValidateName checks if a display name is valid
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return Error{Field: "name", Message: "name is required"}
	}
	if len(name) < 2 {
		return Error{Field: "name", Message: "name must be at least 2 characters"}
	}
	if len(name) > 100 {
		return Error{Field: "name", Message: "name must be at most 100 characters"}
	}
	return nil
}

// ValidatePin checks that a PIN is 4-10 digits
func ValidatePin(pin string) error {
	if strings.TrimSpace(pin) == "" {
		return Error{Field: "pin", Message: "PIN is required"}
	}
	if !pinRegex.MatchString(pin) {
		return Error{Field: "pin", Message: "PIN must be 4-10 digits"}
	}
	return nil
}

// ValidateReason checks a point entry reason
func ValidateReason(reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return Error{Field: "reason", Message: "reason is required"}
	}
	if len(reason) > 500 {
		return Error{Field: "reason", Message: "reason must be at most 500 characters"}
	}
	return nil
}

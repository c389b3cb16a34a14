package validation

import (
	"strings"
	"testing"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"valid email", "parent@example.com", false},
		{"valid with plus", "parent+tag@example.co.uk", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"missing domain", "parent@", true},
		{"missing at", "parent.example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePin(t *testing.T) {
	tests := []struct {
		name    string
		pin     string
		wantErr bool
	}{
		{"four digits", "1234", false},
		{"ten digits", "0123456789", false},
		{"empty", "", true},
		{"whitespace", "    ", true},
		{"too short", "123", true},
		{"too long", "12345678901", true},
		{"letters", "12ab", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePin(tt.pin)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePin(%q) error = %v, wantErr %v", tt.pin, err, tt.wantErr)
			}
		})
	}
}

func TestValidateReason(t *testing.T) {
	tests := []struct {
		name    string
		reason  string
		wantErr bool
	}{
		{"valid", "Homework done", false},
		{"empty", "", true},
		{"whitespace only", "  \t ", true},
		{"max length", strings.Repeat("a", 500), false},
		{"too long", strings.Repeat("a", 501), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateReason(tt.reason)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateReason() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidationErrorFields(t *testing.T) {
	err := ValidatePin("")
	vErr, ok := err.(Error)
	if !ok {
		t.Fatalf("expected validation.Error, got %T", err)
	}
	if vErr.Field != "pin" {
		t.Errorf("Field = %q, want pin", vErr.Field)
	}
	if !IsValidationError(err) {
		t.Error("IsValidationError() = false, want true")
	}
}

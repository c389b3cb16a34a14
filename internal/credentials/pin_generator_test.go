package credentials

import (
	"strings"
	"testing"
)

func TestGeneratePin(t *testing.T) {
	for i := 0; i < 100; i++ {
		pin, err := GeneratePin(4)
		if err != nil {
			t.Fatalf("GeneratePin() error = %v", err)
		}

		if len(pin) != 4 {
			t.Errorf("GeneratePin() length = %d, want 4", len(pin))
		}

		for _, c := range pin {
			if c < '0' || c > '9' {
				t.Errorf("GeneratePin() produced non-digit %q in %s", c, pin)
			}
		}
	}
}

func TestGenerateInvitationCode(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 50; i++ {
		code, err := GenerateInvitationCode()
		if err != nil {
			t.Fatalf("GenerateInvitationCode() error = %v", err)
		}

		if len(code) != InvitationCodeLength {
			t.Errorf("code length = %d, want %d", len(code), InvitationCodeLength)
		}

		for _, c := range code {
			if !strings.ContainsRune(InvitationCodeAlphabet, c) {
				t.Errorf("code contains %q outside the alphabet", c)
			}
		}

		if seen[code] {
			t.Errorf("duplicate code generated: %s", code)
		}
		seen[code] = true
	}
}

func TestInvitationCodeAlphabetExcludesAmbiguousChars(t *testing.T) {
	for _, c := range "IO01" {
		if strings.ContainsRune(InvitationCodeAlphabet, c) {
			t.Errorf("alphabet contains ambiguous character %q", c)
		}
	}
	if len(InvitationCodeAlphabet) != 32 {
		t.Errorf("alphabet length = %d, want 32", len(InvitationCodeAlphabet))
	}
}

package security

import (
	"strings"
	"testing"
)

func TestHashPin(t *testing.T) {
	hash, err := HashPin("1234")
	if err != nil {
		t.Fatalf("HashPin() error = %v", err)
	}

	if hash == "" {
		t.Error("HashPin() returned empty string")
	}

	if strings.Contains(hash, "1234") {
		t.Error("HashPin() output contains the plaintext PIN")
	}

	if !strings.HasPrefix(hash, "pbkdf2_sha256$") {
		t.Errorf("HashPin() output has unexpected format: %s", hash)
	}

	// Same PIN must produce different hashes due to fresh salt
	hash2, err := HashPin("1234")
	if err != nil {
		t.Fatalf("HashPin() error = %v", err)
	}
	if hash == hash2 {
		t.Error("HashPin() should produce different hashes due to salt")
	}
}

func TestHashPinRejectsEmptyInput(t *testing.T) {
	tests := []string{"", "   ", "\t"}
	for _, pin := range tests {
		if _, err := HashPin(pin); err == nil {
			t.Errorf("HashPin(%q) expected error, got nil", pin)
		}
	}
}

func TestVerifyPin(t *testing.T) {
	hash, err := HashPin("4821")
	if err != nil {
		t.Fatalf("HashPin() error = %v", err)
	}

	tests := []struct {
		name string
		hash string
		pin  string
		want PinVerification
	}{
		{"correct pin", hash, "4821", PinMatch},
		{"wrong pin", hash, "4822", PinMismatch},
		{"garbage hash", "not-a-hash", "4821", PinMismatch},
		{"truncated hash", "pbkdf2_sha256$100000$abc", "4821", PinMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := VerifyPin(tt.hash, tt.pin)
			if err != nil {
				t.Fatalf("VerifyPin() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("VerifyPin() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVerifyPinEmptyInput(t *testing.T) {
	hash, _ := HashPin("4821")

	if _, err := VerifyPin(hash, ""); err == nil {
		t.Error("VerifyPin() with empty pin expected error")
	}
	if _, err := VerifyPin("", "4821"); err == nil {
		t.Error("VerifyPin() with empty hash expected error")
	}
}

func TestVerifyPinLegacyHashSignalsRehash(t *testing.T) {
	legacyHash, err := hashPinWithIterations("4821", legacyPinIterations)
	if err != nil {
		t.Fatalf("hashPinWithIterations() error = %v", err)
	}

	got, err := VerifyPin(legacyHash, "4821")
	if err != nil {
		t.Fatalf("VerifyPin() error = %v", err)
	}
	if got != PinMatchRehashNeeded {
		t.Errorf("VerifyPin() on legacy hash = %v, want PinMatchRehashNeeded", got)
	}

	// A wrong PIN against a legacy hash is still just a mismatch
	got, err = VerifyPin(legacyHash, "0000")
	if err != nil {
		t.Fatalf("VerifyPin() error = %v", err)
	}
	if got != PinMismatch {
		t.Errorf("VerifyPin() = %v, want PinMismatch", got)
	}
}

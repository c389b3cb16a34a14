package security

import (
	"testing"
	"time"
)

func TestTokenIssuerRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")

	token, err := issuer.Issue(TokenPurposePinGate, 42, 7, "parent", time.Minute)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	claims, err := issuer.Verify(token, TokenPurposePinGate)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}

	if claims.MemberID != 42 {
		t.Errorf("MemberID = %d, want 42", claims.MemberID)
	}
	if claims.FamilyID != 7 {
		t.Errorf("FamilyID = %d, want 7", claims.FamilyID)
	}
	if claims.Role != "parent" {
		t.Errorf("Role = %q, want parent", claims.Role)
	}
}

func TestTokenIssuerRejectsWrongPurpose(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")

	token, err := issuer.Issue(TokenPurposeChildSession, 42, 7, "child", time.Minute)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := issuer.Verify(token, TokenPurposePinGate); err == nil {
		t.Error("Verify() accepted a token with the wrong purpose")
	}
}

func TestTokenIssuerRejectsExpired(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")

	token, err := issuer.Issue(TokenPurposePinGate, 42, 7, "parent", -time.Minute)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := issuer.Verify(token, TokenPurposePinGate); err == nil {
		t.Error("Verify() accepted an expired token")
	}
}

func TestTokenIssuerRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")
	other := NewTokenIssuer("other-secret")

	token, err := issuer.Issue(TokenPurposePinGate, 42, 7, "parent", time.Minute)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := other.Verify(token, TokenPurposePinGate); err == nil {
		t.Error("Verify() accepted a token signed with a different secret")
	}
}

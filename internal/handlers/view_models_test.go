package handlers

import (
	"testing"
	"time"

	"kiddierewards/internal/models"
)

func TestSanitizeReturnURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", "", "/parent/dashboard"},
		{"relative path", "/parent/settings", "/parent/settings"},
		{"path with query", "/parent/dashboard?page=2", "/parent/dashboard?page=2"},
		{"absolute url", "https://evil.example/phish", "/parent/dashboard"},
		{"protocol relative", "//evil.example", "/parent/dashboard"},
		{"no leading slash", "parent/settings", "/parent/dashboard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeReturnURL(tt.raw); got != tt.want {
				t.Errorf("sanitizeReturnURL(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestInvitationStatus(t *testing.T) {
	now := time.Now().UTC()
	redeemed := now.Add(-time.Hour)

	tests := []struct {
		name string
		inv  models.FamilyInvitation
		want string
	}{
		{
			name: "active",
			inv:  models.FamilyInvitation{ExpiresAt: now.Add(24 * time.Hour)},
			want: "Active",
		},
		{
			name: "expired",
			inv:  models.FamilyInvitation{ExpiresAt: now.Add(-time.Minute)},
			want: "Expired",
		},
		{
			name: "redeemed",
			inv:  models.FamilyInvitation{ExpiresAt: now.Add(24 * time.Hour), RedeemedAt: &redeemed},
			want: "Redeemed",
		},
		{
			name: "revoked wins over redeemed",
			inv:  models.FamilyInvitation{ExpiresAt: now.Add(24 * time.Hour), RedeemedAt: &redeemed, IsRevoked: true},
			want: "Revoked",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := invitationStatus(&tt.inv); got != tt.want {
				t.Errorf("invitationStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

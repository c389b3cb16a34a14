package models

import (
	"testing"
	"time"
)

func TestSessionIsExpired(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{
			name:      "future expiration",
			expiresAt: time.Now().Add(1 * time.Hour),
			want:      false,
		},
		{
			name:      "just expired",
			expiresAt: time.Now().Add(-1 * time.Second),
			want:      true,
		},
		{
			name:      "expired yesterday",
			expiresAt: time.Now().Add(-24 * time.Hour),
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Session{ExpiresAt: tt.expiresAt}
			if got := s.IsExpired(); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInvitationIsActive(t *testing.T) {
	now := time.Now().UTC()
	redeemed := now.Add(-1 * time.Hour)

	tests := []struct {
		name       string
		invitation FamilyInvitation
		want       bool
	}{
		{
			name: "fresh invitation",
			invitation: FamilyInvitation{
				ExpiresAt: now.Add(7 * 24 * time.Hour),
			},
			want: true,
		},
		{
			name: "revoked",
			invitation: FamilyInvitation{
				ExpiresAt: now.Add(7 * 24 * time.Hour),
				IsRevoked: true,
			},
			want: false,
		},
		{
			name: "already redeemed",
			invitation: FamilyInvitation{
				ExpiresAt:  now.Add(7 * 24 * time.Hour),
				RedeemedAt: &redeemed,
			},
			want: false,
		},
		{
			name: "expired",
			invitation: FamilyInvitation{
				ExpiresAt: now.Add(-1 * time.Minute),
			},
			want: false,
		},
		{
			name: "revoked and expired",
			invitation: FamilyInvitation{
				ExpiresAt: now.Add(-1 * time.Minute),
				IsRevoked: true,
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.invitation.IsActive(); got != tt.want {
				t.Errorf("IsActive() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPointEntryTypeSigns(t *testing.T) {
	tests := []struct {
		entryType    PointEntryType
		wantPositive bool
		wantNegative bool
	}{
		{EntryGoodPoint, true, false},
		{EntryBonus, true, false},
		{EntryBadPoint, false, true},
		{EntryReward, false, true},
		{EntryReset, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.entryType), func(t *testing.T) {
			if got := tt.entryType.IsPositive(); got != tt.wantPositive {
				t.Errorf("IsPositive() = %v, want %v", got, tt.wantPositive)
			}
			if got := tt.entryType.IsNegative(); got != tt.wantNegative {
				t.Errorf("IsNegative() = %v, want %v", got, tt.wantNegative)
			}
		})
	}
}

func TestPointEntryTypeValid(t *testing.T) {
	for _, valid := range []PointEntryType{EntryGoodPoint, EntryBadPoint, EntryReward, EntryBonus, EntryReset} {
		if !valid.Valid() {
			t.Errorf("Valid() = false for %s", valid)
		}
	}
	if PointEntryType("gold_star").Valid() {
		t.Error("Valid() = true for unknown type")
	}
}

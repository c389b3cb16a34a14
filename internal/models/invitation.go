package models

import "time"

// FamilyInvitation is a time-boxed, single-use join code for a family.
// It stays valid until revoked, redeemed or past its expiry.
type FamilyInvitation struct {
	ID                 int64
	FamilyID           int64
	Code               string
	CreatedAt          time.Time
	ExpiresAt          time.Time
	IsRevoked          bool
	CreatedByMemberID  int64
	RedeemedByMemberID *int64
	RedeemedAt         *time.Time
}

// IsExpired reports whether the invitation is past its expiry
func (i *FamilyInvitation) IsExpired() bool {
	return time.Now().UTC().After(i.ExpiresAt)
}

// IsUsed reports whether the invitation has been redeemed
func (i *FamilyInvitation) IsUsed() bool {
	return i.RedeemedAt != nil
}

// IsActive reports whether the invitation can still be redeemed:
// not revoked, not used, not expired.
func (i *FamilyInvitation) IsActive() bool {
	return !i.IsRevoked && !i.IsUsed() && !i.IsExpired()
}

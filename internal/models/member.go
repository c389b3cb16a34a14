package models

import "time"

// MemberRole distinguishes parents from children within a family
type MemberRole string

const (
	RoleParent MemberRole = "parent"
	RoleChild  MemberRole = "child"
)

// Member is a person within a family. Parents are linked to a user account;
// children sign in with a PIN only. A member referenced by point entries is
// never hard-deleted, only deactivated.
type Member struct {
	ID          int64
	FamilyID    int64
	UserID      *int64 // set for parents, nil for children
	DisplayName string
	AvatarKey   string
	PinHash     string
	Role        MemberRole
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MemberContext is the per-request identity derived once at the middleware
// boundary and passed into service calls.
type MemberContext struct {
	MemberID    int64
	FamilyID    int64
	Role        MemberRole
	DisplayName string
}

// IsParent reports whether the context belongs to a parent member
func (c *MemberContext) IsParent() bool {
	return c.Role == RoleParent
}

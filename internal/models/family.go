package models

import "time"

// Family is the tenant boundary: every member and point entry belongs to
// exactly one family.
type Family struct {
	ID        int64
	Name      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

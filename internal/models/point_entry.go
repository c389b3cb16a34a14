package models

import "time"

// PointEntryType classifies a ledger row. The sign of Points is fixed by the
// type: good points and bonuses are positive, bad points and rewards
// (points spent) are negative. Reset entries carry whatever value cancels the
// child's net at creation time.
type PointEntryType string

const (
	EntryGoodPoint PointEntryType = "good_point"
	EntryBadPoint  PointEntryType = "bad_point"
	EntryReward    PointEntryType = "reward"
	EntryBonus     PointEntryType = "bonus"
	EntryReset     PointEntryType = "reset"
)

// IsPositive reports whether the type requires a positive point value
func (t PointEntryType) IsPositive() bool {
	return t == EntryGoodPoint || t == EntryBonus
}

// IsNegative reports whether the type requires a negative point value
func (t PointEntryType) IsNegative() bool {
	return t == EntryBadPoint || t == EntryReward
}

// Valid reports whether t is a known entry type
func (t PointEntryType) Valid() bool {
	switch t {
	case EntryGoodPoint, EntryBadPoint, EntryReward, EntryBonus, EntryReset:
		return true
	}
	return false
}

// PointEntry is an append-only ledger row. Entries are never deleted;
// corrections deactivate a row and resets add a compensating row.
type PointEntry struct {
	ID                int64
	FamilyID          int64
	ChildMemberID     int64
	CreatedByMemberID int64
	Points            int
	Type              PointEntryType
	Reason            string
	IsActive          bool
	CreatedAt         time.Time
}

// IsReset reports whether this entry is a compensating reset row
func (e *PointEntry) IsReset() bool {
	return e.Type == EntryReset
}

// PointsTotals holds a child's running balance over active entries.
// Plus is the sum of positive entries, Minus the absolute sum of negative
// entries, Net = Plus - Minus.
type PointsTotals struct {
	Plus  int
	Minus int
	Net   int
}

// HistoryEntry is a ledger row joined with display names for rendering
type HistoryEntry struct {
	PointEntry
	ChildName   string
	CreatorName string
}

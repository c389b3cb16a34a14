package repository

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"kiddierewards/internal/database"
	"kiddierewards/internal/models"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

// seedFamily creates a family with one parent and one child and returns
// their member IDs.
func seedFamily(t *testing.T, db *database.DB, name string) (familyID, parentID, childID int64) {
	t.Helper()

	users := NewUserRepository(db)
	families := NewFamilyRepository(db)
	members := NewMemberRepository(db)

	user, err := users.CreateUser(name+"@example.com", "hash", "Parent")
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	family, parent, err := families.CreateFamilyWithParent(name, user.ID, "Parent", "parent-pin-"+name)
	if err != nil {
		t.Fatalf("failed to create family: %v", err)
	}

	child := &models.Member{
		FamilyID:    family.ID,
		DisplayName: "Kid",
		AvatarKey:   "fox",
		PinHash:     "child-pin-" + name,
		Role:        models.RoleChild,
	}
	if err := members.CreateMember(child); err != nil {
		t.Fatalf("failed to create child: %v", err)
	}

	return family.ID, parent.ID, child.ID
}

func insertEntry(t *testing.T, repo *PointEntryRepository, familyID, childID, creatorID int64, points int, entryType models.PointEntryType, reason string) *models.PointEntry {
	t.Helper()

	entry := &models.PointEntry{
		FamilyID:          familyID,
		ChildMemberID:     childID,
		CreatedByMemberID: creatorID,
		Points:            points,
		Type:              entryType,
		Reason:            reason,
		IsActive:          true,
		CreatedAt:         time.Now().UTC(),
	}
	if err := repo.InsertEntries([]*models.PointEntry{entry}); err != nil {
		t.Fatalf("failed to insert entry: %v", err)
	}
	return entry
}

func TestLedgerTotalsAndReset(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	db := newTestDB(t)
	familyID, parentID, childID := seedFamily(t, db, "ledger")
	entries := NewPointEntryRepository(db)

	insertEntry(t, entries, familyID, childID, parentID, 5, models.EntryGoodPoint, "Homework")
	insertEntry(t, entries, familyID, childID, parentID, -2, models.EntryBadPoint, "Shouting")
	insertEntry(t, entries, familyID, childID, parentID, 3, models.EntryGoodPoint, "Cleaning")

	totals, err := entries.TotalsForChild(childID)
	if err != nil {
		t.Fatalf("TotalsForChild() error = %v", err)
	}
	if totals.Plus != 8 || totals.Minus != 2 || totals.Net != 6 {
		t.Errorf("totals = %+v, want {Plus:8 Minus:2 Net:6}", totals)
	}

	reset := insertEntry(t, entries, familyID, childID, parentID, 0, models.EntryReset, "Fresh start")
	if reset.Points != -6 {
		t.Errorf("reset points = %d, want -6", reset.Points)
	}

	totals, err = entries.TotalsForChild(childID)
	if err != nil {
		t.Fatalf("TotalsForChild() after reset error = %v", err)
	}
	if totals.Net != 0 {
		t.Errorf("net after reset = %d, want 0", totals.Net)
	}

	// Prior rows are untouched by a reset
	history, err := entries.HistoryForChild(familyID, childID, true)
	if err != nil {
		t.Fatalf("HistoryForChild() error = %v", err)
	}
	if len(history) != 4 {
		t.Errorf("history length = %d, want 4", len(history))
	}
	for _, h := range history {
		if !h.IsActive {
			t.Errorf("entry %d deactivated by reset", h.ID)
		}
	}
}

func TestHistoryHidesDeactivatedEntries(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	db := newTestDB(t)
	familyID, parentID, childID := seedFamily(t, db, "inactive")
	entries := NewPointEntryRepository(db)

	insertEntry(t, entries, familyID, childID, parentID, 5, models.EntryGoodPoint, "Homework")
	corrected := insertEntry(t, entries, familyID, childID, parentID, -2, models.EntryBadPoint, "Mistake")

	corrected.IsActive = false
	if err := entries.UpdateEntry(corrected); err != nil {
		t.Fatalf("UpdateEntry() error = %v", err)
	}

	history, err := entries.HistoryForChild(familyID, childID, false)
	if err != nil {
		t.Fatalf("HistoryForChild() error = %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history length = %d, want 1", len(history))
	}
	if history[0].Reason != "Homework" {
		t.Errorf("history[0].Reason = %q, want %q", history[0].Reason, "Homework")
	}

	history, err = entries.HistoryForChild(familyID, childID, true)
	if err != nil {
		t.Fatalf("HistoryForChild(includeInactive) error = %v", err)
	}
	if len(history) != 2 {
		t.Errorf("history length with inactive = %d, want 2", len(history))
	}
}

func TestEntryFilterMatchesWildcardsLiterally(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	db := newTestDB(t)
	familyID, parentID, childID := seedFamily(t, db, "filter")
	entries := NewPointEntryRepository(db)

	insertEntry(t, entries, familyID, childID, parentID, 5, models.EntryGoodPoint, "scored 100% on test")
	insertEntry(t, entries, familyID, childID, parentID, 3, models.EntryGoodPoint, "scored 100 points")
	insertEntry(t, entries, familyID, childID, parentID, 2, models.EntryGoodPoint, "math_quiz")
	insertEntry(t, entries, familyID, childID, parentID, 2, models.EntryGoodPoint, "mathsquiz")

	got, err := entries.ActiveEntriesForFamily(familyID, "100%")
	if err != nil {
		t.Fatalf("ActiveEntriesForFamily() error = %v", err)
	}
	if len(got) != 1 || got[0].Reason != "scored 100% on test" {
		t.Errorf("filter %q matched %d entries, want only the literal match", "100%", len(got))
	}

	got, err = entries.ActiveEntriesForFamily(familyID, "math_")
	if err != nil {
		t.Fatalf("ActiveEntriesForFamily() error = %v", err)
	}
	if len(got) != 1 || got[0].Reason != "math_quiz" {
		t.Errorf("filter %q matched %d entries, want only the literal match", "math_", len(got))
	}
}

func TestUpdateEntryRecomputesReset(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	db := newTestDB(t)
	familyID, parentID, childID := seedFamily(t, db, "update")
	entries := NewPointEntryRepository(db)

	edited := insertEntry(t, entries, familyID, childID, parentID, 5, models.EntryGoodPoint, "Homework")
	insertEntry(t, entries, familyID, childID, parentID, 3, models.EntryGoodPoint, "Cleaning")
	reset := insertEntry(t, entries, familyID, childID, parentID, 0, models.EntryReset, "Reset")
	if reset.Points != -8 {
		t.Fatalf("reset points = %d, want -8", reset.Points)
	}

	// Editing a normal row does not touch the existing reset row
	edited.Points = 10
	if err := entries.UpdateEntry(edited); err != nil {
		t.Fatalf("UpdateEntry() error = %v", err)
	}

	// Re-saving the reset row recomputes its value against the other
	// active rows, excluding itself
	if err := entries.UpdateEntry(reset); err != nil {
		t.Fatalf("UpdateEntry() reset error = %v", err)
	}
	if reset.Points != -13 {
		t.Errorf("recomputed reset points = %d, want -13", reset.Points)
	}

	totals, err := entries.TotalsForChild(childID)
	if err != nil {
		t.Fatalf("TotalsForChild() error = %v", err)
	}
	if totals.Net != 0 {
		t.Errorf("net = %d, want 0", totals.Net)
	}
}

func TestEntryFamilyScoping(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	db := newTestDB(t)
	familyID, parentID, childID := seedFamily(t, db, "scope-a")
	otherFamilyID, _, _ := seedFamily(t, db, "scope-b")
	entries := NewPointEntryRepository(db)

	entry := insertEntry(t, entries, familyID, childID, parentID, 5, models.EntryGoodPoint, "Homework")

	got, err := entries.GetEntryForFamily(otherFamilyID, entry.ID)
	if err != nil {
		t.Fatalf("GetEntryForFamily() error = %v", err)
	}
	if got != nil {
		t.Error("entry visible to a different family")
	}

	got, err = entries.GetEntryForFamily(familyID, entry.ID)
	if err != nil {
		t.Fatalf("GetEntryForFamily() error = %v", err)
	}
	if got == nil {
		t.Fatal("entry not visible to its own family")
	}
	if got.Points != 5 || got.Reason != "Homework" {
		t.Errorf("entry = %+v, want points 5 reason Homework", got)
	}
}

func TestHistoryPagination(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	db := newTestDB(t)
	familyID, parentID, childID := seedFamily(t, db, "paging")
	entries := NewPointEntryRepository(db)

	for i := 1; i <= 12; i++ {
		insertEntry(t, entries, familyID, childID, parentID, i, models.EntryGoodPoint, fmt.Sprintf("Task %d", i))
	}

	count, err := entries.CountHistory(familyID, 0)
	if err != nil {
		t.Fatalf("CountHistory() error = %v", err)
	}
	if count != 12 {
		t.Errorf("count = %d, want 12", count)
	}

	page, err := entries.HistoryPage(familyID, 0, 10, 0)
	if err != nil {
		t.Fatalf("HistoryPage() error = %v", err)
	}
	if len(page) != 10 {
		t.Fatalf("page length = %d, want 10", len(page))
	}
	if page[0].Reason != "Task 12" {
		t.Errorf("first entry = %s, want Task 12 (newest first)", page[0].Reason)
	}

	page, err = entries.HistoryPage(familyID, 0, 10, 10)
	if err != nil {
		t.Fatalf("HistoryPage() error = %v", err)
	}
	if len(page) != 2 {
		t.Errorf("second page length = %d, want 2", len(page))
	}
}

func TestMemberPinUniquePerFamily(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	db := newTestDB(t)
	familyID, _, _ := seedFamily(t, db, "pins-a")
	otherFamilyID, _, _ := seedFamily(t, db, "pins-b")
	members := NewMemberRepository(db)

	first := &models.Member{
		FamilyID:    familyID,
		DisplayName: "First",
		PinHash:     "shared-hash",
		Role:        models.RoleChild,
	}
	if err := members.CreateMember(first); err != nil {
		t.Fatalf("CreateMember() error = %v", err)
	}

	duplicate := &models.Member{
		FamilyID:    familyID,
		DisplayName: "Second",
		PinHash:     "shared-hash",
		Role:        models.RoleChild,
	}
	if err := members.CreateMember(duplicate); err != ErrPinTaken {
		t.Errorf("CreateMember() with duplicate pin error = %v, want ErrPinTaken", err)
	}

	// The same hash is fine in a different family
	elsewhere := &models.Member{
		FamilyID:    otherFamilyID,
		DisplayName: "Third",
		PinHash:     "shared-hash",
		Role:        models.RoleChild,
	}
	if err := members.CreateMember(elsewhere); err != nil {
		t.Errorf("CreateMember() in other family error = %v", err)
	}
}

func TestInvitationSingleUse(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	db := newTestDB(t)
	familyID, parentID, _ := seedFamily(t, db, "invites")
	invitations := NewInvitationRepository(db)

	inv := &models.FamilyInvitation{
		FamilyID:          familyID,
		Code:              "ABCDEFGHJK",
		ExpiresAt:         time.Now().UTC().Add(7 * 24 * time.Hour),
		CreatedByMemberID: parentID,
	}
	if err := invitations.CreateInvitation(inv); err != nil {
		t.Fatalf("CreateInvitation() error = %v", err)
	}

	claimed, err := invitations.MarkRedeemed(inv.ID, parentID, time.Now().UTC())
	if err != nil {
		t.Fatalf("MarkRedeemed() error = %v", err)
	}
	if !claimed {
		t.Fatal("first redemption was not claimed")
	}

	claimed, err = invitations.MarkRedeemed(inv.ID, parentID, time.Now().UTC())
	if err != nil {
		t.Fatalf("MarkRedeemed() second error = %v", err)
	}
	if claimed {
		t.Error("invitation redeemed twice")
	}
}

func TestInvitationRevokedCannotBeRedeemed(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	db := newTestDB(t)
	familyID, parentID, _ := seedFamily(t, db, "revoked")
	invitations := NewInvitationRepository(db)

	inv := &models.FamilyInvitation{
		FamilyID:          familyID,
		Code:              "MNPQRSTUVW",
		ExpiresAt:         time.Now().UTC().Add(7 * 24 * time.Hour),
		CreatedByMemberID: parentID,
	}
	if err := invitations.CreateInvitation(inv); err != nil {
		t.Fatalf("CreateInvitation() error = %v", err)
	}

	revoked, err := invitations.RevokeInvitation(familyID, inv.ID)
	if err != nil {
		t.Fatalf("RevokeInvitation() error = %v", err)
	}
	if !revoked {
		t.Fatal("invitation was not revoked")
	}

	claimed, err := invitations.MarkRedeemed(inv.ID, parentID, time.Now().UTC())
	if err != nil {
		t.Fatalf("MarkRedeemed() error = %v", err)
	}
	if claimed {
		t.Error("revoked invitation was redeemed")
	}
}

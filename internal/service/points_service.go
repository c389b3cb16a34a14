package service

import (
	"fmt"
	"strings"
	"time"

	"kiddierewards/internal/models"
	"kiddierewards/internal/repository"
	"kiddierewards/internal/validation"
)

// PointsService handles ledger business logic: awarding, deducting,
// correcting and resetting points.
type PointsService struct {
	entryRepo  *repository.PointEntryRepository
	memberRepo *repository.MemberRepository
}

// NewPointsService creates a new points service
func NewPointsService(entryRepo *repository.PointEntryRepository, memberRepo *repository.MemberRepository) *PointsService {
	return &PointsService{
		entryRepo:  entryRepo,
		memberRepo: memberRepo,
	}
}

// normalizePoints fixes the sign of a point value by entry type: good points
// and bonuses are stored positive, bad points and rewards negative, whatever
// sign the caller typed. Zero is rejected for all signed types. Reset values
// are computed at insert time and pass through as zero.
func normalizePoints(entryType models.PointEntryType, points int) (int, error) {
	if entryType == models.EntryReset {
		return 0, nil
	}
	if !entryType.Valid() {
		return 0, validation.Error{Field: "type", Message: "unknown entry type"}
	}
	if points == 0 {
		return 0, validation.Error{Field: "points", Message: "points must not be zero"}
	}

	magnitude := points
	if magnitude < 0 {
		magnitude = -magnitude
	}

	if entryType.IsNegative() {
		return -magnitude, nil
	}
	return magnitude, nil
}

// dedupeIDs removes duplicate IDs while preserving order
func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// AddEntries creates one ledger row per child in a single transaction.
// The whole batch is rejected if any child is unknown, inactive or outside
// the actor's family; no partial commit.
func (s *PointsService) AddEntries(actor *models.MemberContext, childIDs []int64, entryType models.PointEntryType, points int, reason string) ([]*models.PointEntry, error) {
	reason = strings.TrimSpace(reason)
	if err := validation.ValidateReason(reason); err != nil {
		return nil, err
	}
	if entryType == models.EntryReset {
		return nil, validation.Error{Field: "type", Message: "resets are applied per child, not added as entries"}
	}

	value, err := normalizePoints(entryType, points)
	if err != nil {
		return nil, err
	}

	childIDs = dedupeIDs(childIDs)
	if len(childIDs) == 0 {
		return nil, validation.Error{Field: "children", Message: "select at least one child"}
	}

	active, err := s.memberRepo.ActiveChildIDs(actor.FamilyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load children: %w", err)
	}
	for _, id := range childIDs {
		if !active[id] {
			return nil, validation.Error{Field: "children", Message: "unknown or inactive child selected"}
		}
	}

	now := time.Now().UTC()
	entries := make([]*models.PointEntry, 0, len(childIDs))
	for _, childID := range childIDs {
		entries = append(entries, &models.PointEntry{
			FamilyID:          actor.FamilyID,
			ChildMemberID:     childID,
			CreatedByMemberID: actor.MemberID,
			Points:            value,
			Type:              entryType,
			Reason:            reason,
			IsActive:          true,
			CreatedAt:         now,
		})
	}

	if err := s.entryRepo.InsertEntries(entries); err != nil {
		return nil, err
	}

	return entries, nil
}

// UpdateEntry rewrites an existing ledger row. Returns nil when the entry
// does not exist in the actor's family. The value is re-normalized exactly
// as on creation; an entry retyped to reset gets a freshly computed
// compensating value that excludes the entry itself.
func (s *PointsService) UpdateEntry(actor *models.MemberContext, entryID int64, entryType models.PointEntryType, points int, reason string, isActive bool) (*models.PointEntry, error) {
	entry, err := s.entryRepo.GetEntryForFamily(actor.FamilyID, entryID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, nil
	}

	reason = strings.TrimSpace(reason)
	if err := validation.ValidateReason(reason); err != nil {
		return nil, err
	}

	value, err := normalizePoints(entryType, points)
	if err != nil {
		return nil, err
	}

	entry.Type = entryType
	entry.Points = value
	entry.Reason = reason
	entry.IsActive = isActive

	if err := s.entryRepo.UpdateEntry(entry); err != nil {
		return nil, err
	}

	return entry, nil
}

// GetEntry fetches a ledger row scoped to the actor's family. Returns nil
// when the entry does not exist in that family.
func (s *PointsService) GetEntry(actor *models.MemberContext, entryID int64) (*models.PointEntry, error) {
	return s.entryRepo.GetEntryForFamily(actor.FamilyID, entryID)
}

// GetTotals computes a child's balance over active entries
func (s *PointsService) GetTotals(actor *models.MemberContext, childID int64) (*models.PointsTotals, error) {
	if err := s.requireChild(actor, childID); err != nil {
		return nil, err
	}
	return s.entryRepo.TotalsForChild(childID)
}

// GetHistory returns a child's ledger, newest first. Deactivated rows are
// hidden unless includeInactive is set.
func (s *PointsService) GetHistory(actor *models.MemberContext, childID int64, includeInactive bool) ([]models.HistoryEntry, error) {
	if err := s.requireChild(actor, childID); err != nil {
		return nil, err
	}
	return s.entryRepo.HistoryForChild(actor.FamilyID, childID, includeInactive)
}

// ApplyReset brings a child's net to zero by adding one compensating entry
// on top of the untouched history. Returns nil when the child has no active
// entries to reset. The compensating value is computed in the same
// transaction as the insert, so concurrent awards cannot skew it.
func (s *PointsService) ApplyReset(actor *models.MemberContext, childID int64, reason string) (*models.PointEntry, error) {
	if err := s.requireChild(actor, childID); err != nil {
		return nil, err
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "Points reset"
	}
	if err := validation.ValidateReason(reason); err != nil {
		return nil, err
	}

	hasEntries, err := s.entryRepo.HasActiveEntries(childID)
	if err != nil {
		return nil, err
	}
	if !hasEntries {
		return nil, nil
	}

	entry := &models.PointEntry{
		FamilyID:          actor.FamilyID,
		ChildMemberID:     childID,
		CreatedByMemberID: actor.MemberID,
		Type:              models.EntryReset,
		Reason:            reason,
		IsActive:          true,
		CreatedAt:         time.Now().UTC(),
	}
	if err := s.entryRepo.InsertEntries([]*models.PointEntry{entry}); err != nil {
		return nil, err
	}

	return entry, nil
}

// requireChild verifies the child exists in the actor's family
func (s *PointsService) requireChild(actor *models.MemberContext, childID int64) error {
	member, err := s.memberRepo.GetMemberForFamily(actor.FamilyID, childID)
	if err != nil {
		return err
	}
	if member == nil || member.Role != models.RoleChild {
		return ErrChildNotFound
	}
	return nil
}

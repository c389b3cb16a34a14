package repository

import (
	"database/sql"
	"fmt"
	"time"

	"kiddierewards/internal/database"
	"kiddierewards/internal/models"
)

// MemberRepository handles database operations for family members
type MemberRepository struct {
	db *database.DB
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db *database.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

const memberColumns = "id, family_id, user_id, display_name, avatar_key, pin_hash, role, is_active, created_at, updated_at"

type memberScanner interface {
	Scan(dest ...interface{}) error
}

func scanMember(row memberScanner) (*models.Member, error) {
	member := &models.Member{}
	var userID sql.NullInt64
	err := row.Scan(
		&member.ID,
		&member.FamilyID,
		&userID,
		&member.DisplayName,
		&member.AvatarKey,
		&member.PinHash,
		&member.Role,
		&member.IsActive,
		&member.CreatedAt,
		&member.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		member.UserID = &userID.Int64
	}
	return member, nil
}

// CreateMember inserts a new member and fills in its ID. Returns ErrPinTaken
// when the PIN hash collides with another member of the same family.
func (r *MemberRepository) CreateMember(member *models.Member) error {
	query := `
		INSERT INTO members (family_id, user_id, display_name, avatar_key, pin_hash, role)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	var userID interface{}
	if member.UserID != nil {
		userID = *member.UserID
	}

	id, err := r.db.ExecReturningID(query,
		member.FamilyID, userID, member.DisplayName, member.AvatarKey, member.PinHash, member.Role)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrPinTaken
		}
		return fmt.Errorf("failed to create member: %w", err)
	}

	member.ID = id
	member.IsActive = true
	member.CreatedAt = time.Now()
	member.UpdatedAt = time.Now()
	return nil
}

// GetMemberByID retrieves a member by ID. Returns nil if not found.
func (r *MemberRepository) GetMemberByID(id int64) (*models.Member, error) {
	query := "SELECT " + memberColumns + " FROM members WHERE id = ?"
	member, err := scanMember(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return member, nil
}

// GetMemberForFamily retrieves a member scoped to a family. Returns nil when
// the member does not exist or belongs to a different family.
func (r *MemberRepository) GetMemberForFamily(familyID, memberID int64) (*models.Member, error) {
	query := "SELECT " + memberColumns + " FROM members WHERE id = ? AND family_id = ?"
	member, err := scanMember(r.db.QueryRow(query, memberID, familyID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return member, nil
}

// GetMemberByUserID retrieves the member record linked to a parent account.
// Returns nil when the account has not joined a family yet.
func (r *MemberRepository) GetMemberByUserID(userID int64) (*models.Member, error) {
	query := "SELECT " + memberColumns + " FROM members WHERE user_id = ?"
	member, err := scanMember(r.db.QueryRow(query, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member by user: %w", err)
	}
	return member, nil
}

// ListMembers retrieves all members of a family, parents first
func (r *MemberRepository) ListMembers(familyID int64) ([]models.Member, error) {
	query := "SELECT " + memberColumns + ` FROM members
		WHERE family_id = ?
		ORDER BY role DESC, created_at ASC`
	return r.queryMembers(query, familyID)
}

// ListChildren retrieves all child members of a family
func (r *MemberRepository) ListChildren(familyID int64) ([]models.Member, error) {
	query := "SELECT " + memberColumns + ` FROM members
		WHERE family_id = ? AND role = ?
		ORDER BY created_at ASC`
	return r.queryMembers(query, familyID, models.RoleChild)
}

// ActiveChildIDs returns the set of active child member IDs in a family
func (r *MemberRepository) ActiveChildIDs(familyID int64) (map[int64]bool, error) {
	query := "SELECT id FROM members WHERE family_id = ? AND role = ? AND is_active = ?"
	rows, err := r.db.Query(query, familyID, models.RoleChild, true)
	if err != nil {
		return nil, fmt.Errorf("failed to query child ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan child id: %w", err)
		}
		ids[id] = true
	}

	return ids, rows.Err()
}

// UpdateMember updates a member's display name and avatar, scoped to a family
func (r *MemberRepository) UpdateMember(familyID, memberID int64, displayName, avatarKey string) error {
	query := `
		UPDATE members
		SET display_name = ?, avatar_key = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND family_id = ?
	`
	_, err := r.db.Exec(query, displayName, avatarKey, memberID, familyID)
	if err != nil {
		return fmt.Errorf("failed to update member: %w", err)
	}
	return nil
}

// SetMemberActive activates or deactivates a member, scoped to a family
func (r *MemberRepository) SetMemberActive(familyID, memberID int64, active bool) error {
	query := `
		UPDATE members
		SET is_active = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND family_id = ?
	`
	_, err := r.db.Exec(query, active, memberID, familyID)
	if err != nil {
		return fmt.Errorf("failed to set member active: %w", err)
	}
	return nil
}

// UpdatePinHash replaces a member's PIN hash. Returns ErrPinTaken on a
// collision within the family.
func (r *MemberRepository) UpdatePinHash(memberID int64, pinHash string) error {
	query := `
		UPDATE members
		SET pin_hash = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	_, err := r.db.Exec(query, pinHash, memberID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrPinTaken
		}
		return fmt.Errorf("failed to update pin hash: %w", err)
	}
	return nil
}

func (r *MemberRepository) queryMembers(query string, args ...interface{}) ([]models.Member, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, *member)
	}

	return members, rows.Err()
}

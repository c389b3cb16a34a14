package repository

import (
	"database/sql"
	"fmt"
	"time"

	"kiddierewards/internal/database"
	"kiddierewards/internal/models"
)

// InvitationRepository handles database operations for family invitations
type InvitationRepository struct {
	db *database.DB
}

// NewInvitationRepository creates a new invitation repository
func NewInvitationRepository(db *database.DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

const invitationColumns = "id, family_id, code, created_at, expires_at, is_revoked, created_by_member_id, redeemed_by_member_id, redeemed_at"

type invitationScanner interface {
	Scan(dest ...interface{}) error
}

func scanInvitation(row invitationScanner) (*models.FamilyInvitation, error) {
	inv := &models.FamilyInvitation{}
	var redeemedBy sql.NullInt64
	var redeemedAt sql.NullTime
	err := row.Scan(
		&inv.ID,
		&inv.FamilyID,
		&inv.Code,
		&inv.CreatedAt,
		&inv.ExpiresAt,
		&inv.IsRevoked,
		&inv.CreatedByMemberID,
		&redeemedBy,
		&redeemedAt,
	)
	if err != nil {
		return nil, err
	}
	if redeemedBy.Valid {
		inv.RedeemedByMemberID = &redeemedBy.Int64
	}
	if redeemedAt.Valid {
		inv.RedeemedAt = &redeemedAt.Time
	}
	return inv, nil
}

// CreateInvitation inserts a new invitation and fills in its ID. Returns
// ErrCodeTaken when the code collides with an existing invitation.
func (r *InvitationRepository) CreateInvitation(inv *models.FamilyInvitation) error {
	query := `
		INSERT INTO family_invitations (family_id, code, expires_at, created_by_member_id)
		VALUES (?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, inv.FamilyID, inv.Code, inv.ExpiresAt, inv.CreatedByMemberID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrCodeTaken
		}
		return fmt.Errorf("failed to create invitation: %w", err)
	}

	inv.ID = id
	inv.CreatedAt = time.Now()
	return nil
}

// GetInvitationByCode retrieves an invitation by its join code. Returns nil
// if not found.
func (r *InvitationRepository) GetInvitationByCode(code string) (*models.FamilyInvitation, error) {
	query := "SELECT " + invitationColumns + " FROM family_invitations WHERE code = ?"
	inv, err := scanInvitation(r.db.QueryRow(query, code))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	return inv, nil
}

// ListInvitations retrieves all invitations for a family, newest first
func (r *InvitationRepository) ListInvitations(familyID int64) ([]models.FamilyInvitation, error) {
	query := "SELECT " + invitationColumns + ` FROM family_invitations
		WHERE family_id = ?
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.Query(query, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query invitations: %w", err)
	}
	defer rows.Close()

	var invitations []models.FamilyInvitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		invitations = append(invitations, *inv)
	}

	return invitations, rows.Err()
}

// RevokeInvitation marks an invitation revoked, scoped to a family. Reports
// whether a row was affected.
func (r *InvitationRepository) RevokeInvitation(familyID, invitationID int64) (bool, error) {
	query := `
		UPDATE family_invitations
		SET is_revoked = ?
		WHERE id = ? AND family_id = ?
	`
	result, err := r.db.Exec(query, true, invitationID, familyID)
	if err != nil {
		return false, fmt.Errorf("failed to revoke invitation: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read revoke result: %w", err)
	}
	return rows > 0, nil
}

// MarkRedeemed records who redeemed an invitation and when. The guard on
// redeemed_at and is_revoked makes redemption single-use even under
// concurrent joins. Reports whether the invitation was claimed.
func (r *InvitationRepository) MarkRedeemed(invitationID, memberID int64, at time.Time) (bool, error) {
	query := `
		UPDATE family_invitations
		SET redeemed_by_member_id = ?, redeemed_at = ?
		WHERE id = ? AND redeemed_at IS NULL AND is_revoked = ?
	`
	result, err := r.db.Exec(query, memberID, at, invitationID, false)
	if err != nil {
		return false, fmt.Errorf("failed to mark invitation redeemed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read redeem result: %w", err)
	}
	return rows > 0, nil
}

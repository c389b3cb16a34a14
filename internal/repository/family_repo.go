package repository

import (
	"database/sql"
	"fmt"
	"time"

	"kiddierewards/internal/database"
	"kiddierewards/internal/models"
)

// FamilyRepository handles database operations for families
type FamilyRepository struct {
	db *database.DB
}

// NewFamilyRepository creates a new family repository
func NewFamilyRepository(db *database.DB) *FamilyRepository {
	return &FamilyRepository{db: db}
}

// CreateFamilyWithParent creates a family and its first parent member in a
// single transaction so a half-created family can never exist.
func (r *FamilyRepository) CreateFamilyWithParent(name string, userID int64, displayName, pinHash string) (*models.Family, *models.Member, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	familyID, err := tx.ExecReturningID(
		"INSERT INTO families (name) VALUES (?)",
		name,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create family: %w", err)
	}

	memberID, err := tx.ExecReturningID(
		`INSERT INTO members (family_id, user_id, display_name, pin_hash, role)
		 VALUES (?, ?, ?, ?, ?)`,
		familyID, userID, displayName, pinHash, models.RoleParent,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, nil, ErrPinTaken
		}
		return nil, nil, fmt.Errorf("failed to create parent member: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit family creation: %w", err)
	}

	now := time.Now()
	family := &models.Family{
		ID:        familyID,
		Name:      name,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	member := &models.Member{
		ID:          memberID,
		FamilyID:    familyID,
		UserID:      &userID,
		DisplayName: displayName,
		PinHash:     pinHash,
		Role:        models.RoleParent,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	return family, member, nil
}

// GetFamilyByID retrieves a family by ID. Returns nil if not found.
func (r *FamilyRepository) GetFamilyByID(id int64) (*models.Family, error) {
	query := `
		SELECT id, name, is_active, created_at, updated_at
		FROM families
		WHERE id = ?
	`
	family := &models.Family{}
	err := r.db.QueryRow(query, id).Scan(
		&family.ID,
		&family.Name,
		&family.IsActive,
		&family.CreatedAt,
		&family.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}

	return family, nil
}

// UpdateFamilyName renames a family
func (r *FamilyRepository) UpdateFamilyName(id int64, name string) error {
	query := `
		UPDATE families
		SET name = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	_, err := r.db.Exec(query, name, id)
	if err != nil {
		return fmt.Errorf("failed to update family: %w", err)
	}
	return nil
}

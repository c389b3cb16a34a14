package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"kiddierewards/internal/database"
	"kiddierewards/internal/models"
)

// PointEntryRepository handles database operations for the points ledger.
// The ledger is append-only: rows are deactivated or compensated, never
// deleted.
type PointEntryRepository struct {
	db *database.DB
}

// NewPointEntryRepository creates a new point entry repository
func NewPointEntryRepository(db *database.DB) *PointEntryRepository {
	return &PointEntryRepository{db: db}
}

const entryColumns = "id, family_id, child_member_id, created_by_member_id, points, type, reason, is_active, created_at"

type entryScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row entryScanner) (*models.PointEntry, error) {
	entry := &models.PointEntry{}
	err := row.Scan(
		&entry.ID,
		&entry.FamilyID,
		&entry.ChildMemberID,
		&entry.CreatedByMemberID,
		&entry.Points,
		&entry.Type,
		&entry.Reason,
		&entry.IsActive,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// netForChild sums the active point values for a child, optionally excluding
// one entry. Pass excludeID 0 to include everything.
func (r *PointEntryRepository) netForChild(q database.DBTX, childID, excludeID int64) (int, error) {
	query := `
		SELECT COALESCE(SUM(points), 0)
		FROM point_entries
		WHERE child_member_id = ? AND is_active = ? AND id != ?
	`
	var net int
	err := q.QueryRow(query, childID, true, excludeID).Scan(&net)
	if err != nil {
		return 0, fmt.Errorf("failed to sum points: %w", err)
	}
	return net, nil
}

// InsertEntries inserts a batch of ledger rows in one transaction and fills
// in their IDs. Reset entries have their point value computed here, inside
// the transaction, so the compensating value always matches the net it
// cancels even under concurrent writes.
func (r *PointEntryRepository) InsertEntries(entries []*models.PointEntry) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO point_entries (family_id, child_member_id, created_by_member_id, points, type, reason, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	for _, entry := range entries {
		if entry.Type == models.EntryReset {
			net, err := r.netForChild(tx, entry.ChildMemberID, 0)
			if err != nil {
				return err
			}
			entry.Points = -net
		}

		id, err := tx.ExecReturningID(query,
			entry.FamilyID, entry.ChildMemberID, entry.CreatedByMemberID,
			entry.Points, entry.Type, entry.Reason, entry.IsActive, entry.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert point entry: %w", err)
		}
		entry.ID = id
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit point entries: %w", err)
	}

	return nil
}

// GetEntryForFamily retrieves a ledger row scoped to a family. Returns nil
// when the entry does not exist or belongs to a different family.
func (r *PointEntryRepository) GetEntryForFamily(familyID, entryID int64) (*models.PointEntry, error) {
	query := "SELECT " + entryColumns + " FROM point_entries WHERE id = ? AND family_id = ?"
	entry, err := scanEntry(r.db.QueryRow(query, entryID, familyID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get point entry: %w", err)
	}
	return entry, nil
}

// UpdateEntry rewrites a ledger row's value, type, reason and active flag.
// When the row is a reset, its value is recomputed inside the transaction
// against the child's other active entries, excluding the row itself.
func (r *PointEntryRepository) UpdateEntry(entry *models.PointEntry) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if entry.Type == models.EntryReset {
		net, err := r.netForChild(tx, entry.ChildMemberID, entry.ID)
		if err != nil {
			return err
		}
		entry.Points = -net
	}

	query := `
		UPDATE point_entries
		SET points = ?, type = ?, reason = ?, is_active = ?
		WHERE id = ?
	`
	_, err = tx.Exec(query, entry.Points, entry.Type, entry.Reason, entry.IsActive, entry.ID)
	if err != nil {
		return fmt.Errorf("failed to update point entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit point entry update: %w", err)
	}

	return nil
}

// TotalsForChild computes a child's balance over active entries
func (r *PointEntryRepository) TotalsForChild(childID int64) (*models.PointsTotals, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN points > 0 THEN points ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN points < 0 THEN -points ELSE 0 END), 0),
			COALESCE(SUM(points), 0)
		FROM point_entries
		WHERE child_member_id = ? AND is_active = ?
	`
	totals := &models.PointsTotals{}
	err := r.db.QueryRow(query, childID, true).Scan(&totals.Plus, &totals.Minus, &totals.Net)
	if err != nil {
		return nil, fmt.Errorf("failed to compute totals: %w", err)
	}
	return totals, nil
}

// HasActiveEntries reports whether a child has any active ledger rows
func (r *PointEntryRepository) HasActiveEntries(childID int64) (bool, error) {
	query := "SELECT COUNT(*) FROM point_entries WHERE child_member_id = ? AND is_active = ?"
	var count int
	err := r.db.QueryRow(query, childID, true).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to count entries: %w", err)
	}
	return count > 0, nil
}

// HistoryForChild retrieves a child's ledger, newest first, with display
// names joined in. Deactivated (corrected) rows are excluded unless
// includeInactive is set.
func (r *PointEntryRepository) HistoryForChild(familyID, childID int64, includeInactive bool) ([]models.HistoryEntry, error) {
	query := `
		SELECT e.id, e.family_id, e.child_member_id, e.created_by_member_id,
		       e.points, e.type, e.reason, e.is_active, e.created_at,
		       c.display_name, p.display_name
		FROM point_entries e
		JOIN members c ON c.id = e.child_member_id
		JOIN members p ON p.id = e.created_by_member_id
		WHERE e.family_id = ? AND e.child_member_id = ?
	`
	args := []interface{}{familyID, childID}

	if !includeInactive {
		query += " AND e.is_active = ?"
		args = append(args, true)
	}

	query += " ORDER BY e.created_at DESC, e.id DESC"
	return r.queryHistory(query, args...)
}

// HistoryPage retrieves one page of a family's ledger, newest first.
// Pass childID 0 for all children.
func (r *PointEntryRepository) HistoryPage(familyID, childID int64, limit, offset int) ([]models.HistoryEntry, error) {
	query := `
		SELECT e.id, e.family_id, e.child_member_id, e.created_by_member_id,
		       e.points, e.type, e.reason, e.is_active, e.created_at,
		       c.display_name, p.display_name
		FROM point_entries e
		JOIN members c ON c.id = e.child_member_id
		JOIN members p ON p.id = e.created_by_member_id
		WHERE e.family_id = ?
	`
	args := []interface{}{familyID}

	if childID != 0 {
		query += " AND e.child_member_id = ?"
		args = append(args, childID)
	}

	query += " ORDER BY e.created_at DESC, e.id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	return r.queryHistory(query, args...)
}

// CountHistory counts a family's ledger rows. Pass childID 0 for all children.
func (r *PointEntryRepository) CountHistory(familyID, childID int64) (int, error) {
	query := "SELECT COUNT(*) FROM point_entries WHERE family_id = ?"
	args := []interface{}{familyID}

	if childID != 0 {
		query += " AND child_member_id = ?"
		args = append(args, childID)
	}

	var count int
	err := r.db.QueryRow(query, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return count, nil
}

// likeEscaper quotes LIKE metacharacters so user input matches literally.
// '!' is the escape character because a backslash literal is not portable
// across the supported drivers.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLikePattern(s string) string {
	return likeEscaper.Replace(s)
}

// ActiveEntriesForFamily retrieves active non-reset entries for a family,
// optionally filtered by a case-insensitive reason substring. Used by the
// suggestion aggregator.
func (r *PointEntryRepository) ActiveEntriesForFamily(familyID int64, labelFilter string) ([]models.PointEntry, error) {
	query := "SELECT " + entryColumns + ` FROM point_entries
		WHERE family_id = ? AND is_active = ? AND type != ?`
	args := []interface{}{familyID, true, models.EntryReset}

	if labelFilter != "" {
		query += " AND LOWER(reason) LIKE ? ESCAPE '!'"
		args = append(args, "%"+escapeLikePattern(labelFilter)+"%")
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []models.PointEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan point entry: %w", err)
		}
		entries = append(entries, *entry)
	}

	return entries, rows.Err()
}

// FamilyTotals sums earned and spent points across all active entries of a
// family
func (r *PointEntryRepository) FamilyTotals(familyID int64) (plus, minus int, err error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN points > 0 THEN points ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN points < 0 THEN -points ELSE 0 END), 0)
		FROM point_entries
		WHERE family_id = ? AND is_active = ?
	`
	err = r.db.QueryRow(query, familyID, true).Scan(&plus, &minus)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to compute family totals: %w", err)
	}
	return plus, minus, nil
}

// FamilyNetSince sums active point values for a family created at or after
// the given time
func (r *PointEntryRepository) FamilyNetSince(familyID int64, since time.Time) (int, error) {
	query := `
		SELECT COALESCE(SUM(points), 0)
		FROM point_entries
		WHERE family_id = ? AND is_active = ? AND created_at >= ?
	`
	var net int
	err := r.db.QueryRow(query, familyID, true, since).Scan(&net)
	if err != nil {
		return 0, fmt.Errorf("failed to compute recent net: %w", err)
	}
	return net, nil
}

func (r *PointEntryRepository) queryHistory(query string, args ...interface{}) ([]models.HistoryEntry, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var history []models.HistoryEntry
	for rows.Next() {
		var h models.HistoryEntry
		if err := rows.Scan(
			&h.ID,
			&h.FamilyID,
			&h.ChildMemberID,
			&h.CreatedByMemberID,
			&h.Points,
			&h.Type,
			&h.Reason,
			&h.IsActive,
			&h.CreatedAt,
			&h.ChildName,
			&h.CreatorName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		history = append(history, h)
	}

	return history, rows.Err()
}

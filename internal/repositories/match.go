package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/tunebridge/tmx/internal/models"
	"github.com/tunebridge/tmx/internal/shared"
)

// MatchRepository implements models.Repository[*models.PersistedMatch] for the
// match-outcome cache.
//
// Outcomes are recorded by the surrounding application after each resolution so
// repeat lookups can skip re-matching and audits can inspect past decisions.
// The resolver itself never touches this table.
type MatchRepository struct {
	db *sql.DB
}

// NewMatchRepository creates a new MatchRepository with the given database connection
func NewMatchRepository(db *sql.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

const matchColumns = "id, sequence, source_service, source_id, target_service, target_id, state, score, reasons, breakdown, created_at, updated_at, deleted_at"

// Create inserts a new [models.PersistedMatch] into the database with generated ID and sequence
func (r *MatchRepository) Create(match *models.PersistedMatch) error {
	sequence, err := NextSequence(r.db, "matches")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	match.SetID(id)
	match.SetSequence(sequence)

	if err := match.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO matches (` + matchColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		match.SourceService(),
		match.SourceID(),
		match.TargetService(),
		match.TargetID(),
		match.State(),
		match.Score(),
		match.Reasons(),
		match.BreakdownJSON(),
		match.CreatedAt(),
		match.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert match: %w", err)
	}

	return nil
}

// Get retrieves a match by ID, excluding soft-deleted records
func (r *MatchRepository) Get(id string) (*models.PersistedMatch, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// GetBySource retrieves the recorded outcome for a source track identity.
func (r *MatchRepository) GetBySource(sourceService, sourceID string) (*models.PersistedMatch, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE source_service = ? AND source_id = ? AND deleted_at IS NULL
		LIMIT 1
	`

	return r.scanOne(r.db.QueryRow(query, sourceService, sourceID))
}

// Update modifies an existing match in the database
func (r *MatchRepository) Update(match *models.PersistedMatch) error {
	if err := match.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	match.SetUpdatedAt(now)

	query := `
		UPDATE matches
		SET target_service = ?, target_id = ?, state = ?, score = ?, reasons = ?, breakdown = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		match.TargetService(),
		match.TargetID(),
		match.State(),
		match.Score(),
		match.Reasons(),
		match.BreakdownJSON(),
		now,
		match.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update match: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: match %s", shared.ErrRecordNotFound, match.ID())
	}

	return nil
}

// Delete soft-deletes a match by ID
func (r *MatchRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE matches
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete match: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: match %s", shared.ErrRecordNotFound, id)
	}

	return nil
}

// List retrieves all matches matching the given criteria, excluding soft-deleted records.
// Supported criteria: "state", "source_service", "target_service".
func (r *MatchRepository) List(criteria map[string]any) ([]*models.PersistedMatch, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if state, ok := criteria["state"].(string); ok && state != "" {
		query += " AND state = ?"
		args = append(args, state)
	}
	if service, ok := criteria["source_service"].(string); ok && service != "" {
		query += " AND source_service = ?"
		args = append(args, service)
	}
	if service, ok := criteria["target_service"].(string); ok && service != "" {
		query += " AND target_service = ?"
		args = append(args, service)
	}

	query += " ORDER BY sequence"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	var matches []*models.PersistedMatch
	for rows.Next() {
		match, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, match)
	}

	return matches, rows.Err()
}

// Purge hard-deletes every record, including soft-deleted ones.
func (r *MatchRepository) Purge() (int64, error) {
	result, err := r.db.Exec("DELETE FROM matches")
	if err != nil {
		return 0, fmt.Errorf("failed to purge matches: %w", err)
	}
	return result.RowsAffected()
}

type scannable interface {
	Scan(dest ...any) error
}

func (r *MatchRepository) scanOne(row *sql.Row) (*models.PersistedMatch, error) {
	match, err := r.scan(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: no match record", shared.ErrRecordNotFound)
	}
	return match, err
}

func (r *MatchRepository) scanRow(rows *sql.Rows) (*models.PersistedMatch, error) {
	return r.scan(rows)
}

func (r *MatchRepository) scan(row scannable) (*models.PersistedMatch, error) {
	var (
		id, sourceService, sourceID, state, reasons, breakdown string
		targetService, targetID                                sql.NullString
		sequence                                               int
		score                                                  float64
		createdAt, updatedAt                                   time.Time
		deletedAt                                              sql.NullTime
	)

	err := row.Scan(&id, &sequence, &sourceService, &sourceID, &targetService, &targetID,
		&state, &score, &reasons, &breakdown, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan match: %w", err)
	}

	match := models.NewPersistedMatch(sequence, sourceService, sourceID, targetService.String, targetID.String, state, score, reasons, breakdown)
	match.SetID(id)
	match.SetCreatedAt(createdAt)
	match.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		t := deletedAt.Time
		match.SetDeletedAt(&t)
	}

	return match, nil
}
